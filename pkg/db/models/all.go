package models

// Column defaults live in the migrations only. A gorm default tag would drop
// zero values such as false or 0 from inserts.

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&SubscriptionPlan{},
		&Subscription{},
		&Invitation{},
		&Title{},
		&Season{},
		&Episode{},
		&Quality{},
		&Genre{},
		&Profile{},
		&ViewingProgress{},
		&WatchlistEntry{},
	}
}
