package enums

// SubscriptionStatus tracks where a viewer's subscription sits in its lifecycle.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusExpired  SubscriptionStatus = "EXPIRED"
)

var subscriptionStatuses = valueSet[SubscriptionStatus]{
	SubscriptionStatusActive,
	SubscriptionStatusCanceled,
	SubscriptionStatusPastDue,
	SubscriptionStatusExpired,
}

func (s SubscriptionStatus) String() string { return string(s) }

func (s SubscriptionStatus) IsValid() bool { return subscriptionStatuses.contains(s) }

// IsOpen reports whether the subscription still occupies the user's single
// open slot. Only CANCELED releases it.
func (s SubscriptionStatus) IsOpen() bool {
	return s.IsValid() && s != SubscriptionStatusCanceled
}

// OpenSubscriptionStatuses lists every status for which IsOpen holds.
func OpenSubscriptionStatuses() []SubscriptionStatus {
	open := make([]SubscriptionStatus, 0, len(subscriptionStatuses))
	for _, status := range subscriptionStatuses {
		if status.IsOpen() {
			open = append(open, status)
		}
	}
	return open
}

// ParseSubscriptionStatus is case sensitive; the API speaks upper case.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	return subscriptionStatuses.parse("subscription status", value)
}
