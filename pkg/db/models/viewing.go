package models

import "time"

// ViewingProgress is unique per (user, title, episode).
type ViewingProgress struct {
	ID                   uint       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID               uint       `gorm:"column:user_id;not null;index"`
	TitleID              uint       `gorm:"column:title_id;not null"`
	EpisodeID            *uint      `gorm:"column:episode_id"`
	PositionSeconds      int        `gorm:"column:position_seconds;not null"`
	TotalDurationSeconds int        `gorm:"column:total_duration_seconds;not null"`
	IsCompleted          bool       `gorm:"column:is_completed;not null"`
	AutoPlayNextEpisode  bool       `gorm:"column:auto_play_next_episode;not null"`
	LastViewedAt         time.Time  `gorm:"column:last_viewed_at;not null"`
	CompletedAt          *time.Time `gorm:"column:completed_at"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Title   *Title   `gorm:"foreignKey:TitleID"`
	Episode *Episode `gorm:"foreignKey:EpisodeID"`
}

func (ViewingProgress) TableName() string { return "viewing_progress" }

// WatchlistEntry is soft-removed through RemovedAt and restored in place.
type WatchlistEntry struct {
	ID        uint       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint       `gorm:"column:user_id;not null;uniqueIndex:idx_watchlist_user_title"`
	TitleID   uint       `gorm:"column:title_id;not null;uniqueIndex:idx_watchlist_user_title"`
	AddedAt   time.Time  `gorm:"column:added_at;not null"`
	RemovedAt *time.Time `gorm:"column:removed_at"`

	Title *Title `gorm:"foreignKey:TitleID"`
}

func (WatchlistEntry) TableName() string { return "watchlist" }
