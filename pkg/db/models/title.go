package models

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/enums"
)

type Title struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;not null"`
	Type        enums.TitleType `gorm:"column:type;not null"`
	Description string          `gorm:"column:description;not null"`
	ReleaseYear int             `gorm:"column:release_year;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

type Season struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	TitleID      uint      `gorm:"column:title_id;not null;uniqueIndex:idx_seasons_title_number"`
	SeasonNumber int       `gorm:"column:season_number;not null;uniqueIndex:idx_seasons_title_number"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Episode belongs to a season for series; movies carry a single episode with no season.
type Episode struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement"`
	TitleID         uint      `gorm:"column:title_id;not null;index"`
	SeasonID        *uint     `gorm:"column:season_id;index"`
	EpisodeNumber   int       `gorm:"column:episode_number;not null"`
	Name            *string   `gorm:"column:name"`
	Description     *string   `gorm:"column:description"`
	DurationSeconds int       `gorm:"column:duration_seconds;not null"`
	VideoURL        string    `gorm:"column:video_url;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Quality struct {
	TitleID   uint              `gorm:"column:title_id;primaryKey"`
	Name      enums.QualityName `gorm:"column:name;primaryKey"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

type Genre struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
