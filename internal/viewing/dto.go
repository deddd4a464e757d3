package viewing

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/titles"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
)

type RecordViewingInput struct {
	TitleID              uint  `json:"titleId" validate:"required,min=1"`
	EpisodeID            *uint `json:"episodeId,omitempty" validate:"omitempty,min=1"`
	PositionSeconds      int   `json:"positionSeconds" validate:"min=0"`
	TotalDurationSeconds int   `json:"totalDurationSeconds" validate:"required,min=1"`
	IsCompleted          bool  `json:"isCompleted"`
	AutoPlayNextEpisode  *bool `json:"autoPlayNextEpisode,omitempty"`
}

type WatchlistInput struct {
	TitleID uint `json:"titleId" validate:"required,min=1"`
}

type ProgressDTO struct {
	ID                   uint               `json:"id"`
	UserID               uint               `json:"userId"`
	TitleID              uint               `json:"titleId"`
	EpisodeID            *uint              `json:"episodeId,omitempty"`
	PositionSeconds      int                `json:"positionSeconds"`
	TotalDurationSeconds int                `json:"totalDurationSeconds"`
	IsCompleted          bool               `json:"isCompleted"`
	AutoPlayNextEpisode  bool               `json:"autoPlayNextEpisode"`
	LastViewedAt         time.Time          `json:"lastViewedAt"`
	CompletedAt          *time.Time         `json:"completedAt,omitempty"`
	Title                *titles.TitleDTO   `json:"title,omitempty"`
	Episode              *titles.EpisodeDTO `json:"episode,omitempty"`
}

type WatchlistDTO struct {
	ID        uint             `json:"id"`
	UserID    uint             `json:"userId"`
	TitleID   uint             `json:"titleId"`
	AddedAt   time.Time        `json:"addedAt"`
	RemovedAt *time.Time       `json:"removedAt,omitempty"`
	Title     *titles.TitleDTO `json:"title,omitempty"`
}

type ClearResult struct {
	Deleted int64 `json:"deleted"`
}

func ProgressFromModel(p *models.ViewingProgress) *ProgressDTO {
	if p == nil {
		return nil
	}
	return &ProgressDTO{
		ID:                   p.ID,
		UserID:               p.UserID,
		TitleID:              p.TitleID,
		EpisodeID:            p.EpisodeID,
		PositionSeconds:      p.PositionSeconds,
		TotalDurationSeconds: p.TotalDurationSeconds,
		IsCompleted:          p.IsCompleted,
		AutoPlayNextEpisode:  p.AutoPlayNextEpisode,
		LastViewedAt:         p.LastViewedAt,
		CompletedAt:          p.CompletedAt,
		Title:                titles.TitleFromModel(p.Title),
		Episode:              titles.EpisodeFromModel(p.Episode),
	}
}

func WatchlistFromModel(e *models.WatchlistEntry) *WatchlistDTO {
	if e == nil {
		return nil
	}
	return &WatchlistDTO{
		ID:        e.ID,
		UserID:    e.UserID,
		TitleID:   e.TitleID,
		AddedAt:   e.AddedAt,
		RemovedAt: e.RemovedAt,
		Title:     titles.TitleFromModel(e.Title),
	}
}

func progressList(rows []models.ViewingProgress) []ProgressDTO {
	out := make([]ProgressDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ProgressFromModel(&rows[i]))
	}
	return out
}
