package titles

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
)

type CreateTitleInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Type        string `json:"type" validate:"required,titletype"`
	Description string `json:"description" validate:"max=2000"`
	ReleaseYear int    `json:"releaseYear" validate:"required,min=1870,max=2100"`
}

type UpdateTitleInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Type        *string `json:"type,omitempty" validate:"omitempty,titletype"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ReleaseYear *int    `json:"releaseYear,omitempty" validate:"omitempty,min=1870,max=2100"`
}

type SeasonInput struct {
	SeasonNumber int `json:"seasonNumber" validate:"required,min=1"`
}

type UpdateSeasonInput struct {
	SeasonNumber *int `json:"seasonNumber,omitempty" validate:"omitempty,min=1"`
}

type CreateEpisodeInput struct {
	EpisodeNumber   int     `json:"episodeNumber" validate:"min=0"`
	Name            *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	DurationSeconds int     `json:"durationSeconds" validate:"required,min=1"`
	VideoURL        string  `json:"videoUrl" validate:"required,url"`
}

type UpdateEpisodeInput struct {
	EpisodeNumber   *int    `json:"episodeNumber,omitempty" validate:"omitempty,min=0"`
	Name            *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	DurationSeconds *int    `json:"durationSeconds,omitempty" validate:"omitempty,min=1"`
	VideoURL        *string `json:"videoUrl,omitempty" validate:"omitempty,url"`
}

type QualityInput struct {
	Name string `json:"name" validate:"required,quality"`
}

type TitleDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ReleaseYear int       `json:"releaseYear"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SeasonDTO struct {
	ID           uint      `json:"id"`
	TitleID      uint      `json:"titleId"`
	SeasonNumber int       `json:"seasonNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type EpisodeDTO struct {
	ID              uint      `json:"id"`
	TitleID         uint      `json:"titleId"`
	SeasonID        *uint     `json:"seasonId,omitempty"`
	EpisodeNumber   int       `json:"episodeNumber"`
	Name            *string   `json:"name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	VideoURL        string    `json:"videoUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type QualityDTO struct {
	TitleID   uint      `json:"titleId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func TitleFromModel(t *models.Title) *TitleDTO {
	if t == nil {
		return nil
	}
	return &TitleDTO{
		ID:          t.ID,
		Name:        t.Name,
		Type:        t.Type.String(),
		Description: t.Description,
		ReleaseYear: t.ReleaseYear,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func SeasonFromModel(s *models.Season) *SeasonDTO {
	if s == nil {
		return nil
	}
	return &SeasonDTO{
		ID:           s.ID,
		TitleID:      s.TitleID,
		SeasonNumber: s.SeasonNumber,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func EpisodeFromModel(e *models.Episode) *EpisodeDTO {
	if e == nil {
		return nil
	}
	return &EpisodeDTO{
		ID:              e.ID,
		TitleID:         e.TitleID,
		SeasonID:        e.SeasonID,
		EpisodeNumber:   e.EpisodeNumber,
		Name:            e.Name,
		Description:     e.Description,
		DurationSeconds: e.DurationSeconds,
		VideoURL:        e.VideoURL,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func QualityFromModel(q *models.Quality) *QualityDTO {
	if q == nil {
		return nil
	}
	return &QualityDTO{TitleID: q.TitleID, Name: q.Name.String(), CreatedAt: q.CreatedAt}
}

func mapSlice[M any, D any](rows []M, fn func(*M) *D) []D {
	out := make([]D, 0, len(rows))
	for i := range rows {
		out = append(out, *fn(&rows[i]))
	}
	return out
}
