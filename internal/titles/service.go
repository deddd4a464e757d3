package titles

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service is the catalog surface used by the title controllers. Episode
// operations take a nil seasonNumber for movies.
type Service interface {
	CreateTitle(ctx context.Context, input CreateTitleInput) (*TitleDTO, error)
	ListTitles(ctx context.Context, params pagination.Params) (*pagination.Page[TitleDTO], error)
	GetTitle(ctx context.Context, id uint) (*TitleDTO, error)
	UpdateTitle(ctx context.Context, id uint, input UpdateTitleInput) (*TitleDTO, error)
	DeleteTitle(ctx context.Context, id uint) error

	CreateSeason(ctx context.Context, titleID uint, input SeasonInput) (*SeasonDTO, error)
	ListSeasons(ctx context.Context, titleID uint) ([]SeasonDTO, error)
	GetSeason(ctx context.Context, titleID uint, number int) (*SeasonDTO, error)
	UpdateSeason(ctx context.Context, titleID uint, number int, input UpdateSeasonInput) (*SeasonDTO, error)
	DeleteSeason(ctx context.Context, titleID uint, number int) error

	CreateEpisode(ctx context.Context, titleID uint, seasonNumber *int, input CreateEpisodeInput) (*EpisodeDTO, error)
	ListEpisodes(ctx context.Context, titleID uint, seasonNumber int) ([]EpisodeDTO, error)
	GetEpisode(ctx context.Context, titleID uint, seasonNumber *int, episodeNumber int) (*EpisodeDTO, error)
	UpdateEpisode(ctx context.Context, titleID uint, seasonNumber *int, episodeNumber int, input UpdateEpisodeInput) (*EpisodeDTO, error)
	DeleteEpisode(ctx context.Context, titleID uint, seasonNumber *int, episodeNumber int) error

	CreateQuality(ctx context.Context, titleID uint, input QualityInput) (*QualityDTO, error)
	ListQualities(ctx context.Context, titleID uint) ([]QualityDTO, error)
	GetQuality(ctx context.Context, titleID uint, name string) (*QualityDTO, error)
	UpdateQuality(ctx context.Context, titleID uint, name string, input QualityInput) (*QualityDTO, error)
	DeleteQuality(ctx context.Context, titleID uint, name string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	txRunner txRunner
}

func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("titles repo required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, txRunner: tx}, nil
}

func (s *service) CreateTitle(ctx context.Context, input CreateTitleInput) (*TitleDTO, error) {
	titleType, err := parseTitleType(input.Type)
	if err != nil {
		return nil, err
	}
	title := &models.Title{
		Name:        strings.TrimSpace(input.Name),
		Type:        titleType,
		Description: input.Description,
		ReleaseYear: input.ReleaseYear,
	}
	if err := s.repo.CreateTitle(ctx, title); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create title")
	}
	return TitleFromModel(title), nil
}

func (s *service) ListTitles(ctx context.Context, params pagination.Params) (*pagination.Page[TitleDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var afterID uint
	if cursor != nil {
		afterID = cursor.ID
	}
	rows, err := s.repo.ListTitles(ctx, afterID, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list titles")
	}
	page := pagination.Build(mapSlice(rows, TitleFromModel), params.Limit, func(t TitleDTO) uint { return t.ID })
	return &page, nil
}

func (s *service) GetTitle(ctx context.Context, id uint) (*TitleDTO, error) {
	title, err := s.loadTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	return TitleFromModel(title), nil
}

func (s *service) UpdateTitle(ctx context.Context, id uint, input UpdateTitleInput) (*TitleDTO, error) {
	title, err := s.loadTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		title.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		titleType, err := parseTitleType(*input.Type)
		if err != nil {
			return nil, err
		}
		title.Type = titleType
	}
	if input.Description != nil {
		title.Description = *input.Description
	}
	if input.ReleaseYear != nil {
		title.ReleaseYear = *input.ReleaseYear
	}
	if err := s.repo.SaveTitle(ctx, title); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update title")
	}
	return TitleFromModel(title), nil
}

func (s *service) DeleteTitle(ctx context.Context, id uint) error {
	if _, err := s.loadTitle(ctx, id); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteTitleWithTx(tx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete title")
		}
		return nil
	})
}

func (s *service) loadTitle(ctx context.Context, id uint) (*models.Title, error) {
	title, err := s.repo.FindTitle(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load title")
	}
	if title == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Title %d not found", id)
	}
	return title, nil
}

func parseTitleType(raw string) (enums.TitleType, error) {
	titleType, err := enums.ParseTitleType(strings.ToUpper(strings.TrimSpace(raw)))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "type must be MOVIE or SERIES")
	}
	return titleType, nil
}
