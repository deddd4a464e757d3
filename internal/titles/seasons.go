package titles

import (
	"context"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"gorm.io/gorm"
)

// loadSeries resolves a title that is allowed to carry seasons.
func (s *service) loadSeries(ctx context.Context, titleID uint) (*models.Title, error) {
	title, err := s.loadTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if !title.Type.HasSeasons() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Title %d is of type %s and has no seasons", titleID, title.Type)
	}
	return title, nil
}

func (s *service) loadSeason(ctx context.Context, titleID uint, number int) (*models.Season, error) {
	if _, err := s.loadSeries(ctx, titleID); err != nil {
		return nil, err
	}
	season, err := s.repo.FindSeason(ctx, titleID, number)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load season")
	}
	if season == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Season %d for title %d not found", number, titleID)
	}
	return season, nil
}

func (s *service) ensureSeasonNumberFree(ctx context.Context, titleID uint, number int) error {
	existing, err := s.repo.FindSeason(ctx, titleID, number)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check season number")
	}
	if existing != nil {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "Season %d for title %d already exists", number, titleID)
	}
	return nil
}

func (s *service) CreateSeason(ctx context.Context, titleID uint, input SeasonInput) (*SeasonDTO, error) {
	if _, err := s.loadSeries(ctx, titleID); err != nil {
		return nil, err
	}
	if err := s.ensureSeasonNumberFree(ctx, titleID, input.SeasonNumber); err != nil {
		return nil, err
	}
	season := &models.Season{TitleID: titleID, SeasonNumber: input.SeasonNumber}
	if err := s.repo.CreateSeason(ctx, season); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create season")
	}
	return SeasonFromModel(season), nil
}

func (s *service) ListSeasons(ctx context.Context, titleID uint) ([]SeasonDTO, error) {
	if _, err := s.loadSeries(ctx, titleID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSeasons(ctx, titleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seasons")
	}
	return mapSlice(rows, SeasonFromModel), nil
}

func (s *service) GetSeason(ctx context.Context, titleID uint, number int) (*SeasonDTO, error) {
	season, err := s.loadSeason(ctx, titleID, number)
	if err != nil {
		return nil, err
	}
	return SeasonFromModel(season), nil
}

func (s *service) UpdateSeason(ctx context.Context, titleID uint, number int, input UpdateSeasonInput) (*SeasonDTO, error) {
	season, err := s.loadSeason(ctx, titleID, number)
	if err != nil {
		return nil, err
	}
	if input.SeasonNumber != nil && *input.SeasonNumber != season.SeasonNumber {
		if err := s.ensureSeasonNumberFree(ctx, titleID, *input.SeasonNumber); err != nil {
			return nil, err
		}
		season.SeasonNumber = *input.SeasonNumber
	}
	if err := s.repo.SaveSeason(ctx, season); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update season")
	}
	return SeasonFromModel(season), nil
}

func (s *service) DeleteSeason(ctx context.Context, titleID uint, number int) error {
	season, err := s.loadSeason(ctx, titleID, number)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteSeasonWithTx(tx, season.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete season")
		}
		return nil
	})
}
