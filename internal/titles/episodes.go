package titles

import (
	"context"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"gorm.io/gorm"
)

func (s *service) CreateEpisode(ctx context.Context, titleID uint, seasonNumber *int, input CreateEpisodeInput) (*EpisodeDTO, error) {
	title, err := s.loadTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}
	episode := &models.Episode{
		TitleID:         titleID,
		EpisodeNumber:   input.EpisodeNumber,
		Name:            input.Name,
		Description:     input.Description,
		DurationSeconds: input.DurationSeconds,
		VideoURL:        input.VideoURL,
	}

	if seasonNumber != nil {
		season, err := s.loadSeason(ctx, titleID, *seasonNumber)
		if err != nil {
			return nil, err
		}
		if err := s.ensureEpisodeNumberFree(ctx, titleID, season, input.EpisodeNumber); err != nil {
			return nil, err
		}
		seasonID := season.ID
		episode.SeasonID = &seasonID
	} else {
		if title.Type.HasSeasons() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
				"Title %d is of type SERIES, must provide season number to create episode", titleID)
		}
		existing, err := s.repo.FindAnyEpisode(ctx, titleID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check movie episode")
		}
		if existing != nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Episode for title %d already exists", titleID)
		}
	}

	if err := s.repo.CreateEpisode(ctx, episode); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create episode")
	}
	return EpisodeFromModel(episode), nil
}

func (s *service) ensureEpisodeNumberFree(ctx context.Context, titleID uint, season *models.Season, number int) error {
	existing, err := s.repo.FindEpisodeInSeason(ctx, titleID, season.ID, number)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check episode number")
	}
	if existing != nil {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Episode number %d for season %d of title %d already exists", number, season.SeasonNumber, titleID)
	}
	return nil
}

func (s *service) ListEpisodes(ctx context.Context, titleID uint, seasonNumber int) ([]EpisodeDTO, error) {
	season, err := s.loadSeason(ctx, titleID, seasonNumber)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListEpisodes(ctx, titleID, season.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list episodes")
	}
	return mapSlice(rows, EpisodeFromModel), nil
}

func (s *service) loadEpisode(ctx context.Context, titleID uint, seasonNumber *int, episodeNumber int) (*models.Episode, *models.Season, error) {
	title, err := s.loadTitle(ctx, titleID)
	if err != nil {
		return nil, nil, err
	}

	if seasonNumber != nil {
		season, err := s.loadSeason(ctx, titleID, *seasonNumber)
		if err != nil {
			return nil, nil, err
		}
		episode, err := s.repo.FindEpisodeInSeason(ctx, titleID, season.ID, episodeNumber)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load episode")
		}
		if episode == nil {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound,
				"Episode number %d for season %d of title %d not found", episodeNumber, *seasonNumber, titleID)
		}
		return episode, season, nil
	}

	if title.Type.HasSeasons() {
		return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"Title %d is of type SERIES, must provide season number to find episode", titleID)
	}
	episode, err := s.repo.FindAnyEpisode(ctx, titleID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load episode")
	}
	if episode == nil {
		return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Episode for title %d not found", titleID)
	}
	return episode, nil, nil
}

func (s *service) GetEpisode(ctx context.Context, titleID uint, seasonNumber *int, episodeNumber int) (*EpisodeDTO, error) {
	episode, _, err := s.loadEpisode(ctx, titleID, seasonNumber, episodeNumber)
	if err != nil {
		return nil, err
	}
	return EpisodeFromModel(episode), nil
}

func (s *service) UpdateEpisode(ctx context.Context, titleID uint, seasonNumber *int, episodeNumber int, input UpdateEpisodeInput) (*EpisodeDTO, error) {
	episode, season, err := s.loadEpisode(ctx, titleID, seasonNumber, episodeNumber)
	if err != nil {
		return nil, err
	}
	if input.EpisodeNumber != nil && *input.EpisodeNumber != episode.EpisodeNumber {
		if season != nil {
			if err := s.ensureEpisodeNumberFree(ctx, titleID, season, *input.EpisodeNumber); err != nil {
				return nil, err
			}
		}
		episode.EpisodeNumber = *input.EpisodeNumber
	}
	if input.Name != nil {
		episode.Name = input.Name
	}
	if input.Description != nil {
		episode.Description = input.Description
	}
	if input.DurationSeconds != nil {
		episode.DurationSeconds = *input.DurationSeconds
	}
	if input.VideoURL != nil {
		episode.VideoURL = *input.VideoURL
	}
	if err := s.repo.SaveEpisode(ctx, episode); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update episode")
	}
	return EpisodeFromModel(episode), nil
}

func (s *service) DeleteEpisode(ctx context.Context, titleID uint, seasonNumber *int, episodeNumber int) error {
	episode, _, err := s.loadEpisode(ctx, titleID, seasonNumber, episodeNumber)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteEpisodeWithTx(tx, episode.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete episode")
		}
		return nil
	})
}
