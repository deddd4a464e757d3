package viewing

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// Service tracks what each user watched and wants to watch.
type Service interface {
	RecordViewing(ctx context.Context, userID uint, input RecordViewingInput) (*ProgressDTO, error)
	GetViewingProgress(ctx context.Context, userID, titleID uint) ([]ProgressDTO, error)
	History(ctx context.Context, userID uint) ([]ProgressDTO, error)
	ClearViewingProgress(ctx context.Context, userID, titleID uint) (*ClearResult, error)

	AddToWatchlist(ctx context.Context, userID uint, input WatchlistInput) (*WatchlistDTO, error)
	GetWatchlist(ctx context.Context, userID uint) ([]WatchlistDTO, error)
	RemoveFromWatchlist(ctx context.Context, userID, titleID uint) (*WatchlistDTO, error)

	ContinueWatching(ctx context.Context, userID uint, limit int) ([]ProgressDTO, error)
	RecentlyCompleted(ctx context.Context, userID uint, limit int) ([]ProgressDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo              *Repository
	TransactionRunner txRunner
	Clock             func() time.Time
}

type service struct {
	repo     *Repository
	txRunner txRunner
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("viewing repo required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:     params.Repo,
		txRunner: params.TransactionRunner,
		now:      func() time.Time { return clock().UTC() },
	}, nil
}

func (s *service) ensureTitle(ctx context.Context, titleID uint) error {
	title, err := s.repo.FindTitle(ctx, titleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load title")
	}
	if title == nil {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "Title with id %d not found", titleID)
	}
	return nil
}

// RecordViewing upserts progress for (user, title, episode). Completing a
// title also drops it from the watchlist in the same transaction.
func (s *service) RecordViewing(ctx context.Context, userID uint, input RecordViewingInput) (*ProgressDTO, error) {
	if err := s.ensureTitle(ctx, input.TitleID); err != nil {
		return nil, err
	}
	if input.EpisodeID != nil {
		episode, err := s.repo.FindEpisode(ctx, *input.EpisodeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load episode")
		}
		if episode == nil || episode.TitleID != input.TitleID {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Episode with id %d not found for title %d", *input.EpisodeID, input.TitleID)
		}
	}

	now := s.now()
	autoPlay := true
	if input.AutoPlayNextEpisode != nil {
		autoPlay = *input.AutoPlayNextEpisode
	}

	var progressID uint
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		progress, err := txRepo.FindProgress(ctx, userID, input.TitleID, input.EpisodeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load progress")
		}
		if progress == nil {
			progress = &models.ViewingProgress{UserID: userID, TitleID: input.TitleID, EpisodeID: input.EpisodeID}
		}
		progress.PositionSeconds = input.PositionSeconds
		progress.TotalDurationSeconds = input.TotalDurationSeconds
		progress.IsCompleted = input.IsCompleted
		progress.AutoPlayNextEpisode = autoPlay
		progress.LastViewedAt = now
		progress.CompletedAt = nil
		if input.IsCompleted {
			progress.CompletedAt = &now
		}
		if err := txRepo.SaveProgress(ctx, progress); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save progress")
		}
		progressID = progress.ID

		if input.IsCompleted {
			if err := txRepo.SoftRemoveFromWatchlist(ctx, userID, input.TitleID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update watchlist")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.LoadProgress(ctx, progressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload progress")
	}
	return ProgressFromModel(saved), nil
}

func (s *service) GetViewingProgress(ctx context.Context, userID, titleID uint) ([]ProgressDTO, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListProgressForTitle(ctx, userID, titleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list progress")
	}
	return progressList(rows), nil
}

func (s *service) History(ctx context.Context, userID uint) ([]ProgressDTO, error) {
	rows, err := s.repo.ListProgress(ctx, userID, nil, "last_viewed_at DESC", 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list history")
	}
	return progressList(rows), nil
}

func (s *service) ClearViewingProgress(ctx context.Context, userID, titleID uint) (*ClearResult, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	deleted, err := s.repo.DeleteProgressForTitle(ctx, userID, titleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear progress")
	}
	return &ClearResult{Deleted: deleted}, nil
}

func (s *service) ContinueWatching(ctx context.Context, userID uint, limit int) ([]ProgressDTO, error) {
	incomplete := false
	rows, err := s.repo.ListProgress(ctx, userID, &incomplete, "last_viewed_at DESC", normalizeFeedLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list continue watching")
	}
	return progressList(rows), nil
}

func (s *service) RecentlyCompleted(ctx context.Context, userID uint, limit int) ([]ProgressDTO, error) {
	completed := true
	rows, err := s.repo.ListProgress(ctx, userID, &completed, "completed_at DESC", normalizeFeedLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recently completed")
	}
	return progressList(rows), nil
}

func normalizeFeedLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultFeedLimit
	case limit > MaxFeedLimit:
		return MaxFeedLimit
	default:
		return limit
	}
}
