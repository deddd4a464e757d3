package viewing

import (
	"context"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
)

// AddToWatchlist creates the entry or restores a soft-removed one in place.
func (s *service) AddToWatchlist(ctx context.Context, userID uint, input WatchlistInput) (*WatchlistDTO, error) {
	if err := s.ensureTitle(ctx, input.TitleID); err != nil {
		return nil, err
	}
	entry, err := s.repo.FindWatchlistEntry(ctx, userID, input.TitleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load watchlist entry")
	}
	if entry != nil && entry.RemovedAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Title is already in your watchlist")
	}
	if entry == nil {
		entry = &models.WatchlistEntry{UserID: userID, TitleID: input.TitleID, AddedAt: s.now()}
	}
	entry.RemovedAt = nil
	if err := s.repo.SaveWatchlistEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save watchlist entry")
	}
	return s.reloadEntry(ctx, entry.ID)
}

func (s *service) GetWatchlist(ctx context.Context, userID uint) ([]WatchlistDTO, error) {
	rows, err := s.repo.ListWatchlist(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list watchlist")
	}
	out := make([]WatchlistDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *WatchlistFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) RemoveFromWatchlist(ctx context.Context, userID, titleID uint) (*WatchlistDTO, error) {
	entry, err := s.repo.FindWatchlistEntry(ctx, userID, titleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load watchlist entry")
	}
	if entry == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Title with id %d not found in watchlist for user %d", titleID, userID)
	}
	if entry.RemovedAt != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Title is already removed from watchlist")
	}
	now := s.now()
	entry.RemovedAt = &now
	if err := s.repo.SaveWatchlistEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove watchlist entry")
	}
	return s.reloadEntry(ctx, entry.ID)
}

func (s *service) reloadEntry(ctx context.Context, id uint) (*WatchlistDTO, error) {
	entry, err := s.repo.LoadWatchlistEntry(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload watchlist entry")
	}
	return WatchlistFromModel(entry), nil
}
