package viewing

import (
	"context"
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/repo"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists viewing progress and watchlist rows.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) FindTitle(ctx context.Context, id uint) (*models.Title, error) {
	return repo.First[models.Title](r.DB(ctx).Where("id = ?", id))
}

func (r *Repository) FindEpisode(ctx context.Context, id uint) (*models.Episode, error) {
	return repo.First[models.Episode](r.DB(ctx).Where("id = ?", id))
}

// FindProgress matches a NULL episode explicitly for movie-level progress.
func (r *Repository) FindProgress(ctx context.Context, userID, titleID uint, episodeID *uint) (*models.ViewingProgress, error) {
	query := r.DB(ctx).Where("user_id = ? AND title_id = ?", userID, titleID)
	if episodeID == nil {
		query = query.Where("episode_id IS NULL")
	} else {
		query = query.Where("episode_id = ?", *episodeID)
	}
	return repo.First[models.ViewingProgress](query)
}

// SaveProgress inserts or updates p.
func (r *Repository) SaveProgress(ctx context.Context, p *models.ViewingProgress) error {
	return r.DB(ctx).Omit("Title", "Episode").Save(p).Error
}

func (r *Repository) LoadProgress(ctx context.Context, id uint) (*models.ViewingProgress, error) {
	return repo.First[models.ViewingProgress](
		r.DB(ctx).Preload("Title").Preload("Episode").Where("id = ?", id),
	)
}

func (r *Repository) ListProgressForTitle(ctx context.Context, userID, titleID uint) ([]models.ViewingProgress, error) {
	var rows []models.ViewingProgress
	err := r.DB(ctx).
		Preload("Episode").
		Where("user_id = ? AND title_id = ?", userID, titleID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListProgress returns the user's progress rows filtered by completion when
// completed is non-nil. A zero limit means no limit.
func (r *Repository) ListProgress(ctx context.Context, userID uint, completed *bool, orderBy string, limit int) ([]models.ViewingProgress, error) {
	query := r.DB(ctx).
		Preload("Title").
		Preload("Episode").
		Where("user_id = ?", userID)
	if completed != nil {
		query = query.Where("is_completed = ?", *completed)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.ViewingProgress
	err := query.Order(orderBy).Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *Repository) DeleteProgressForTitle(ctx context.Context, userID, titleID uint) (int64, error) {
	res := r.DB(ctx).Where("user_id = ? AND title_id = ?", userID, titleID).Delete(&models.ViewingProgress{})
	return res.RowsAffected, res.Error
}

func (r *Repository) FindWatchlistEntry(ctx context.Context, userID, titleID uint) (*models.WatchlistEntry, error) {
	return repo.First[models.WatchlistEntry](r.DB(ctx).Where("user_id = ? AND title_id = ?", userID, titleID))
}

func (r *Repository) SaveWatchlistEntry(ctx context.Context, e *models.WatchlistEntry) error {
	return r.DB(ctx).Omit("Title").Save(e).Error
}

func (r *Repository) LoadWatchlistEntry(ctx context.Context, id uint) (*models.WatchlistEntry, error) {
	return repo.First[models.WatchlistEntry](r.DB(ctx).Preload("Title").Where("id = ?", id))
}

func (r *Repository) ListWatchlist(ctx context.Context, userID uint) ([]models.WatchlistEntry, error) {
	var rows []models.WatchlistEntry
	err := r.DB(ctx).
		Preload("Title").
		Where("user_id = ? AND removed_at IS NULL", userID).
		Order("added_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// SoftRemoveFromWatchlist stamps removed_at on the user's active entry for the title, if any.
func (r *Repository) SoftRemoveFromWatchlist(ctx context.Context, userID, titleID uint, at time.Time) error {
	return r.DB(ctx).
		Model(&models.WatchlistEntry{}).
		Where("user_id = ? AND title_id = ? AND removed_at IS NULL", userID, titleID).
		Update("removed_at", at).Error
}
