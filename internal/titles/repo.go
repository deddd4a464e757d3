package titles

import (
	"context"

	"github.com/angelmondragon/streamflix-backend/internal/repo"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists titles and the content hanging off them. Single-row
// lookups return nil, nil when nothing matches.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) CreateTitle(ctx context.Context, t *models.Title) error {
	return r.DB(ctx).Create(t).Error
}

func (r *Repository) FindTitle(ctx context.Context, id uint) (*models.Title, error) {
	return repo.First[models.Title](r.DB(ctx).Where("id = ?", id))
}

// ListTitles returns up to limit titles with id greater than afterID.
func (r *Repository) ListTitles(ctx context.Context, afterID uint, limit int) ([]models.Title, error) {
	query := r.DB(ctx).Order("id ASC").Limit(limit)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	var rows []models.Title
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SaveTitle(ctx context.Context, t *models.Title) error {
	return r.DB(ctx).Save(t).Error
}

// DeleteTitleWithTx removes a title and every row that references it.
func (r *Repository) DeleteTitleWithTx(tx *gorm.DB, id uint) error {
	dependents := []any{
		&models.ViewingProgress{},
		&models.WatchlistEntry{},
		&models.Episode{},
		&models.Season{},
		&models.Quality{},
	}
	for _, model := range dependents {
		if err := tx.Where("title_id = ?", id).Delete(model).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.Title{}, id).Error
}

func (r *Repository) CreateSeason(ctx context.Context, s *models.Season) error {
	return r.DB(ctx).Create(s).Error
}

func (r *Repository) FindSeason(ctx context.Context, titleID uint, number int) (*models.Season, error) {
	return repo.First[models.Season](r.DB(ctx).Where("title_id = ? AND season_number = ?", titleID, number))
}

func (r *Repository) ListSeasons(ctx context.Context, titleID uint) ([]models.Season, error) {
	var rows []models.Season
	err := r.DB(ctx).Where("title_id = ?", titleID).Order("season_number ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) SaveSeason(ctx context.Context, s *models.Season) error {
	return r.DB(ctx).Save(s).Error
}

// DeleteSeasonWithTx removes a season along with its episodes and their progress rows.
func (r *Repository) DeleteSeasonWithTx(tx *gorm.DB, id uint) error {
	episodeIDs := tx.Model(&models.Episode{}).Select("id").Where("season_id = ?", id)
	if err := tx.Where("episode_id IN (?)", episodeIDs).Delete(&models.ViewingProgress{}).Error; err != nil {
		return err
	}
	if err := tx.Where("season_id = ?", id).Delete(&models.Episode{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Season{}, id).Error
}

func (r *Repository) CreateEpisode(ctx context.Context, e *models.Episode) error {
	return r.DB(ctx).Create(e).Error
}

func (r *Repository) FindEpisodeInSeason(ctx context.Context, titleID, seasonID uint, number int) (*models.Episode, error) {
	return repo.First[models.Episode](
		r.DB(ctx).Where("title_id = ? AND season_id = ? AND episode_number = ?", titleID, seasonID, number),
	)
}

// FindAnyEpisode returns the first episode of a title regardless of season.
func (r *Repository) FindAnyEpisode(ctx context.Context, titleID uint) (*models.Episode, error) {
	return repo.First[models.Episode](r.DB(ctx).Where("title_id = ?", titleID))
}

func (r *Repository) FindEpisodeByID(ctx context.Context, titleID, episodeID uint) (*models.Episode, error) {
	return repo.First[models.Episode](r.DB(ctx).Where("id = ? AND title_id = ?", episodeID, titleID))
}

func (r *Repository) ListEpisodes(ctx context.Context, titleID, seasonID uint) ([]models.Episode, error) {
	var rows []models.Episode
	err := r.DB(ctx).
		Where("title_id = ? AND season_id = ?", titleID, seasonID).
		Order("episode_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) SaveEpisode(ctx context.Context, e *models.Episode) error {
	return r.DB(ctx).Save(e).Error
}

func (r *Repository) DeleteEpisodeWithTx(tx *gorm.DB, id uint) error {
	if err := tx.Where("episode_id = ?", id).Delete(&models.ViewingProgress{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Episode{}, id).Error
}

func (r *Repository) CreateQuality(ctx context.Context, q *models.Quality) error {
	return r.DB(ctx).Create(q).Error
}

func (r *Repository) FindQuality(ctx context.Context, titleID uint, name enums.QualityName) (*models.Quality, error) {
	return repo.First[models.Quality](r.DB(ctx).Where("title_id = ? AND name = ?", titleID, name))
}

func (r *Repository) ListQualities(ctx context.Context, titleID uint) ([]models.Quality, error) {
	var rows []models.Quality
	err := r.DB(ctx).Where("title_id = ?", titleID).Find(&rows).Error
	return rows, err
}

// RenameQuality rewrites the name half of the composite key.
func (r *Repository) RenameQuality(ctx context.Context, titleID uint, from, to enums.QualityName) error {
	return r.DB(ctx).
		Model(&models.Quality{}).
		Where("title_id = ? AND name = ?", titleID, from).
		Update("name", to).Error
}

func (r *Repository) DeleteQuality(ctx context.Context, titleID uint, name enums.QualityName) error {
	return r.DB(ctx).Where("title_id = ? AND name = ?", titleID, name).Delete(&models.Quality{}).Error
}
