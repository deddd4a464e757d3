package genres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/repo"
	"github.com/angelmondragon/streamflix-backend/pkg/db"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"gorm.io/gorm"
)

type GenreInput struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

type GenreDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromModel(g *models.Genre) *GenreDTO {
	if g == nil {
		return nil
	}
	return &GenreDTO{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, g *models.Genre) error {
	return r.DB(ctx).Create(g).Error
}

func (r *Repository) List(ctx context.Context) ([]models.Genre, error) {
	var rows []models.Genre
	err := r.DB(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Genre, error) {
	return repo.First[models.Genre](r.DB(ctx).Where("id = ?", id))
}

func (r *Repository) Save(ctx context.Context, g *models.Genre) error {
	return r.DB(ctx).Save(g).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.DB(ctx).Delete(&models.Genre{}, id).Error
}

// Service is plain CRUD over genres; names are unique.
type Service interface {
	Create(ctx context.Context, input GenreInput) (*GenreDTO, error)
	List(ctx context.Context) ([]GenreDTO, error)
	Get(ctx context.Context, id uint) (*GenreDTO, error)
	Update(ctx context.Context, id uint, input GenreInput) (*GenreDTO, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("genres repo required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input GenreInput) (*GenreDTO, error) {
	genre := &models.Genre{Name: strings.TrimSpace(input.Name)}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, writeError(err, genre.Name, "create genre")
	}
	return FromModel(genre), nil
}

func (s *service) List(ctx context.Context) ([]GenreDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list genres")
	}
	out := make([]GenreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uint) (*GenreDTO, error) {
	genre, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(genre), nil
}

func (s *service) Update(ctx context.Context, id uint, input GenreInput) (*GenreDTO, error) {
	genre, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	genre.Name = strings.TrimSpace(input.Name)
	if err := s.repo.Save(ctx, genre); err != nil {
		return nil, writeError(err, genre.Name, "update genre")
	}
	return FromModel(genre), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete genre")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uint) (*models.Genre, error) {
	genre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load genre")
	}
	if genre == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Genre %d not found", id)
	}
	return genre, nil
}

func writeError(err error, name, step string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "Genre %s already exists", name)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}
