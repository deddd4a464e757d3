package profiles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/repo"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"gorm.io/gorm"
)

type ProfileInput struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

type ProfileDTO struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{ID: p.ID, UserID: p.UserID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

// Repository scopes every profile query to its owner.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, p *models.Profile) error {
	return r.DB(ctx).Create(p).Error
}

func (r *Repository) ListByUser(ctx context.Context, userID uint) ([]models.Profile, error) {
	var rows []models.Profile
	err := r.DB(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindOwned(ctx context.Context, userID, id uint) (*models.Profile, error) {
	return repo.First[models.Profile](r.DB(ctx).Where("id = ? AND user_id = ?", id, userID))
}

func (r *Repository) Save(ctx context.Context, p *models.Profile) error {
	return r.DB(ctx).Save(p).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.DB(ctx).Delete(&models.Profile{}, id).Error
}

type Service interface {
	Create(ctx context.Context, userID uint, input ProfileInput) (*ProfileDTO, error)
	List(ctx context.Context, userID uint) ([]ProfileDTO, error)
	Get(ctx context.Context, userID, id uint) (*ProfileDTO, error)
	Update(ctx context.Context, userID, id uint, input ProfileInput) (*ProfileDTO, error)
	Delete(ctx context.Context, userID, id uint) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repo required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uint, input ProfileInput) (*ProfileDTO, error) {
	profile := &models.Profile{UserID: userID, Name: strings.TrimSpace(input.Name)}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
	}
	return FromModel(profile), nil
}

func (s *service) List(ctx context.Context, userID uint) ([]ProfileDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list profiles")
	}
	out := make([]ProfileDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, id uint) (*ProfileDTO, error) {
	profile, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

func (s *service) Update(ctx context.Context, userID, id uint, input ProfileInput) (*ProfileDTO, error) {
	profile, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	profile.Name = strings.TrimSpace(input.Name)
	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return FromModel(profile), nil
}

func (s *service) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete profile")
	}
	return nil
}

// load hides other users' profiles behind NotFound.
func (s *service) load(ctx context.Context, userID, id uint) (*models.Profile, error) {
	profile, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Profile %d not found", id)
	}
	return profile, nil
}
