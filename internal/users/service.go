package users

import (
	"context"
	"fmt"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
)

type userReader interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Service exposes read access to user profiles.
type Service interface {
	GetByID(ctx context.Context, id uint) (*UserDTO, error)
}

type service struct {
	repo userReader
}

func NewService(repo userReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "User %d not found", id)
	}
	return FromModel(user), nil
}
