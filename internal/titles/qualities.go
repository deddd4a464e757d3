package titles

import (
	"context"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
)

func parseQuality(raw string) (enums.QualityName, error) {
	name, err := enums.ParseQualityName(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quality must be one of SD, HD, UHD")
	}
	return name, nil
}

func (s *service) ensureQualityFree(ctx context.Context, titleID uint, name enums.QualityName) error {
	existing, err := s.repo.FindQuality(ctx, titleID, name)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check quality")
	}
	if existing != nil {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "Title %d already has quality %s", titleID, name)
	}
	return nil
}

func (s *service) loadQuality(ctx context.Context, titleID uint, raw string) (*models.Quality, error) {
	if _, err := s.loadTitle(ctx, titleID); err != nil {
		return nil, err
	}
	name, err := parseQuality(raw)
	if err != nil {
		return nil, err
	}
	quality, err := s.repo.FindQuality(ctx, titleID, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quality")
	}
	if quality == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Quality for Title %d not found", titleID)
	}
	return quality, nil
}

func (s *service) CreateQuality(ctx context.Context, titleID uint, input QualityInput) (*QualityDTO, error) {
	if _, err := s.loadTitle(ctx, titleID); err != nil {
		return nil, err
	}
	name, err := parseQuality(input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureQualityFree(ctx, titleID, name); err != nil {
		return nil, err
	}
	quality := &models.Quality{TitleID: titleID, Name: name}
	if err := s.repo.CreateQuality(ctx, quality); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quality")
	}
	return QualityFromModel(quality), nil
}

func (s *service) ListQualities(ctx context.Context, titleID uint) ([]QualityDTO, error) {
	if _, err := s.loadTitle(ctx, titleID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListQualities(ctx, titleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list qualities")
	}
	return mapSlice(rows, QualityFromModel), nil
}

func (s *service) GetQuality(ctx context.Context, titleID uint, name string) (*QualityDTO, error) {
	quality, err := s.loadQuality(ctx, titleID, name)
	if err != nil {
		return nil, err
	}
	return QualityFromModel(quality), nil
}

// UpdateQuality renames a quality tier on the title.
func (s *service) UpdateQuality(ctx context.Context, titleID uint, name string, input QualityInput) (*QualityDTO, error) {
	quality, err := s.loadQuality(ctx, titleID, name)
	if err != nil {
		return nil, err
	}
	target, err := parseQuality(input.Name)
	if err != nil {
		return nil, err
	}
	if target == quality.Name {
		return QualityFromModel(quality), nil
	}
	if err := s.ensureQualityFree(ctx, titleID, target); err != nil {
		return nil, err
	}
	if err := s.repo.RenameQuality(ctx, titleID, quality.Name, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename quality")
	}
	quality.Name = target
	return QualityFromModel(quality), nil
}

func (s *service) DeleteQuality(ctx context.Context, titleID uint, name string) error {
	quality, err := s.loadQuality(ctx, titleID, name)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteQuality(ctx, titleID, quality.Name); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete quality")
	}
	return nil
}
