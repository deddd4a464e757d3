package users

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/repo"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations. Lookups return
// nil, nil when no row matches.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a copy bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return repo.First[models.User](r.DB(ctx).Where("email = ?", NormalizeEmail(email)))
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return repo.First[models.User](r.DB(ctx).Where("id = ?", id))
}

func (r *Repository) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return repo.First[models.User](r.DB(ctx).Where("verification_token = ?", token))
}

func (r *Repository) FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	return repo.First[models.User](r.DB(ctx).Where("password_reset_token = ?", token))
}

// Update writes the supplied columns. Nil values clear nullable columns.
func (r *Repository) Update(ctx context.Context, id uint, fields map[string]any) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// MarkReferralDiscountUsed latches the one-time referral flag. It reports
// false when the flag was already set, so concurrent callers get one winner.
func (r *Repository) MarkReferralDiscountUsed(ctx context.Context, id uint) (bool, error) {
	res := r.DB(ctx).
		Model(&models.User{}).
		Where("id = ? AND referral_discount_used = ?", id, false).
		Update("referral_discount_used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// NormalizeEmail trims and lower-cases an address for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MarkReferralDiscountUsedWithTx latches the referral flag inside tx.
func (r *Repository) MarkReferralDiscountUsedWithTx(tx *gorm.DB, id uint) (bool, error) {
	return r.WithTx(tx).MarkReferralDiscountUsed(tx.Statement.Context, id)
}
