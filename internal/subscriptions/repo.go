package subscriptions

import (
	"context"
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/repo"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists plans, subscriptions and invitations. Single-row
// lookups return nil, nil when nothing matches.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListPlans returns every plan, cheapest first.
func (r *Repository) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	if err := r.DB(ctx).Order("price_cents ASC").Order("id ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *Repository) FindPlanByCode(ctx context.Context, code string) (*models.SubscriptionPlan, error) {
	return repo.First[models.SubscriptionPlan](r.DB(ctx).Where("code = ?", code))
}

// FindByID loads a subscription with its plan and redeemed invitation.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Subscription, error) {
	return repo.First[models.Subscription](
		r.DB(ctx).Preload("Plan").Preload("Invitation").Where("id = ?", id),
	)
}

// FindLatestOpen returns the user's most recent subscription that is not CANCELED.
func (r *Repository) FindLatestOpen(ctx context.Context, userID uint) (*models.Subscription, error) {
	return repo.First[models.Subscription](
		r.DB(ctx).
			Where("user_id = ? AND status IN ?", userID, enums.OpenSubscriptionStatuses()).
			Order("created_at DESC").
			Order("id DESC"),
	)
}

// FindLatestActive returns the user's ACTIVE subscription that runs longest.
func (r *Repository) FindLatestActive(ctx context.Context, userID uint) (*models.Subscription, error) {
	return repo.First[models.Subscription](
		r.DB(ctx).
			Where("user_id = ? AND status = ?", userID, enums.SubscriptionStatusActive).
			Order("current_period_end DESC").
			Order("id DESC"),
	)
}

// CountByUser counts every subscription row the user ever had.
func (r *Repository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Save inserts or fully updates sub, ignoring loaded associations.
func (r *Repository) Save(ctx context.Context, sub *models.Subscription) error {
	return r.DB(ctx).Omit(clause.Associations).Save(sub).Error
}

// SaveWithTx is Save inside tx.
func (r *Repository) SaveWithTx(tx *gorm.DB, sub *models.Subscription) error {
	return tx.Omit(clause.Associations).Save(sub).Error
}

// UpdateDiscountWithTx overwrites the discount window on a subscription.
func (r *Repository) UpdateDiscountWithTx(tx *gorm.DB, id uint, percent int, endsAt time.Time) error {
	return tx.Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"discount_percent": percent,
			"discount_ends_at": endsAt,
		}).Error
}

func (r *Repository) FindInvitationByCode(ctx context.Context, code string) (*models.Invitation, error) {
	return repo.First[models.Invitation](r.DB(ctx).Where("code = ?", code))
}

// FindPendingInvitation returns a PENDING invitation for the pair that has not expired at now.
func (r *Repository) FindPendingInvitation(ctx context.Context, inviterID uint, email string, now time.Time) (*models.Invitation, error) {
	return repo.First[models.Invitation](
		r.DB(ctx).Where(
			"inviter_id = ? AND invitee_email = ? AND status = ? AND expires_at > ?",
			inviterID, email, enums.InvitationStatusPending, now,
		),
	)
}

func (r *Repository) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	return r.DB(ctx).Create(inv).Error
}

// MarkInvitationExpired moves a PENDING invitation to EXPIRED.
func (r *Repository) MarkInvitationExpired(ctx context.Context, id uint) error {
	return r.DB(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, enums.InvitationStatusPending).
		Update("status", enums.InvitationStatusExpired).Error
}

// RedeemInvitationWithTx flips a PENDING invitation to REDEEMED. It reports
// false when another writer got there first.
func (r *Repository) RedeemInvitationWithTx(tx *gorm.DB, id, subscriptionID uint, at time.Time) (bool, error) {
	res := tx.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, enums.InvitationStatusPending).
		Updates(map[string]any{
			"status":          enums.InvitationStatusRedeemed,
			"redeemed_at":     at,
			"subscription_id": subscriptionID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
