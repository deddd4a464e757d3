package subscriptions

import (
	"context"
	"strings"

	"github.com/angelmondragon/streamflix-backend/internal/users"
	"github.com/angelmondragon/streamflix-backend/pkg/db"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
	"gorm.io/gorm"
)

func (s *service) CreateInvitation(ctx context.Context, input CreateInvitationInput) (*InvitationDTO, error) {
	inviter, err := s.users.FindByID(ctx, input.InviterUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inviter")
	}
	if inviter == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "User %d not found", input.InviterUserID)
	}

	now := s.now()
	email := users.NormalizeEmail(input.InviteeEmail)

	pending, err := s.repo.FindPendingInvitation(ctx, inviter.ID, email, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pending invitations")
	}
	if pending != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgActiveInvitation)
	}

	percent := defaultDiscountPercent
	if input.DiscountPercent != nil {
		percent = *input.DiscountPercent
	}
	duration := defaultDiscountDurationDays
	if input.DiscountDurationDays != nil {
		duration = *input.DiscountDurationDays
	}
	if percent < 0 || percent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discountPercent must be between 0 and 100")
	}
	if duration < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discountDurationDays must be at least 1")
	}

	inv := &models.Invitation{
		InviterID:            inviter.ID,
		InviteeEmail:         email,
		Status:               enums.InvitationStatusPending,
		DiscountPercent:      percent,
		DiscountDurationDays: duration,
		ExpiresAt:            addDays(now, invitationLifetimeDays),
	}

	// The unique index on code arbitrates collisions; a taken code is redrawn.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invitation code")
		}
		inv.ID = 0
		inv.Code = code
		err = s.repo.CreateInvitation(ctx, inv)
		if err == nil {
			s.metrics.IncInvitationCreated()
			return InvitationFromModel(inv), nil
		}
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create invitation")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique invitation code")
}

func (s *service) RedeemInvitation(ctx context.Context, input RedeemInvitationInput) (*InvitationDTO, error) {
	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "User %d not found", input.UserID)
	}
	inv, err := s.ensureInvitation(ctx, strings.TrimSpace(input.Code), user)
	if err != nil {
		return nil, err
	}
	return InvitationFromModel(inv), nil
}

// ensureInvitation checks that user may use the invitation behind code. The
// only write it performs is persisting a lazily detected expiry.
func (s *service) ensureInvitation(ctx context.Context, code string, user *models.User) (*models.Invitation, error) {
	if user.ReferralDiscountUsed {
		s.metrics.IncInvitationRejected("discount_used")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgReferralUsed)
	}

	inv, err := s.repo.FindInvitationByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invitation")
	}
	if inv == nil {
		s.metrics.IncInvitationRejected("not_found")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgInvitationNotFound)
	}
	if inv.Status != enums.InvitationStatusPending {
		s.metrics.IncInvitationRejected("not_pending")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvitationUsed)
	}
	if inv.IsExpired(s.now()) {
		if err := s.repo.MarkInvitationExpired(ctx, inv.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire invitation")
		}
		s.metrics.IncInvitationRejected("expired")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvitationExpired)
	}
	if !strings.EqualFold(inv.InviteeEmail, user.Email) {
		s.metrics.IncInvitationRejected("email_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvitationMismatch)
	}
	return inv, nil
}

// applyInviterDiscount gives the inviter the same discount once. It runs after
// the invitee's subscription has committed.
func (s *service) applyInviterDiscount(ctx context.Context, inviterID uint, inv *models.Invitation) error {
	inviter, err := s.users.FindByID(ctx, inviterID)
	if err != nil {
		return err
	}
	if inviter == nil || inviter.ReferralDiscountUsed {
		s.metrics.IncInviterDiscount(metrics.OutcomeSkipped)
		return nil
	}

	active, err := s.repo.FindLatestActive(ctx, inviterID)
	if err != nil {
		return err
	}

	// The latch is claimed before the discount is written, so a concurrent
	// redemption that loses the race leaves the inviter's subscription alone.
	outcome := metrics.OutcomeConsumed
	endsAt := addDays(s.now(), inv.DiscountDurationDays)
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		latched, err := s.users.MarkReferralDiscountUsedWithTx(tx, inviterID)
		if err != nil {
			return err
		}
		if !latched {
			outcome = metrics.OutcomeSkipped
			return nil
		}
		if active == nil {
			return nil
		}
		outcome = metrics.OutcomeApplied
		return s.repo.UpdateDiscountWithTx(tx, active.ID, inv.DiscountPercent, endsAt)
	})
	if err != nil {
		return err
	}
	s.metrics.IncInviterDiscount(outcome)
	return nil
}
