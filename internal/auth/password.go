package auth

import (
	"context"
	"strings"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/security"
)

const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

// ForgotPassword answers identically whether or not the account exists.
func (s *service) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	resp := &MessageResponse{Message: forgotPasswordMessage}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user == nil {
		return resp, nil
	}

	token, err := security.GenerateToken(security.TokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{
		"password_reset_token":            token,
		"password_reset_token_expires_at": s.now().Add(resetTokenTTL),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}
	if err := s.mail.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID), "send password reset email", err)
	}
	return resp, nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	user, err := s.lookupResetToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid or expired reset token")
	}
	if s.resetTokenExpired(user) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Reset token has expired")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{
		"password_hash":                   hash,
		"password_reset_token":            nil,
		"password_reset_token_expires_at": nil,
		"failed_login_attempts":           0,
		"account_locked_until":            nil,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return &MessageResponse{Message: "Password has been reset successfully"}, nil
}

func (s *service) ValidateResetToken(ctx context.Context, token string) (*TokenValidity, error) {
	user, err := s.lookupResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &TokenValidity{Valid: user != nil && !s.resetTokenExpired(user)}, nil
}

func (s *service) lookupResetToken(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	user, err := s.users.FindByPasswordResetToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}
	return user, nil
}

func (s *service) resetTokenExpired(user *models.User) bool {
	return user.PasswordResetTokenExpiresAt == nil || user.PasswordResetTokenExpiresAt.Before(s.now())
}
