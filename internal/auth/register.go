package auth

import (
	"context"
	"strings"

	"github.com/angelmondragon/streamflix-backend/internal/users"
	"github.com/angelmondragon/streamflix-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/security"
)

const msgEmailTaken = "User with this email already exists"

func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgEmailTaken)
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	token, err := security.GenerateToken(security.TokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}
	expiresAt := s.now().Add(verificationTokenTTL)

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:                       strings.TrimSpace(req.Name),
		Email:                      email,
		PasswordHash:               passwordHash,
		VerificationToken:          &token,
		VerificationTokenExpiresAt: &expiresAt,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgEmailTaken)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	if err := s.mail.SendVerification(ctx, user.Email, token); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID), "send verification email", err)
	}
	return users.FromModel(user), nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid verification token")
	}
	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup verification token")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid verification token")
	}
	if user.VerificationTokenExpiresAt != nil && user.VerificationTokenExpiresAt.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Verification token has expired")
	}

	if err := s.users.Update(ctx, user.ID, map[string]any{
		"email_verified":                true,
		"verification_token":            nil,
		"verification_token_expires_at": nil,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark email verified")
	}

	if err := s.mail.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID), "send welcome email", err)
	}
	return &MessageResponse{Message: "Email verified successfully. You can now log in."}, nil
}

func (s *service) ResendVerification(ctx context.Context, email string) (*MessageResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	if user.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email is already verified")
	}

	token, err := security.GenerateToken(security.TokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{
		"verification_token":            token,
		"verification_token_expires_at": s.now().Add(verificationTokenTTL),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store verification token")
	}
	if err := s.mail.SendVerification(ctx, user.Email, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification email")
	}
	return &MessageResponse{Message: "Verification email sent"}, nil
}
