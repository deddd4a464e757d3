package auth

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/users"
	pkgAuth "github.com/angelmondragon/streamflix-backend/pkg/auth"
	"github.com/angelmondragon/streamflix-backend/pkg/auth/session"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/mailer"
	"github.com/angelmondragon/streamflix-backend/pkg/security"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	lockDuration         = 30 * time.Minute
	maxFailedAttempts    = 3
)

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	VerifyEmail(ctx context.Context, token string) (*MessageResponse, error)
	ResendVerification(ctx context.Context, email string) (*MessageResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) (*MessageResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error)
	ValidateResetToken(ctx context.Context, token string) (*TokenValidity, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, userID uint) (string, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Mailer         mailer.Mailer
	Logger         *logger.Logger
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Clock          func() time.Time
}

type service struct {
	users       userRepository
	session     sessionManager
	mail        mailer.Mailer
	logg        *logger.Logger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		mail:        params.Mailer,
		logg:        params.Logger,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		now:         func() time.Time { return clock().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := users.NormalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "No user found for email: %s", email)
	}
	if !user.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Please verify your email before logging in")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Account is deactivated")
	}

	now := s.now()
	if user.IsLocked(now) {
		minutes := int(math.Ceil(user.AccountLockedUntil.Sub(now).Minutes()))
		return nil, pkgerrors.Newf(pkgerrors.CodeUnauthorized, "Account is locked. Try again in %d minutes.", minutes)
	}
	if user.AccountLockedUntil != nil {
		if err := s.resetLoginCounters(ctx, user); err != nil {
			return nil, err
		}
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, s.recordFailedLogin(ctx, user, now)
	}

	if user.FailedLoginAttempts > 0 {
		if err := s.resetLoginCounters(ctx, user); err != nil {
			return nil, err
		}
	}
	s.upgradePasswordHash(ctx, user, req.Password)
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) recordFailedLogin(ctx context.Context, user *models.User, now time.Time) error {
	attempts := user.FailedLoginAttempts + 1
	if attempts < maxFailedAttempts {
		if err := s.users.Update(ctx, user.ID, map[string]any{"failed_login_attempts": attempts}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record failed login")
		}
		return pkgerrors.Newf(pkgerrors.CodeUnauthorized, "Invalid password (%d/%d attempts)", attempts, maxFailedAttempts)
	}

	lockedUntil := now.Add(lockDuration)
	if err := s.users.Update(ctx, user.ID, map[string]any{
		"failed_login_attempts": attempts,
		"account_locked_until":  lockedUntil,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock account")
	}
	if err := s.mail.SendAccountLocked(ctx, user.Email, lockedUntil); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID), "send account locked email", err)
	}
	return pkgerrors.Newf(pkgerrors.CodeUnauthorized,
		"Account locked due to too many failed login attempts. Try again in %d minutes.", int(lockDuration.Minutes()))
}

// upgradePasswordHash re-hashes a verified password stored under an older
// argon2 cost. Failures only cost the upgrade, never the login.
func (s *service) upgradePasswordHash(ctx context.Context, user *models.User, password string) {
	if !security.NeedsRehash(user.PasswordHash, s.passwordCfg) {
		return
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err == nil {
		err = s.users.Update(ctx, user.ID, map[string]any{"password_hash": hash})
	}
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID), "upgrade password hash", err)
		return
	}
	user.PasswordHash = hash
}

func (s *service) resetLoginCounters(ctx context.Context, user *models.User) error {
	if err := s.users.Update(ctx, user.ID, map[string]any{
		"failed_login_attempts": 0,
		"account_locked_until":  nil,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset login counters")
	}
	user.FailedLoginAttempts = 0
	user.AccountLockedUntil = nil
	return nil
}
