package auth

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/streamflix-backend/internal/users"
	pkgAuth "github.com/angelmondragon/streamflix-backend/pkg/auth"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/db/dbtest"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type sentMail struct {
	template string
	to       string
	token    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) record(template, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{template: template, to: to, token: token})
	return m.err
}

func (m *recordingMailer) SendVerification(ctx context.Context, email, token string) error {
	return m.record("verification", email, token)
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	return m.record("password_reset", email, token)
}

func (m *recordingMailer) SendAccountLocked(ctx context.Context, email string, unlockAt time.Time) error {
	return m.record("account_locked", email, "")
}

func (m *recordingMailer) SendWelcome(ctx context.Context, email, name string) error {
	return m.record("welcome", email, "")
}

func (m *recordingMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type stubSessionManager struct {
	accessID string
	userID   uint
	err      error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string, userID uint) (string, error) {
	s.accessID = accessID
	s.userID = userID
	if s.err != nil {
		return "", s.err
	}
	return "refresh-" + accessID, nil
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type authHarness struct {
	svc     Service
	repo    *users.Repository
	mail    *recordingMailer
	session *stubSessionManager
	logs    *bytes.Buffer
	now     time.Time
	jwtCfg  config.JWTConfig
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()
	h := &authHarness{
		repo:    users.NewRepository(dbtest.Open(t)),
		mail:    &recordingMailer{},
		session: &stubSessionManager{},
		logs:    &bytes.Buffer{},
		now:     testNow,
		jwtCfg:  config.JWTConfig{Secret: "secret", Issuer: "streamflix", ExpirationMinutes: 30},
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       h.repo,
		SessionManager: h.session,
		Mailer:         h.mail,
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: h.logs}),
		JWTConfig:      h.jwtCfg,
		PasswordConfig: testPasswordConfig,
		Clock:          func() time.Time { return h.now },
	})
	require.NoError(t, err)
	h.svc = svc
	return h
}

func (h *authHarness) verifiedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	require.NoError(t, err)
	user, err := h.repo.Create(context.Background(), users.CreateUserDTO{
		Name:          "Viewer",
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: true,
	})
	require.NoError(t, err)
	return user
}

func assertCode(t *testing.T, err error, code pkgerrors.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, code, typed.Code())
	assert.Equal(t, msg, typed.Message())
}

func TestRegisterCreatesUnverifiedUserAndSendsToken(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	dto, err := h.svc.Register(ctx, RegisterRequest{Name: " John ", Email: "John@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", dto.Email)
	assert.Equal(t, "John", dto.Name)
	assert.False(t, dto.EmailVerified)

	stored, err := h.repo.FindByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationToken)
	assert.Len(t, *stored.VerificationToken, 64)
	require.NotNil(t, stored.VerificationTokenExpiresAt)
	assert.WithinDuration(t, testNow.Add(24*time.Hour), *stored.VerificationTokenExpiresAt, time.Second)

	mail := h.mail.last(t)
	assert.Equal(t, "verification", mail.template)
	assert.Equal(t, *stored.VerificationToken, mail.token)

	_, err = h.svc.Register(ctx, RegisterRequest{Name: "Again", Email: "john@example.com", Password: "password123"})
	assertCode(t, err, pkgerrors.CodeValidation, "User with this email already exists")
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	h := newAuthHarness(t)
	h.mail.err = errors.New("smtp down")

	_, err := h.svc.Register(context.Background(), RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Contains(t, h.logs.String(), "send verification email")
}

func TestVerifyEmailFlow(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "password123"})
	require.NoError(t, err)
	token := h.mail.last(t).token

	_, err = h.svc.VerifyEmail(ctx, "bogus")
	assertCode(t, err, pkgerrors.CodeValidation, "Invalid verification token")

	resp, err := h.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, "welcome", h.mail.last(t).template)

	stored, err := h.repo.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationToken)

	_, err = h.svc.ResendVerification(ctx, "bob@example.com")
	assertCode(t, err, pkgerrors.CodeValidation, "Email is already verified")
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, RegisterRequest{Name: "Late", Email: "late@example.com", Password: "password123"})
	require.NoError(t, err)
	token := h.mail.last(t).token

	h.now = testNow.Add(25 * time.Hour)
	_, err = h.svc.VerifyEmail(ctx, token)
	assertCode(t, err, pkgerrors.CodeValidation, "Verification token has expired")

	resp, err := h.svc.ResendVerification(ctx, "late@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Verification email sent", resp.Message)
	fresh := h.mail.last(t).token
	assert.NotEqual(t, token, fresh)

	_, err = h.svc.VerifyEmail(ctx, fresh)
	require.NoError(t, err)

	_, err = h.svc.ResendVerification(ctx, "ghost@example.com")
	assertCode(t, err, pkgerrors.CodeNotFound, "User not found")
}

func TestLoginSuccessMintsTokens(t *testing.T) {
	h := newAuthHarness(t)
	user := h.verifiedUser(t, "login@example.com", "password123")

	resp, err := h.svc.Login(context.Background(), LoginRequest{Email: "LOGIN@example.com", Password: "password123"})
	require.NoError(t, err)

	// The service clock is pinned, so only the signature and claims are checked here.
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(h.jwtCfg, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(30*time.Minute), claims.ExpiresAt.Time.UTC())
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, h.session.accessID, claims.ID)
	assert.Equal(t, user.ID, h.session.userID)
	assert.Equal(t, "refresh-"+claims.ID, resp.RefreshToken)
	require.NotNil(t, resp.User.LastLoginAt)
}

func TestLoginUpgradesOutdatedPasswordHash(t *testing.T) {
	h := newAuthHarness(t)
	legacy := testPasswordConfig
	legacy.ArgonTime = 2
	hash, err := security.HashPassword("password123", legacy)
	require.NoError(t, err)
	user, err := h.repo.Create(context.Background(), users.CreateUserDTO{
		Name:          "Legacy",
		Email:         "legacy@example.com",
		PasswordHash:  hash,
		EmailVerified: true,
	})
	require.NoError(t, err)

	_, err = h.svc.Login(context.Background(), LoginRequest{Email: "legacy@example.com", Password: "password123"})
	require.NoError(t, err)

	stored, err := h.repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, hash, stored.PasswordHash)
	assert.False(t, security.NeedsRehash(stored.PasswordHash, testPasswordConfig))
	ok, err := security.VerifyPassword("password123", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginRejections(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"})
	assertCode(t, err, pkgerrors.CodeNotFound, "No user found for email: nobody@example.com")

	_, err = h.svc.Register(ctx, RegisterRequest{Name: "New", Email: "new@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = h.svc.Login(ctx, LoginRequest{Email: "new@example.com", Password: "password123"})
	assertCode(t, err, pkgerrors.CodeUnauthorized, "Please verify your email before logging in")

	inactive := h.verifiedUser(t, "off@example.com", "password123")
	require.NoError(t, h.repo.Update(ctx, inactive.ID, map[string]any{"is_active": false}))
	_, err = h.svc.Login(ctx, LoginRequest{Email: "off@example.com", Password: "password123"})
	assertCode(t, err, pkgerrors.CodeUnauthorized, "Account is deactivated")
}

func TestLoginLocksAfterThreeFailures(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	user := h.verifiedUser(t, "lock@example.com", "password123")
	bad := LoginRequest{Email: "lock@example.com", Password: "wrong-password"}

	_, err := h.svc.Login(ctx, bad)
	assertCode(t, err, pkgerrors.CodeUnauthorized, "Invalid password (1/3 attempts)")
	_, err = h.svc.Login(ctx, bad)
	assertCode(t, err, pkgerrors.CodeUnauthorized, "Invalid password (2/3 attempts)")
	_, err = h.svc.Login(ctx, bad)
	assertCode(t, err, pkgerrors.CodeUnauthorized, "Account locked due to too many failed login attempts. Try again in 30 minutes.")
	assert.Equal(t, "account_locked", h.mail.last(t).template)

	h.now = testNow.Add(10*time.Minute + 30*time.Second)
	_, err = h.svc.Login(ctx, LoginRequest{Email: "lock@example.com", Password: "password123"})
	assertCode(t, err, pkgerrors.CodeUnauthorized, "Account is locked. Try again in 20 minutes.")

	h.now = testNow.Add(31 * time.Minute)
	_, err = h.svc.Login(ctx, LoginRequest{Email: "lock@example.com", Password: "password123"})
	require.NoError(t, err)

	stored, err := h.repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.AccountLockedUntil)
}

func TestForgotAndResetPassword(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.verifiedUser(t, "forgetful@example.com", "password123")

	unknown, err := h.svc.ForgotPassword(ctx, "ghost@example.com")
	require.NoError(t, err)
	known, err := h.svc.ForgotPassword(ctx, "forgetful@example.com")
	require.NoError(t, err)
	assert.Equal(t, unknown.Message, known.Message)

	mail := h.mail.last(t)
	assert.Equal(t, "password_reset", mail.template)

	validity, err := h.svc.ValidateResetToken(ctx, mail.token)
	require.NoError(t, err)
	assert.True(t, validity.Valid)

	_, err = h.svc.ResetPassword(ctx, ResetPasswordRequest{Token: "nope", NewPassword: "newpassword1"})
	assertCode(t, err, pkgerrors.CodeValidation, "Invalid or expired reset token")

	_, err = h.svc.ResetPassword(ctx, ResetPasswordRequest{Token: mail.token, NewPassword: "newpassword1"})
	require.NoError(t, err)

	validity, err = h.svc.ValidateResetToken(ctx, mail.token)
	require.NoError(t, err)
	assert.False(t, validity.Valid)

	_, err = h.svc.Login(ctx, LoginRequest{Email: "forgetful@example.com", Password: "newpassword1"})
	require.NoError(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.verifiedUser(t, "slow@example.com", "password123")

	_, err := h.svc.ForgotPassword(ctx, "slow@example.com")
	require.NoError(t, err)
	token := h.mail.last(t).token

	h.now = testNow.Add(2 * time.Hour)
	validity, err := h.svc.ValidateResetToken(ctx, token)
	require.NoError(t, err)
	assert.False(t, validity.Valid)

	_, err = h.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "newpassword1"})
	assertCode(t, err, pkgerrors.CodeValidation, "Reset token has expired")
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
