package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/config"
	redisclient "github.com/angelmondragon/streamflix-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// record is stored under the access session key. Only a digest of the
// refresh token is kept, so a leaked Redis snapshot cannot be replayed.
type record struct {
	UserID    uint      `json:"user_id"`
	TokenHash string    `json:"token_sha256"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Rotation is the outcome of a successful refresh.
type Rotation struct {
	AccessID     string
	RefreshToken string
	UserID       uint
}

// Manager issues, rotates and revokes refresh sessions. Each session is keyed
// by the access token's jti, so revoking it also invalidates that access token.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager requires a refresh ttl longer than the access token ttl.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute; ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, keyer: client, ttl: ttl, now: time.Now}, nil
}

// Generate opens a session for accessID and returns the raw refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string, userID uint) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errMissingAccessID
	}
	if userID == 0 {
		return "", fmt.Errorf("user id is required")
	}
	return m.open(ctx, accessID, userID)
}

// Rotate exchanges a valid refresh token for a new session. The old session is
// consumed atomically, so concurrent refreshes with the same token yield one
// winner. A wrong token leaves the session untouched.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Rotation, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Rotation{}, ErrInvalidRefreshToken
	}
	key := m.keyer.AccessSessionKey(oldAccessID)

	raw, err := m.store.Get(ctx, key)
	if err != nil {
		return Rotation{}, notFoundAsInvalid(err)
	}
	stored, ok := decodeRecord(raw)
	if !ok || !stored.matches(provided) {
		return Rotation{}, ErrInvalidRefreshToken
	}

	consumed, err := m.store.GetDel(ctx, key)
	if err != nil {
		return Rotation{}, notFoundAsInvalid(err)
	}
	if consumed != raw {
		return Rotation{}, ErrInvalidRefreshToken
	}

	accessID := NewAccessID()
	token, err := m.open(ctx, accessID, stored.UserID)
	if err != nil {
		return Rotation{}, err
	}
	return Rotation{AccessID: accessID, RefreshToken: token, UserID: stored.UserID}, nil
}

// Revoke deletes the session tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errMissingAccessID
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether the access ID still has a live session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errMissingAccessID
	}
	_, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redislib.Nil):
		return false, nil
	default:
		return false, err
	}
}

// NewAccessID produces the identifier used as both JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) open(ctx context.Context, accessID string, userID uint) (string, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(record{UserID: userID, TokenHash: digest(token), IssuedAt: m.clock()})
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (m *Manager) clock() time.Time {
	if m.now == nil {
		return time.Now().UTC()
	}
	return m.now().UTC()
}

func (r record) matches(provided string) bool {
	return r.TokenHash != "" && subtle.ConstantTimeCompare([]byte(r.TokenHash), []byte(digest(provided))) == 1
}

func decodeRecord(raw string) (record, bool) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.UserID == 0 {
		return record{}, false
	}
	return rec, true
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func notFoundAsInvalid(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
