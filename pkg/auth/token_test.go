package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/streamflix-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "streamflix",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: 7, Email: "john@example.com", JTI: "session-1"})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)

	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{Audience}, claims.Audience)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 3})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token+"x")
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsOtherIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 3})
	require.NoError(t, err)

	other := cfg
	other.Issuer = "someone-else"
	_, err = ParseAccessToken(other, token)
	assert.Error(t, err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: 4, JTI: "old"})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expired"), "unexpected error: %v", err)

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "old", claims.ID)
	assert.EqualValues(t, 4, claims.UserID)
}

func TestMintAccessTokenValidatesInput(t *testing.T) {
	cfg := testJWTConfig()

	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{})
	assert.Error(t, err, "missing user id")

	noSecret := cfg
	noSecret.Secret = ""
	_, err = MintAccessToken(noSecret, time.Now(), AccessTokenPayload{UserID: 1})
	assert.Error(t, err)

	noExpiry := cfg
	noExpiry.ExpirationMinutes = 0
	_, err = MintAccessToken(noExpiry, time.Now(), AccessTokenPayload{UserID: 1})
	assert.Error(t, err)
}

func signRaw(t *testing.T, cfg config.JWTConfig, claims AccessTokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)
	return token
}

func TestParseAccessTokenRejectsForeignAudience(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	token := signRaw(t, cfg, AccessTokenClaims{
		UserID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   "5",
			Audience:  jwt.ClaimStrings{"billing-api"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	})

	_, err := ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
}

func TestParseAccessTokenRejectsSubjectMismatch(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	token := signRaw(t, cfg, AccessTokenClaims{
		UserID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   "6",
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	})

	_, err := ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, errSubjectMismatch)

	_, err = ParseAccessTokenAllowExpired(cfg, token)
	assert.ErrorIs(t, err, errSubjectMismatch)
}

func TestParseAccessTokenRequiresExpiry(t *testing.T) {
	cfg := testJWTConfig()
	token := signRaw(t, cfg, AccessTokenClaims{
		UserID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cfg.Issuer,
			Subject:  "5",
			Audience: jwt.ClaimStrings{Audience},
		},
	})

	_, err := ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}
