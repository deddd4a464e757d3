package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	pkgAuth "github.com/angelmondragon/streamflix-backend/pkg/auth"
	"github.com/angelmondragon/streamflix-backend/pkg/auth/session"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

const bearerScheme = "bearer "

// BearerToken extracts the token from the Authorization header, with or without the scheme.
func BearerToken(r *http.Request) (string, error) {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(token) >= len(bearerScheme) && strings.EqualFold(token[:len(bearerScheme)], bearerScheme) {
		token = strings.TrimSpace(token[len(bearerScheme):])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// Auth admits requests whose bearer token verifies and whose session is still
// live. The user id and email are placed on the context.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, cfg, verifier)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="streamflix"`)
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := withIdentity(r.Context(), claims)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (*pkgAuth.AccessTokenClaims, error) {
	token, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if verifier == nil {
		return claims, nil
	}
	live, err := verifier.HasSession(r.Context(), claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if !live {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return claims, nil
}

func withIdentity(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	ctx = WithUserID(ctx, claims.UserID)
	return context.WithValue(ctx, ctxEmail, claims.Email)
}
