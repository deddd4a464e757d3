package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/streamflix-backend/api/responses"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/streamflix-backend/pkg/redis"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	replayedHeader         = "Idempotent-Replayed"
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	maxIdempotentBody      = 1 << 20
)

type idempotencyRule struct {
	method   string
	path     string
	ttl      time.Duration
	required bool
}

// Subscription writes keep their replay window longer since they move money-like state.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, path: "/api/v1/auth/register", ttl: defaultIdempotencyTTL, required: true},
	{method: http.MethodPost, path: "/api/v1/subscriptions", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/subscriptions/invitations", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/subscriptions/invitations/redeem", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/titles", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/genres", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/profiles", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/v1/viewing/watchlist", ttl: defaultIdempotencyTTL},
}

func matchIdempotencyRule(method, path string) (idempotencyRule, bool) {
	path = strings.TrimSuffix(path, "/")
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.path == path {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

// storedResponse is what a replay writes back. Body is base64 on the wire.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// the create routes above. Reusing a key with a different body is rejected.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		guard := idempotencyGuard{store: store, logg: logg}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchIdempotencyRule(r.Method, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			switch {
			case clientKey != "":
				guard.serve(w, r, next, rule, clientKey)
			case rule.required:
				guard.fail(w, r, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func (g idempotencyGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler, rule idempotencyRule, clientKey string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody+1))
	if err != nil {
		g.fail(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
		return
	}
	if len(body) > maxIdempotentBody {
		g.fail(w, r, pkgerrors.New(pkgerrors.CodeValidation, "request body too large"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	hash := requestHash(body)
	key := g.store.IdempotencyKey(idempotencyScope(r), clientKey)

	prior, err := g.lookup(r.Context(), key)
	if err != nil {
		g.fail(w, r, err)
		return
	}
	if prior != nil {
		if prior.RequestHash != hash {
			g.fail(w, r, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
			return
		}
		prior.replay(w)
		return
	}

	rec := &statusRecorder{ResponseWriter: w, capture: &bytes.Buffer{}}
	next.ServeHTTP(rec, r)

	// Server errors are not cached so the client can retry with the same key.
	if rec.statusCode() >= http.StatusInternalServerError {
		return
	}
	g.persist(r.Context(), key, rule.ttl, storedResponse{
		Status:      rec.statusCode(),
		ContentType: rec.Header().Get("Content-Type"),
		Body:        rec.capture.Bytes(),
		RequestHash: hash,
	})
}

func (g idempotencyGuard) lookup(ctx context.Context, key string) (*storedResponse, error) {
	raw, err := g.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var prior storedResponse
	if err := json.Unmarshal([]byte(raw), &prior); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &prior, nil
}

// persist uses SetNX so a concurrent first writer wins.
func (g idempotencyGuard) persist(ctx context.Context, key string, ttl time.Duration, resp storedResponse) {
	payload, err := json.Marshal(resp)
	if err == nil {
		_, err = g.store.SetNX(ctx, key, string(payload), ttl)
	}
	if err != nil && g.logg != nil {
		g.logg.Error(g.logg.WithField(ctx, "idempotency_key", key), "idempotency.persist_failed", err)
	}
}

func (g idempotencyGuard) fail(w http.ResponseWriter, r *http.Request, err error) {
	responses.WriteError(r.Context(), g.logg, w, err)
}

func (s storedResponse) replay(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

// idempotencyScope binds a key to the caller and route, so two users may
// reuse the same client key independently.
func idempotencyScope(r *http.Request) string {
	user := ""
	if id := UserIDFromContext(r.Context()); id != 0 {
		user = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join([]string{user, r.Method, strings.TrimSuffix(r.URL.Path, "/")}, "|")
}

func requestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
