package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/streamflix-backend/api/controllers"
	subscriptionControllers "github.com/angelmondragon/streamflix-backend/api/controllers/subscriptions"
	"github.com/angelmondragon/streamflix-backend/api/middleware"
	"github.com/angelmondragon/streamflix-backend/internal/auth"
	"github.com/angelmondragon/streamflix-backend/internal/genres"
	"github.com/angelmondragon/streamflix-backend/internal/profiles"
	subscriptionsvc "github.com/angelmondragon/streamflix-backend/internal/subscriptions"
	"github.com/angelmondragon/streamflix-backend/internal/titles"
	"github.com/angelmondragon/streamflix-backend/internal/users"
	"github.com/angelmondragon/streamflix-backend/internal/viewing"
	"github.com/angelmondragon/streamflix-backend/pkg/auth/session"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/streamflix-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error)
	Revoke(ctx context.Context, accessID string) error
}

// RedisStore backs idempotency replay and the auth fixed-window limits.
type RedisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps carries everything the router mounts. Nil stores disable the
// middleware that depends on them.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Checks   []controllers.HealthCheck
	Store    RedisStore
	Sessions sessionManager
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer

	Auth          auth.Service
	Users         users.Service
	Subscriptions subscriptionsvc.Service
	Titles        titles.Service
	Genres        genres.Service
	Profiles      profiles.Service
	Viewing       viewing.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSAllowOrigins),
		middleware.NegotiateXML(),
	)

	var (
		idempotency = middleware.Idempotency(nil, logg)
		loginLimit  = func(next http.Handler) http.Handler { return next }
		signupLimit = loginLimit
	)
	if deps.Store != nil {
		idempotency = middleware.Idempotency(deps.Store, logg)
		loginLimit = middleware.AuthRateLimit(middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginEmailLimit,
		), deps.Store, logg)
		signupLimit = middleware.AuthRateLimit(middleware.NewAuthRateLimitPolicy(
			"register",
			cfg.AuthRateLimit.RegisterWindow,
			cfg.AuthRateLimit.RegisterIPLimit,
			cfg.AuthRateLimit.RegisterEmailLimit,
		), deps.Store, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Checks...))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(signupLimit, idempotency).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Get("/verify-email", controllers.AuthVerifyEmail(deps.Auth, logg))
		r.Post("/resend-verification", controllers.AuthResendVerification(deps.Auth, logg))
		r.With(loginLimit).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/forgot-password", controllers.AuthForgotPassword(deps.Auth, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(deps.Auth, logg))
		r.Get("/reset-password", controllers.AuthValidateResetToken(deps.Auth, logg))
		if deps.Sessions != nil {
			r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
		}
	})

	r.Route("/api/v1/subscriptions", func(r chi.Router) {
		r.Use(idempotency)
		r.Get("/plans", subscriptionControllers.ListPlans(deps.Subscriptions, logg))
		r.Post("/", subscriptionControllers.CreateOrUpdate(deps.Subscriptions, logg))
		r.Post("/invitations", subscriptionControllers.CreateInvitation(deps.Subscriptions, logg))
		r.Post("/invitations/redeem", subscriptionControllers.RedeemInvitation(deps.Subscriptions, logg))
		r.Get("/{id}", subscriptionControllers.Get(deps.Subscriptions, logg))
		r.Patch("/{id}", subscriptionControllers.Update(deps.Subscriptions, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, logg))
		r.Use(idempotency)

		r.Get("/users/me", controllers.UsersMe(deps.Users, logg))
		r.Route("/titles", controllers.TitleRoutes(deps.Titles, logg))
		r.Route("/genres", controllers.GenreRoutes(deps.Genres, logg))
		r.Route("/profiles", controllers.ProfileRoutes(deps.Profiles, logg))
		r.Route("/viewing", controllers.ViewingRoutes(deps.Viewing, logg))
	})

	return r
}
