package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devrecs/devrecs-backend/api/controllers"
	"github.com/devrecs/devrecs-backend/api/middleware"
	"github.com/devrecs/devrecs-backend/internal/attribution"
	"github.com/devrecs/devrecs-backend/internal/clicks"
	"github.com/devrecs/devrecs-backend/internal/earnings"
	"github.com/devrecs/devrecs-backend/pkg/config"
	"github.com/devrecs/devrecs-backend/pkg/db"
	"github.com/devrecs/devrecs-backend/pkg/logger"
	"github.com/devrecs/devrecs-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Clicks      clicks.Service
	Earnings    earnings.Service
	Attribution attribution.Engine
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	clickPolicy := middleware.NewRateLimitPolicy(
		"click",
		cfg.RateLimit.ClickWindow,
		cfg.RateLimit.ClickIPLimit,
	)

	// A nil *redis.Client must stay a nil interface so the ready check,
	// rate limiter, and idempotency guard all degrade to pass-through.
	var redisDep interface {
		Ping(ctx context.Context) error
	}
	rateLimit := middleware.RateLimit(clickPolicy, nil, logg)
	idempotency := middleware.Idempotency(nil, logg)
	if deps.Redis != nil {
		redisDep = deps.Redis
		rateLimit = middleware.RateLimit(clickPolicy, deps.Redis, logg)
		idempotency = middleware.Idempotency(deps.Redis, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadyDeps(deps.DB, redisDep)))
	})

	r.Route("/api/public/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.With(rateLimit).
			Post("/posts/{postId}/click", controllers.TrackPostClick(deps.Clicks, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Route("/earnings", func(r chi.Router) {
			r.Get("/", controllers.EarningsSummary(deps.Earnings, logg))
			r.Get("/posts", controllers.EarningsByPost(deps.Earnings, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(idempotency)
		r.Route("/earnings", func(r chi.Router) {
			r.Post("/process", controllers.AdminProcessEarnings(deps.Attribution, logg))
			r.Get("/stats", controllers.AdminEarningsStats(deps.Earnings, logg))
		})
	})

	return r
}
