package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/devrecs/devrecs-backend/api/responses"
	"github.com/devrecs/devrecs-backend/pkg/config"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/devrecs/devrecs-backend/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DevRecs-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DevRecs-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		var errs []error
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				if logg != nil {
					logCtx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(logCtx, "readiness check failed", err)
				}
				continue
			}
			checks[name] = "up"
		}

		if combined := multierr.Combine(errs...); combined != nil {
			responses.WriteError(r.Context(), nil, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

// ReadyDeps assembles the dependency map for HealthReady, skipping nil entries.
func ReadyDeps(db, redis pinger) map[string]pinger {
	deps := map[string]pinger{}
	if db != nil {
		deps["db"] = db
	}
	if redis != nil {
		deps["redis"] = redis
	}
	return deps
}
