package controllers

import (
	"net/http"
	"time"

	"github.com/devrecs/devrecs-backend/api/responses"
	"github.com/devrecs/devrecs-backend/api/validators"
	"github.com/devrecs/devrecs-backend/internal/attribution"
	"github.com/devrecs/devrecs-backend/internal/earnings"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/devrecs/devrecs-backend/pkg/logger"
)

type processEarningsRequest struct {
	AsOf string `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// AdminProcessEarnings runs one attribution sweep synchronously and returns
// its result. The body may carry an as_of date for re-running a past day;
// an empty body sweeps as of now.
func AdminProcessEarnings(engine attribution.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attribution engine unavailable"))
			return
		}

		asOf := time.Now().UTC()
		if r.ContentLength > 0 {
			var req processEarningsRequest
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if req.AsOf != "" {
				parsed, err := time.Parse(time.DateOnly, req.AsOf)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid as_of date"))
					return
				}
				asOf = parsed
			}
		}

		result, err := engine.RunBatch(r.Context(), asOf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminEarningsStats returns platform-wide ledger totals and top posts.
func AdminEarningsStats(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "earnings service unavailable"))
			return
		}

		stats, err := svc.PlatformStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
