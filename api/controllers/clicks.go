package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devrecs/devrecs-backend/api/middleware"
	"github.com/devrecs/devrecs-backend/api/responses"
	"github.com/devrecs/devrecs-backend/api/validators"
	"github.com/devrecs/devrecs-backend/internal/clicks"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/devrecs/devrecs-backend/pkg/logger"
)

const maxClickMetaLen = 512

// TrackPostClick records a click on a published post. Anonymous traffic is
// welcome; when a bearer token is present the viewer identity rides along so
// self-clicks can be excluded.
func TrackPostClick(svc clicks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "click service unavailable"))
			return
		}

		postID, err := uuid.Parse(chi.URLParam(r, "postId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid post id"))
			return
		}

		input := clicks.TrackClickInput{
			PostID:    postID,
			UserIP:    middleware.ClientIP(r),
			UserAgent: validators.SanitizeString(r.UserAgent(), maxClickMetaLen),
			Referrer:  validators.SanitizeString(r.Referer(), maxClickMetaLen),
		}

		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			viewerID, parseErr := uuid.Parse(raw)
			if parseErr == nil {
				input.ViewerID = &viewerID
			}
		}

		tracked, err := svc.TrackClick(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"tracked": tracked})
	}
}
