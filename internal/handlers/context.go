package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/team"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondEngineError maps the lifecycle engine's error kinds onto HTTP
// statuses. Unrecognized errors are treated as internal and logged.
func respondEngineError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, team.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, team.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, team.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, team.ErrInvitationExpired):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, team.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, team.ErrInvalidOperation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.Error().Err(err).Msg("unexpected engine error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
