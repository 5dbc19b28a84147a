package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/authz"
	"github.com/teamboard/teamboard-api/internal/models"
	"github.com/teamboard/teamboard-api/internal/team"
)

type MemberHandler struct {
	engine *team.Engine
	logger zerolog.Logger
}

func NewMemberHandler(engine *team.Engine, logger zerolog.Logger) *MemberHandler {
	return &MemberHandler{
		engine: engine,
		logger: logger.With().Str("handler", "member").Logger(),
	}
}

func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	members, err := h.engine.ListMembers(r.Context(), principal, mux.Vars(r)["teamID"])
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	teamID, userID := vars["teamID"], vars["userID"]

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	member, err := h.engine.ChangeRole(r.Context(), principal, teamID, userID, models.TeamRole(payload.Role))
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	if err := h.engine.RemoveMember(r.Context(), principal, vars["teamID"], vars["userID"]); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
