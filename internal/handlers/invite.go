package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/authz"
	"github.com/teamboard/teamboard-api/internal/models"
	"github.com/teamboard/teamboard-api/internal/team"
)

type InviteHandler struct {
	engine *team.Engine
	logger zerolog.Logger
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewInviteHandler(engine *team.Engine, logger zerolog.Logger) *InviteHandler {
	return &InviteHandler{
		engine: engine,
		logger: logger.With().Str("handler", "invite").Logger(),
	}
}

func (h *InviteHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	teamID := mux.Vars(r)["teamID"]
	if teamID == "" {
		http.Error(w, "team id is required", http.StatusBadRequest)
		return
	}

	var payload inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	role := models.TeamRole(strings.TrimSpace(payload.Role))
	if role == "" {
		role = models.RoleMember
	}

	inv, err := h.engine.CreateInvitation(r.Context(), principal, teamID, payload.Email, role)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, inv)
}

func (h *InviteHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, team.ActionAccept)
}

func (h *InviteHandler) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, team.ActionReject)
}

func (h *InviteHandler) resolve(w http.ResponseWriter, r *http.Request, action team.InvitationAction) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	invitationID := strings.TrimSpace(mux.Vars(r)["invitationID"])
	if invitationID == "" {
		http.Error(w, "invitation id is required", http.StatusBadRequest)
		return
	}

	inv, err := h.engine.ResolveInvitation(r.Context(), principal, invitationID, action)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

// PendingCount backs the navigation badge; the engine never fails it.
func (h *InviteHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	count := h.engine.CountPendingInvitations(r.Context(), principal)
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *InviteHandler) ListTeamInvitations(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	teamID := mux.Vars(r)["teamID"]
	invitations, err := h.engine.ListTeamInvitations(r.Context(), principal, teamID)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invitations": invitations})
}
