package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/authz"
	"github.com/teamboard/teamboard-api/internal/models"
	"github.com/teamboard/teamboard-api/internal/repository"
	"github.com/teamboard/teamboard-api/internal/team"
)

type TeamHandler struct {
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	engine     *team.Engine
	logger     zerolog.Logger
}

func NewTeamHandler(teamRepo repository.TeamRepository, memberRepo repository.MemberRepository, engine *team.Engine, logger zerolog.Logger) *TeamHandler {
	return &TeamHandler{
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		engine:     engine,
		logger:     logger.With().Str("handler", "team").Logger(),
	}
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		http.Error(w, "Team name is required", http.StatusBadRequest)
		return
	}

	created, err := h.teamRepo.CreateTeam(r.Context(), payload.Name, strings.TrimSpace(payload.Description), principal.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create team")
		http.Error(w, "Failed to create team", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	teamID := mux.Vars(r)["teamID"]
	t, err := h.teamRepo.GetTeamByID(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("team_id", teamID).Msg("failed to load team")
		http.Error(w, "Failed to load team", http.StatusInternalServerError)
		return
	}

	members, err := h.memberRepo.ListMembersByTeam(r.Context(), t.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("team_id", t.ID).Msg("failed to list members")
		http.Error(w, "Failed to load team", http.StatusInternalServerError)
		return
	}

	// Only the owner and members can see the roster.
	if !t.IsOwner(principal.ID) && !containsMember(members, principal.ID) {
		http.Error(w, "Not a member of this team", http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		models.Team
		Members []models.TeamMember `json:"members"`
	}{Team: t, Members: members})
}

func (h *TeamHandler) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	teams, err := h.teamRepo.ListTeamsByUser(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list teams")
		http.Error(w, "Failed to list teams", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	teamID := mux.Vars(r)["teamID"]
	if err := h.engine.DeleteTeam(r.Context(), principal, teamID); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func containsMember(members []models.TeamMember, userID string) bool {
	for _, member := range members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}
