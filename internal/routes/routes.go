package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/teamboard/teamboard-api/internal/authz"
	"github.com/teamboard/teamboard-api/internal/handlers"
)

// NewRouter sets up the API routes
func NewRouter(
	auth *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	inviteHandler *handlers.InviteHandler,
	memberHandler *handlers.MemberHandler,
	notificationHandler *handlers.NotificationHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/signup", auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/login", auth.Login).Methods(http.MethodPost)

	// Everything below requires an authenticated principal.
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware)
	api.Use(authz.RequirePrincipal)

	api.HandleFunc("/teams", teamHandler.CreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams", teamHandler.ListMyTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams/{teamID}", teamHandler.GetTeam).Methods(http.MethodGet)
	api.HandleFunc("/teams/{teamID}", teamHandler.DeleteTeam).Methods(http.MethodDelete)

	api.HandleFunc("/teams/{teamID}/invitations", inviteHandler.CreateInvitation).Methods(http.MethodPost)
	api.HandleFunc("/teams/{teamID}/invitations", inviteHandler.ListTeamInvitations).Methods(http.MethodGet)
	api.HandleFunc("/invitations/pending/count", inviteHandler.PendingCount).Methods(http.MethodGet)
	api.HandleFunc("/invitations/{invitationID}/accept", inviteHandler.AcceptInvitation).Methods(http.MethodPost)
	api.HandleFunc("/invitations/{invitationID}/reject", inviteHandler.RejectInvitation).Methods(http.MethodPost)

	api.HandleFunc("/teams/{teamID}/members", memberHandler.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/teams/{teamID}/members/{userID}/role", memberHandler.ChangeRole).Methods(http.MethodPut)
	api.HandleFunc("/teams/{teamID}/members/{userID}", memberHandler.RemoveMember).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationID}/read", notificationHandler.MarkRead).Methods(http.MethodPost)

	return router
}
