package team

import (
	"github.com/teamboard/teamboard-api/internal/authz"
	"github.com/teamboard/teamboard-api/internal/models"
)

// Membership authority: pure predicates over already-fetched entities. They
// never touch the persistence layer; the engine fetches and passes state in.
//
// membership is the actor's member row on the team, nil when the actor holds
// none. The owner never has a member row; ownership is checked on the team.

// isTeamAdmin reports whether the actor administers the team, either as its
// owner or through an admin membership.
func isTeamAdmin(t models.Team, actor authz.Principal, membership *models.TeamMember) bool {
	if t.IsOwner(actor.ID) {
		return true
	}
	return membership != nil && membership.Role == models.RoleAdmin
}

// CanInvite: owners and admins may invite; plain members may not.
func CanInvite(t models.Team, actor authz.Principal, membership *models.TeamMember) bool {
	return isTeamAdmin(t, actor, membership)
}

// CanChangeRole: owners and admins may change roles, but never the owner's.
// The owner's implicit role is immutable.
func CanChangeRole(t models.Team, actor authz.Principal, membership *models.TeamMember, targetUserID string) bool {
	if t.IsOwner(targetUserID) {
		return false
	}
	return isTeamAdmin(t, actor, membership)
}

// CanRemoveMember: self-removal is always allowed; otherwise owners and admins
// may remove anyone except the owner.
func CanRemoveMember(t models.Team, actor authz.Principal, membership *models.TeamMember, targetUserID string) bool {
	if actor.ID == targetUserID {
		return true
	}
	if t.IsOwner(targetUserID) {
		return false
	}
	return isTeamAdmin(t, actor, membership)
}

// CanDeleteTeam: exactly the owner. Admins cannot delete.
func CanDeleteTeam(t models.Team, actor authz.Principal) bool {
	return t.IsOwner(actor.ID)
}
