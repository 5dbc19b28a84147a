package models

import "time"

// TeamRole is the role a member holds within a team. The team owner is not
// represented as a member row; ownership lives on Team.OwnerID.
type TeamRole string

const (
	RoleMember TeamRole = "member"
	RoleAdmin  TeamRole = "admin"
)

func IsValidTeamRole(role TeamRole) bool {
	return role == RoleMember || role == RoleAdmin
}

type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwner reports whether the given user owns the team.
func (t Team) IsOwner(userID string) bool {
	return userID != "" && t.OwnerID == userID
}

type TeamMember struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Role     TeamRole  `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
