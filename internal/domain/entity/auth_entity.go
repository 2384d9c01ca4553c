package entity

import "time"

// Credentials is a login attempt.
type Credentials struct {
	Username string
	Password string
}

// AuthResponse bundles the issued token with the identity it was issued for.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// User lifecycle event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// UserEvent is published after a lifecycle mutation commits. It feeds the
// search projection and carries no secret material.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Active     bool      `json:"active"`
	Roles      []string  `json:"roles,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserEvent snapshots u into an event of the given type.
func NewUserEvent(eventType string, u *User, at time.Time) UserEvent {
	return UserEvent{
		Type:       eventType,
		UserID:     u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Active:     u.Active,
		Roles:      u.Roles,
		OccurredAt: at.UTC(),
	}
}

// UserSummary is the searchable projection of a user.
type UserSummary struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Active   bool     `json:"active"`
	Roles    []string `json:"roles"`
}
