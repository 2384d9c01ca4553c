package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for the identity domain.
// PasswordHash holds the bcrypt hash, never the raw secret.
//
// Roles is owned by the aggregate but persisted through the user_roles
// association; stores attach it on every read.
type User struct {
	ID           string
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Roles        []string
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	return slices.Contains(u.Roles, name)
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	if u.Roles != nil {
		u.Roles = slices.Clone(u.Roles)
	}
	return u
}

// Registration is the candidate for a new account, carrying the raw password.
type Registration struct {
	Username string
	Name     string
	Email    string
	Password string
	Phone    string
}

// UserPatch is a partial change-set. Nil pointers (and a nil Roles slice)
// mean "keep the existing value".
type UserPatch struct {
	ID       string
	Name     *string
	Email    *string
	Password *string
	Phone    *string
	Active   *bool
	Roles    []string
}

// HasPassword reports whether the patch supplies a new raw password.
func (p UserPatch) HasPassword() bool {
	return p.Password != nil && *p.Password != ""
}

// MergePatch applies p onto a snapshot of existing and returns the merged
// snapshot. existing is left untouched. passwordHash is the hash to store:
// the caller resolves it from either the patch or the existing record.
// UpdatedAt never moves before CreatedAt.
func MergePatch(existing User, p UserPatch, passwordHash string, now time.Time) User {
	merged := existing.Clone()
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.Phone != nil {
		merged.Phone = *p.Phone
	}
	if p.Active != nil {
		merged.Active = *p.Active
	}
	if p.Roles != nil {
		merged.Roles = NormalizeRoles(p.Roles)
	}
	merged.PasswordHash = passwordHash
	if now.Before(merged.CreatedAt) {
		now = merged.CreatedAt
	}
	merged.UpdatedAt = now
	return merged
}

// NormalizeRoles returns the sorted, de-duplicated set of non-empty names.
// A nil input stays nil so callers can tell "absent" from "empty".
func NormalizeRoles(roles []string) []string {
	if roles == nil {
		return nil
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r != "" {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
