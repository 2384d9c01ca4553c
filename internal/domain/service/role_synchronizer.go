// Package service holds domain logic that spans more than one aggregate store.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	"github.com/oksasatya/user-service/internal/domain/repository"
)

// RoleSynchronizer keeps the user_roles association equal to a target set of
// role names. Every write is a full replace: all rows for the user are
// deleted before any new row is inserted.
//
// It does not open transactions. Stores hand it repositories bound to their
// unit of work so that a failed replace leaves the previous set in place.
type RoleSynchronizer struct {
	Roles repository.RoleRepository
	Links repository.UserRoleRepository
}

func NewRoleSynchronizer(roles repository.RoleRepository, links repository.UserRoleRepository) *RoleSynchronizer {
	return &RoleSynchronizer{Roles: roles, Links: links}
}

// Replace rewrites the association for userID to exactly roles. Names are
// resolved up front; an unknown name fails with *errs.ConfigurationError
// before anything is deleted. An empty or nil set leaves the user with no
// roles.
func (s *RoleSynchronizer) Replace(ctx context.Context, userID string, roles []string) error {
	names := entity.NormalizeRoles(roles)
	resolved := make([]*entity.Role, 0, len(names))
	for _, name := range names {
		role, err := s.Roles.FindByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			return errs.RoleNotConfigured(name)
		}
		if err != nil {
			return fmt.Errorf("find role %s: %w", name, err)
		}
		resolved = append(resolved, role)
	}

	if err := s.Links.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}
	for _, role := range resolved {
		link := entity.UserRole{ID: uuid.NewString(), UserID: userID, RoleID: role.ID}
		if err := s.Links.Insert(ctx, link); err != nil {
			return fmt.Errorf("link role %s: %w", role.Name, err)
		}
	}
	return nil
}

// Load returns the sorted role names linked to userID. It never returns nil:
// a user without links gets an empty set. Links pointing at a role that no
// longer exists are skipped.
func (s *RoleSynchronizer) Load(ctx context.Context, userID string) ([]string, error) {
	links, err := s.Links.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user roles: %w", err)
	}
	names := make([]string, 0, len(links))
	for _, link := range links {
		role, err := s.Roles.FindByID(ctx, link.RoleID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find role %s: %w", link.RoleID, err)
		}
		names = append(names, role.Name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}
