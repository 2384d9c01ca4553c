package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	repo "github.com/oksasatya/user-service/internal/domain/repository"
)

// EnsureRoles creates every named role that is not stored yet and returns
// all of them in argument order.
func EnsureRoles(ctx context.Context, roles repo.RoleRepository, names ...string) ([]*entity.Role, error) {
	out := make([]*entity.Role, 0, len(names))
	for _, name := range names {
		role, err := roles.FindByName(ctx, name)
		if errors.Is(err, repo.ErrNotFound) {
			role, err = roles.Save(ctx, &entity.Role{Name: name})
		}
		if err != nil {
			return nil, fmt.Errorf("ensure role %s: %w", name, err)
		}
		out = append(out, role)
	}
	return out, nil
}

// SeedAdmin creates the account described by reg unless its username is
// taken, then sets its role set to exactly roles.
func (s *UserService) SeedAdmin(ctx context.Context, reg entity.Registration, roles []string) (*entity.User, error) {
	u, err := s.GetUserByUsername(ctx, reg.Username)
	if errs.IsNotFound(err) {
		u, err = s.CreateUser(ctx, reg)
	}
	if err != nil {
		return nil, err
	}
	return s.UpdateUser(ctx, entity.UserPatch{ID: u.ID, Roles: entity.NormalizeRoles(roles)})
}
