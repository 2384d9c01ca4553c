package repository

import (
	"context"
	"iter"

	"github.com/oksasatya/user-service/internal/domain/entity"
)

// RoleRepository persists roles. Roles are seeded out of band and read-mostly.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*entity.Role, error)
	FindByID(ctx context.Context, id string) (*entity.Role, error)
	FindAll(ctx context.Context) iter.Seq2[*entity.Role, error]
	Save(ctx context.Context, r *entity.Role) (*entity.Role, error)
	DeleteByID(ctx context.Context, id string) error
}

// UserRoleRepository is the explicit join collection between users and roles.
type UserRoleRepository interface {
	DeleteByUserID(ctx context.Context, userID string) error
	Insert(ctx context.Context, link entity.UserRole) error
	FindByUserID(ctx context.Context, userID string) ([]entity.UserRole, error)
}
