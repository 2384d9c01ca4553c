package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/repository"
)

type UserRoleRepository struct {
	db DBTX
}

func NewUserRoleRepository(db DBTX) *UserRoleRepository {
	return &UserRoleRepository{db: db}
}

func (r *UserRoleRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}
	return nil
}

func (r *UserRoleRepository) Insert(ctx context.Context, link entity.UserRole) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (id, user_id, role_id)
		VALUES ($1, $2, $3)
	`, link.ID, link.UserID, link.RoleID)
	if err != nil {
		return fmt.Errorf("insert user role: %w", err)
	}
	return nil
}

func (r *UserRoleRepository) FindByUserID(ctx context.Context, userID string) ([]entity.UserRole, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, role_id
		FROM user_roles
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.UserRole, error) {
		var link entity.UserRole
		err := row.Scan(&link.ID, &link.UserID, &link.RoleID)
		return link, err
	})
}

var _ repository.UserRoleRepository = (*UserRoleRepository)(nil)
