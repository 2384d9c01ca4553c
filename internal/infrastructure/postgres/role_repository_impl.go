package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/repository"
)

type RoleRepository struct {
	db DBTX
}

func NewRoleRepository(db DBTX) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.findOne(ctx, `SELECT id, name FROM roles WHERE name = $1`, name)
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*entity.Role, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, `SELECT id, name FROM roles WHERE id = $1`, id)
}

func (r *RoleRepository) findOne(ctx context.Context, query string, arg any) (*entity.Role, error) {
	role := &entity.Role{}
	if err := r.db.QueryRow(ctx, query, arg).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) FindAll(ctx context.Context) iter.Seq2[*entity.Role, error] {
	return func(yield func(*entity.Role, error) bool) {
		rows, err := r.db.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
		if err != nil {
			yield(nil, err)
			return
		}
		roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Role, error) {
			role := &entity.Role{}
			return role, row.Scan(&role.ID, &role.Name)
		})
		if err != nil {
			yield(nil, err)
			return
		}
		for _, role := range roles {
			if !yield(role, nil) {
				return
			}
		}
	}
}

func (r *RoleRepository) Save(ctx context.Context, role *entity.Role) (*entity.Role, error) {
	saved := *role
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO roles (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
	`, saved.ID, saved.Name)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, fmt.Errorf("role %s already exists", saved.Name)
		}
		return nil, fmt.Errorf("save role: %w", err)
	}
	return &saved, nil
}

func (r *RoleRepository) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
