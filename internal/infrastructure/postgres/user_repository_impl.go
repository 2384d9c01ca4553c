package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	"github.com/oksasatya/user-service/internal/domain/repository"
	"github.com/oksasatya/user-service/internal/domain/service"
)

const userColumns = `id, username, name, email, password_hash, phone, active, created_at, updated_at`

// findAllPageSize bounds how many users FindAll holds in memory at once.
const findAllPageSize = 100

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// roles returns a synchronizer bound to db, which is either the pool or a tx.
func roles(db DBTX) *service.RoleSynchronizer {
	return service.NewRoleSynchronizer(NewRoleRepository(db), NewUserRoleRepository(db))
}

// Save upserts the user row and rewrites its role links in one transaction.
// Username is never updated once the row exists.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	row := u.Clone()
	if row.ID == "" {
		row.ID = uuid.NewString()
	} else if !validID(row.ID) {
		return nil, &errs.InvalidArgumentError{Field: "id", Reason: "must be a UUID"}
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				password_hash = EXCLUDED.password_hash,
				phone = EXCLUDED.phone,
				active = EXCLUDED.active,
				updated_at = EXCLUDED.updated_at
		`, row.ID, row.Username, row.Name, row.Email, row.PasswordHash, row.Phone, row.Active, row.CreatedAt, row.UpdatedAt)
		if err != nil {
			return userWriteError(err, row)
		}
		return roles(tx).Replace(ctx, row.ID, row.Roles)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, row.ID)
}

func userWriteError(err error, u entity.User) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return fmt.Errorf("save user: %w", err)
	}
	switch constraint {
	case "users_username_key":
		return &errs.ConflictError{Field: "username", Value: u.Username}
	case "users_email_key":
		return &errs.ConflictError{Field: "email", Value: u.Email}
	default:
		return &errs.ConflictError{Field: constraint}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Phone,
		&u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if u.Roles, err = roles(r.db).Load(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, `id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, `username = $1`, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `email = $1`, email)
}

// FindAll pages through users by id. Each page is fully read before its
// roles are loaded, so no connection is held across a yield.
func (r *UserRepository) FindAll(ctx context.Context) iter.Seq2[*entity.User, error] {
	return func(yield func(*entity.User, error) bool) {
		after := uuid.Nil.String()
		for {
			page, err := r.page(ctx, after)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, u := range page {
				if u.Roles, err = roles(r.db).Load(ctx, u.ID); err != nil {
					yield(nil, err)
					return
				}
				if !yield(u, nil) {
					return
				}
			}
			if len(page) < findAllPageSize {
				return
			}
			after = page[len(page)-1].ID
		}
	}
}

func (r *UserRepository) page(ctx context.Context, after string) ([]*entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, after, findAllPageSize)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.User, error) {
		return scanUser(row)
	})
}

func (r *UserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// DeleteByID removes the user's role links and then the user row.
func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := NewUserRoleRepository(tx).DeleteByUserID(ctx, id); err != nil {
			return err
		}
		res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

var _ repository.UserRepository = (*UserRepository)(nil)
