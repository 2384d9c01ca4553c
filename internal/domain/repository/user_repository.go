package repository

import (
	"context"
	"errors"
	"iter"

	"github.com/oksasatya/user-service/internal/domain/entity"
)

// ErrNotFound is returned by stores when a record is absent.
var ErrNotFound = errors.New("record not found")

// UserRepository persists User aggregates together with their role set.
// Save assigns an ID on first persist and replaces the stored role
// association with exactly u.Roles. Stores enforce username and email
// uniqueness on write and report violations as *errs.ConflictError.
type UserRepository interface {
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context) iter.Seq2[*entity.User, error]
	ExistsByID(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
}
