package memory

import (
	"context"
	"errors"
	"iter"

	"github.com/google/uuid"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	"github.com/oksasatya/user-service/internal/domain/repository"
)

type UserRepository struct{ s *Store }

// Save upserts u and replaces its role association in one critical section.
// An existing user keeps its username. On any failure the previous state is
// restored.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := u.Clone()
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	// Username and creation time are fixed by the first save, as in the SQL upsert
	if stored, ok := r.s.users[row.ID]; ok {
		row.Username = stored.Username
		row.CreatedAt = stored.CreatedAt
	}
	if err := r.checkUnique(row); err != nil {
		return nil, err
	}

	snap := r.s.snapshot()
	roles := row.Roles
	row.Roles = nil
	r.s.users[row.ID] = row
	if err := r.s.synchronizer().Replace(ctx, row.ID, roles); err != nil {
		r.s.restore(snap)
		return nil, err
	}
	return r.load(ctx, row.ID)
}

func (r *UserRepository) checkUnique(row entity.User) error {
	for id, other := range r.s.users {
		if id == row.ID {
			continue
		}
		if other.Username == row.Username {
			return &errs.ConflictError{Field: "username", Value: row.Username}
		}
		if other.Email == row.Email {
			return &errs.ConflictError{Field: "email", Value: row.Email}
		}
	}
	return nil
}

// load attaches roles to a copy of the stored row; callers hold the lock.
func (r *UserRepository) load(ctx context.Context, id string) (*entity.User, error) {
	row, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := row.Clone()
	roles, err := r.s.synchronizer().Load(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.load(ctx, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findBy(ctx, func(u entity.User) bool { return u.Username == username })
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findBy(ctx, func(u entity.User) bool { return u.Email == email })
}

func (r *UserRepository) findBy(ctx context.Context, match func(entity.User) bool) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, u := range r.s.users {
		if match(u) {
			return r.load(ctx, id)
		}
	}
	return nil, repository.ErrNotFound
}

// FindAll walks the user ids present when iteration starts, in id order.
// Users deleted mid-iteration are skipped.
func (r *UserRepository) FindAll(ctx context.Context) iter.Seq2[*entity.User, error] {
	return func(yield func(*entity.User, error) bool) {
		r.s.mu.RLock()
		ids := sortedKeys(r.s.users)
		r.s.mu.RUnlock()

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			u, err := r.FindByID(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if !yield(u, err) || err != nil {
				return
			}
		}
	}
}

func (r *UserRepository) ExistsByID(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

// DeleteByID removes the user and its role links.
func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	if err := (linkTable{r.s}).DeleteByUserID(ctx, id); err != nil {
		return err
	}
	delete(r.s.users, id)
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
