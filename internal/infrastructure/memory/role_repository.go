package memory

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/repository"
)

// roleTable is the lock-free role table; callers hold the store lock.
type roleTable struct{ s *Store }

func (t roleTable) FindByName(_ context.Context, name string) (*entity.Role, error) {
	for _, r := range t.s.roles {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t roleTable) FindByID(_ context.Context, id string) (*entity.Role, error) {
	r, ok := t.s.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (t roleTable) FindAll(_ context.Context) iter.Seq2[*entity.Role, error] {
	return func(yield func(*entity.Role, error) bool) {
		for _, id := range sortedKeys(t.s.roles) {
			r := t.s.roles[id]
			if !yield(&r, nil) {
				return
			}
		}
	}
}

func (t roleTable) Save(_ context.Context, r *entity.Role) (*entity.Role, error) {
	saved := *r
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	for id, other := range t.s.roles {
		if id != saved.ID && other.Name == saved.Name {
			return nil, fmt.Errorf("role %s already exists", saved.Name)
		}
	}
	t.s.roles[saved.ID] = saved
	return &saved, nil
}

func (t roleTable) DeleteByID(_ context.Context, id string) error {
	if _, ok := t.s.roles[id]; !ok {
		return repository.ErrNotFound
	}
	for linkID, link := range t.s.links {
		if link.RoleID == id {
			delete(t.s.links, linkID)
		}
	}
	delete(t.s.roles, id)
	return nil
}

// RoleRepository is the locked, public role store.
type RoleRepository struct{ s *Store }

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return roleTable{r.s}.FindByName(ctx, name)
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return roleTable{r.s}.FindByID(ctx, id)
}

// FindAll iterates over a snapshot taken when iteration starts.
func (r *RoleRepository) FindAll(_ context.Context) iter.Seq2[*entity.Role, error] {
	return func(yield func(*entity.Role, error) bool) {
		r.s.mu.RLock()
		roles := make([]entity.Role, 0, len(r.s.roles))
		for _, id := range sortedKeys(r.s.roles) {
			roles = append(roles, r.s.roles[id])
		}
		r.s.mu.RUnlock()
		for i := range roles {
			if !yield(&roles[i], nil) {
				return
			}
		}
	}
}

func (r *RoleRepository) Save(ctx context.Context, role *entity.Role) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return roleTable{r.s}.Save(ctx, role)
}

func (r *RoleRepository) DeleteByID(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return roleTable{r.s}.DeleteByID(ctx, id)
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
var _ repository.RoleRepository = roleTable{}
