package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/repository"
)

type linkTable struct{ s *Store }

func (t linkTable) DeleteByUserID(_ context.Context, userID string) error {
	for id, link := range t.s.links {
		if link.UserID == userID {
			delete(t.s.links, id)
		}
	}
	return nil
}

func (t linkTable) Insert(_ context.Context, link entity.UserRole) error {
	t.s.links[link.ID] = link
	return nil
}

func (t linkTable) FindByUserID(_ context.Context, userID string) ([]entity.UserRole, error) {
	var out []entity.UserRole
	for _, link := range t.s.links {
		if link.UserID == userID {
			out = append(out, link)
		}
	}
	slices.SortFunc(out, func(a, b entity.UserRole) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// UserRoleRepository is the locked, public association store.
type UserRoleRepository struct{ s *Store }

func (r *UserRoleRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return linkTable{r.s}.DeleteByUserID(ctx, userID)
}

func (r *UserRoleRepository) Insert(ctx context.Context, link entity.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return linkTable{r.s}.Insert(ctx, link)
}

func (r *UserRoleRepository) FindByUserID(ctx context.Context, userID string) ([]entity.UserRole, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return linkTable{r.s}.FindByUserID(ctx, userID)
}

var _ repository.UserRoleRepository = (*UserRoleRepository)(nil)
