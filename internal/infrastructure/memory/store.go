// Package memory is an in-process implementation of the repository ports.
// It backs the "memory" store driver and the service tests. A single
// RWMutex serialises writers, so a save (user row plus role replace) is
// atomic and uniqueness is enforced on write.
package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/service"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]entity.User
	roles map[string]entity.Role
	links map[string]entity.UserRole
}

func NewStore() *Store {
	return &Store{
		users: map[string]entity.User{},
		roles: map[string]entity.Role{},
		links: map[string]entity.UserRole{},
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Roles returns the role repository view of the store.
func (s *Store) Roles() *RoleRepository { return &RoleRepository{s: s} }

// Links returns the association view of the store.
func (s *Store) Links() *UserRoleRepository { return &UserRoleRepository{s: s} }

// synchronizer runs over the unlocked tables; callers hold s.mu.
func (s *Store) synchronizer() *service.RoleSynchronizer {
	return service.NewRoleSynchronizer(roleTable{s}, linkTable{s})
}

type snapshot struct {
	users map[string]entity.User
	links map[string]entity.UserRole
}

func (s *Store) snapshot() snapshot {
	return snapshot{users: maps.Clone(s.users), links: maps.Clone(s.links)}
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.links = snap.links
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
