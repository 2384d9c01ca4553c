package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	"github.com/oksasatya/user-service/internal/domain/repository"
)

// openTestPool connects to USER_SERVICE_TEST_DSN and recreates the schema.
// The database it points at is wiped.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("USER_SERVICE_TEST_DSN")
	if dsn == "" {
		t.Skip("USER_SERVICE_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, PoolOptions{DSN: dsn, AppName: "user-service-test", MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	for _, name := range []string{"000001_create_identity_tables.down.sql", "000001_create_identity_tables.up.sql"} {
		ddl, err := os.ReadFile(filepath.Join("..", "..", "..", "db", "migrations", name))
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(ddl))
		require.NoError(t, err, name)
	}

	for _, name := range []string{entity.RoleUser, entity.RoleAdmin} {
		_, err := NewRoleRepository(pool).Save(ctx, &entity.Role{Name: name})
		require.NoError(t, err)
	}
	return pool
}

func pgUser(username, email string, roles ...string) *entity.User {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entity.User{Username: username, Email: email, PasswordHash: "h", Active: true, CreatedAt: now, UpdatedAt: now, Roles: roles}
}

func TestPostgresUserLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := openTestPool(t)
	users := NewUserRepository(pool)

	saved, err := users.Save(ctx, pgUser("ana", "ana@x.io", entity.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleUser}, saved.Roles)

	saved.Name = "Ana"
	saved.Roles = []string{entity.RoleAdmin, entity.RoleUser}
	saved.UpdatedAt = saved.UpdatedAt.Add(time.Hour)
	updated, err := users.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, []string{entity.RoleAdmin, entity.RoleUser}, updated.Roles)

	_, err = users.Save(ctx, pgUser("ana", "other@x.io"))
	var conflict *errs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)

	ok, err := users.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, users.DeleteByID(ctx, saved.ID))
	assert.ErrorIs(t, users.DeleteByID(ctx, saved.ID), repository.ErrNotFound)
	links, err := NewUserRoleRepository(pool).FindByUserID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestPostgresUnknownRoleRollsBack(t *testing.T) {
	ctx := context.Background()
	pool := openTestPool(t)
	users := NewUserRepository(pool)

	saved, err := users.Save(ctx, pgUser("ana", "ana@x.io", entity.RoleUser))
	require.NoError(t, err)

	saved.Name = "changed"
	saved.Roles = []string{"ROLE_GHOST"}
	_, err = users.Save(ctx, saved)
	var cfgErr *errs.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	again, err := users.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Name)
	assert.Equal(t, []string{entity.RoleUser}, again.Roles)
}

func TestPostgresFindAllPages(t *testing.T) {
	ctx := context.Background()
	pool := openTestPool(t)
	users := NewUserRepository(pool)

	const n = findAllPageSize + 5
	for i := range n {
		name := fmt.Sprintf("user%03d", i)
		_, err := users.Save(ctx, pgUser(name, name+"@x.io"))
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for u, err := range users.FindAll(ctx) {
		require.NoError(t, err)
		assert.NotNil(t, u.Roles)
		seen[u.ID] = true
	}
	assert.Len(t, seen, n)

	_, err := users.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
