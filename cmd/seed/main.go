package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-service/config"
	"github.com/oksasatya/user-service/internal/application"
	"github.com/oksasatya/user-service/internal/domain/entity"
	pginfra "github.com/oksasatya/user-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-service/pkg/helpers"
)

// Seeds the default and admin roles and an administrator holding both.
// Safe to run repeatedly.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.SeedAdminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{DSN: cfg.PostgresDSN(), AppName: cfg.AppName + "-seed", MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	roles := pginfra.NewRoleRepository(pool)

	seeded, err := application.EnsureRoles(ctx, roles, cfg.DefaultRole, cfg.AdminRole)
	if err != nil {
		log.Fatalf("failed to ensure roles: %v", err)
	}
	for _, r := range seeded {
		logger.WithField("role_id", r.ID).WithField("role", r.Name).Info("role ensured")
	}

	svc := application.NewUserService(users, roles, helpers.NewBcryptHasher(cfg.BcryptCost, 1), logger, cfg.DefaultRole)
	svc.PhoneRegion = cfg.PhoneRegion
	admin, err := svc.SeedAdmin(ctx, entity.Registration{
		Username: cfg.SeedAdminUsername,
		Name:     "Administrator",
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	}, []string{cfg.DefaultRole, cfg.AdminRole})
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithField("user_id", admin.ID).WithField("roles", admin.Roles).Info("admin seeded")
}
