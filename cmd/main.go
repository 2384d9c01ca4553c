package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/user-service/config"
	"github.com/oksasatya/user-service/internal/application"
	"github.com/oksasatya/user-service/internal/container"
	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/infrastructure/memory"
	"github.com/oksasatya/user-service/internal/infrastructure/metrics"
	pginfra "github.com/oksasatya/user-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-service/internal/infrastructure/search"
	"github.com/oksasatya/user-service/internal/interface/middleware"
	"github.com/oksasatya/user-service/internal/router"
	"github.com/oksasatya/user-service/pkg/helpers"
	"github.com/oksasatya/user-service/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open stores")
	}
	defer closeStores()

	// Redis backs the rate limiter only; the limiter fails open without it
	if cfg.RateLimitEnabled {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unreachable; rate limiting fails open")
		}
		container.SetRedis(rdb)
	}

	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; user events disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch client init failed; search disabled")
		} else {
			if err := search.NewUserIndex(es, cfg.ESUsersIndex).EnsureIndex(ctx); err != nil {
				logger.WithError(err).Warn("ensure users index failed")
			}
			container.SetES(es)
		}
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetStores(stores)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))
	container.SetHasher(helpers.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers))
	if cfg.MetricsEnabled {
		container.SetMetrics(metrics.New("user_service"))
	}

	// The memory store has no cmd/seed run, so seed its admin in-process
	if cfg.StoreDriver == config.StoreMemory && cfg.SeedAdminPassword != "" {
		admin := entity.Registration{
			Username: cfg.SeedAdminUsername,
			Name:     "Administrator",
			Email:    cfg.SeedAdminEmail,
			Password: cfg.SeedAdminPassword,
		}
		if _, err := router.BuildServices().Users.SeedAdmin(ctx, admin, []string{cfg.DefaultRole, cfg.AdminRole}); err != nil {
			logger.WithError(err).Fatal("failed to seed admin")
		}
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// openStores returns the repositories selected by STORE_DRIVER. The
// memory driver starts empty, so its default and admin roles are created
// here; postgres roles come from cmd/seed.
func openStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (container.Stores, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		store := memory.NewStore()
		if _, err := application.EnsureRoles(ctx, store.Roles(), cfg.DefaultRole, cfg.AdminRole); err != nil {
			return container.Stores{}, nil, err
		}
		logger.Warn("using in-memory store; data is lost on exit")
		return container.Stores{Users: store.Users(), Roles: store.Roles()}, func() {}, nil
	}

	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{
		DSN:             cfg.PostgresDSN(),
		AppName:         cfg.AppName,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		return container.Stores{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		return container.Stores{}, nil, fmt.Errorf("migrate: %w", err)
	}
	container.SetPGPool(pool)
	return container.Stores{
		Users: pginfra.NewUserRepository(pool),
		Roles: pginfra.NewRoleRepository(pool),
	}, pool.Close, nil
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
