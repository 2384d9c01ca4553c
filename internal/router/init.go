package router

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/user-service/internal/application"
	"github.com/oksasatya/user-service/internal/container"
	"github.com/oksasatya/user-service/internal/infrastructure/messaging"
	"github.com/oksasatya/user-service/internal/infrastructure/search"
	handlers "github.com/oksasatya/user-service/internal/interface/http"
	"github.com/oksasatya/user-service/internal/interface/middleware"
	"github.com/oksasatya/user-service/internal/router/modules"
)

// Services are the orchestrators built from the container.
type Services struct {
	Users *application.UserService
	Auth  *application.AuthService
}

// BuildServices wires both orchestrators from the container singletons.
// Optional collaborators are attached only when configured.
func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	stores := container.GetStores()
	hasher := container.GetHasher()

	users := application.NewUserService(stores.Users, stores.Roles, hasher, logger, cfg.DefaultRole)
	users.PhoneRegion = cfg.PhoneRegion

	auth := application.NewAuthService(stores.Users, stores.Roles, hasher, container.GetJWT(), logger, cfg.DefaultRole)
	auth.PhoneRegion = cfg.PhoneRegion

	if pub := container.GetRabbitPub(); pub != nil {
		events := messaging.NewEventPublisher(pub)
		users.Events = events
		auth.Events = events
	}
	if es := container.GetES(); es != nil {
		users.Search = search.NewUserIndex(es, cfg.ESUsersIndex)
	}
	if m := container.GetMetrics(); m != nil {
		auth.Metrics = m
	}
	return Services{Users: users, Auth: auth}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := BuildServices()
	limiter := middleware.NewRateLimiter(container.GetRedis(), cfg.AppName+":", cfg.RateLimitEnabled)
	auth := middleware.Auth(container.GetJWT(), container.GetStores().Users)

	ops := modules.NewOpsModule(limiter, healthChecks())
	if m := container.GetMetrics(); m != nil && cfg.MetricsEnabled {
		r.Use(middleware.Metrics(m))
		ops.Metrics = promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
	}

	r.Add(ops)
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, logger), limiter))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, logger), auth, limiter, cfg.AdminRole))
}

func healthChecks() map[string]modules.Check {
	checks := map[string]modules.Check{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
