package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-service/config"
	repo "github.com/oksasatya/user-service/internal/domain/repository"
	"github.com/oksasatya/user-service/internal/infrastructure/metrics"
	"github.com/oksasatya/user-service/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

// Stores is the selected persistence backend.
type Stores struct {
	Users repo.UserRepository
	Roles repo.RoleRepository
}

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	stores      Stores

	jwtManager *helpers.JWTManager
	hasher     *helpers.BcryptHasher

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
	collector *metrics.Collectors
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetStores(s Stores)           { stores = s }
func GetStores() Stores            { return stores }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetHasher(h *helpers.BcryptHasher)       { hasher = h }
func GetHasher() *helpers.BcryptHasher        { return hasher }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetMetrics(c *metrics.Collectors)        { collector = c }
func GetMetrics() *metrics.Collectors         { return collector }
