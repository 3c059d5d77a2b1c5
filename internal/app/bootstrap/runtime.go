package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/compliance"
	appconfig "github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/config"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/session"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildSessionStore prefers the shared Redis store so every portal instance
// sees the same sessions; without Redis it falls back to process-local memory.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if client := BuildRedisClient(ctx, cfg, logger, true); client != nil {
		logger.Info("session store using redis", "addr", cfg.RedisAddr)
		return session.NewRedisStore(client, cfg.SessionTTL)
	}
	logger.Warn("session store using in-process memory; sessions will not survive restarts")
	return session.NewInMemoryStore()
}

// BuildAuditService opens the audit database when configured. A missing
// DATABASE_URL disables the audit trail rather than failing startup.
func BuildAuditService(cfg *appconfig.Config, logger *logging.Logger) (*compliance.AuditService, *sql.DB, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("audit trail enabled")
	return compliance.NewAuditService(db), db, nil
}
