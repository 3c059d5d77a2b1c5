package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/config"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/session"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	cfg := &appconfig.Config{}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), false); client != nil {
		t.Fatal("expected nil client when no redis address is configured")
	}
}

func TestBuildRedisClientVerifyFailure(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); client != nil {
		t.Fatal("expected nil client when ping fails")
	}
}

func TestBuildSessionStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr(), SessionTTL: time.Hour}

	store := BuildSessionStore(context.Background(), cfg, logging.New("error"))
	if _, ok := store.(*session.RedisStore); !ok {
		t.Fatalf("expected *session.RedisStore, got %T", store)
	}
}

func TestBuildSessionStoreFallback(t *testing.T) {
	store := BuildSessionStore(context.Background(), &appconfig.Config{}, logging.New("error"))
	if _, ok := store.(*session.InMemoryStore); !ok {
		t.Fatalf("expected *session.InMemoryStore, got %T", store)
	}
}

func TestBuildAuditServiceDisabled(t *testing.T) {
	svc, db, err := BuildAuditService(&appconfig.Config{}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc != nil || db != nil {
		t.Fatal("expected audit trail disabled without DATABASE_URL")
	}
}
