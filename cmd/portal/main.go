package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/api/router"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/app/bootstrap"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/auth"
	appconfig "github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/config"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/http/handlers"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/observability/metrics"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/session"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/upstream"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

func main() {
	// Load .env if present (local development)
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting healthcare portal",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
	)

	if cfg.SessionSecret == "" {
		logger.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	portalMetrics := metrics.NewPortalMetrics(registry)

	store := bootstrap.BuildSessionStore(context.Background(), cfg, logger)

	audit, auditDB, err := bootstrap.BuildAuditService(cfg, logger)
	if err != nil {
		logger.Error("failed to open audit database", "error", err)
		os.Exit(1)
	}
	if auditDB != nil {
		defer auditDB.Close()
	}

	// The upstream client and the session manager reference each other: the
	// transport reads tokens from the manager, the manager validates through
	// the client.
	transport := &upstream.AuthTransport{}
	api := upstream.NewClient(cfg.APIBaseURL, logger,
		upstream.WithTimeout(cfg.APITimeout),
		upstream.WithTransport(transport),
	)

	bus := session.NewInvalidationBus()
	manager := session.NewManager(store, api, bus, logger, session.WithStateTTL(cfg.SessionTTL))
	transport.Tokens = manager
	transport.Invalidator = manager

	go func() {
		for ev := range bus.Subscribe() {
			portalMetrics.ObserveInvalidation()
			if audit != nil {
				_ = audit.LogSessionInvalidated(context.Background(), ev.SessionID, ev.Reason)
			}
		}
	}()

	cookies := auth.NewCookieManager(cfg.SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.Env == "production")

	proxy := handlers.NewProxy(api, logger, portalMetrics)
	routerCfg := &router.Config{
		Logger:             logger,
		SessionManager:     manager,
		Cookies:            cookies,
		AuthHandler:        handlers.NewAuthHandler(manager, api, cookies, audit, portalMetrics, logger),
		Dashboard:          handlers.NewDashboardHandler(proxy),
		Appointments:       handlers.NewAppointmentsHandler(proxy),
		Records:            handlers.NewRecordsHandler(proxy),
		Messages:           handlers.NewMessagesHandler(proxy),
		Admin:              handlers.NewAdminHandler(proxy),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
