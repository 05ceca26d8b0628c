package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/limbo/internal/auth"
	"github.com/mmynk/limbo/internal/config"
	"github.com/mmynk/limbo/internal/engine"
	"github.com/mmynk/limbo/internal/expiry"
	"github.com/mmynk/limbo/internal/metrics"
	"github.com/mmynk/limbo/internal/middleware"
	"github.com/mmynk/limbo/internal/reconcile"
	"github.com/mmynk/limbo/internal/service"
	"github.com/mmynk/limbo/internal/storage/sqlite"
	"github.com/mmynk/limbo/pkg/api/apiconnect"
	"github.com/mmynk/limbo/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	cfg, err := config.Load(getEnv("LIMBO_CONFIG", ""))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.Logging.Level))

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	m := metrics.New()
	eng := engine.New(store,
		engine.WithMetrics(m),
		engine.WithDefaultExpiryWeeks(cfg.Engine.DefaultExpiryWeeks),
	)
	reconciler := reconcile.New(store, reconcile.WithMetrics(m))
	sweeper := expiry.NewSweeper(store, expiry.WithMetrics(m))

	mux := http.NewServeMux()
	logged := connect.WithInterceptors(middleware.LoggingInterceptor())

	// Register Connect services
	mux.Handle(apiconnect.NewLedgerServiceHandler(service.NewLedgerService(eng), logged))

	if cfg.AdminEnabled() {
		jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.GetTokenTTL())
		authenticator := auth.NewPasswordAuthenticator(auth.StaticOperators{
			cfg.Auth.Operator: cfg.Auth.OperatorPasswordHash,
		})
		mux.Handle(apiconnect.NewAuthServiceHandler(
			service.NewAuthService(authenticator, jwtManager, slog.Default()), logged))
		mux.Handle(apiconnect.NewAdminServiceHandler(
			service.NewAdminService(eng, reconciler, sweeper),
			connect.WithInterceptors(middleware.RequireOperator(jwtManager), middleware.LoggingInterceptor()),
		))
		slog.Info("Admin service enabled", "operator", cfg.Auth.Operator)
	} else {
		slog.Warn("Admin service disabled: set LIMBO_JWT_SECRET and LIMBO_OPERATOR_PASSWORD_HASH to enable it")
	}

	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler := &expiry.Scheduler{
		Sweeper:       sweeper,
		Statistics:    eng,
		SweepInterval: cfg.GetSweepInterval(),
		StatsInterval: cfg.GetStatsInterval(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
