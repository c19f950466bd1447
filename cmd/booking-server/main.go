package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/config"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/httpx"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/metrics"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/service/bookings"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/store/postgres"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/transport/rest"
)

func main() {
	// Local development convenience; in production the environment is the
	// source of truth.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "booking-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "booking-server"),
	)
	slog.SetDefault(log)

	log.Info("starting", slog.String("http_addr", cfg.HTTPAddr), slog.String("log_level", cfg.LogLevel))

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	repo := postgres.NewAppointmentRepo(db)
	svc := bookings.NewService(repo, log)

	mux := http.NewServeMux()
	rest.NewAppointmentsHandler(svc, log).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	limiter := httpx.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	// The duration middleware sits innermost so it shares the request the
	// mux annotates with the matched route pattern; the timeout handler
	// clones the request and would hide the pattern from anything outside it.
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(log),
		httpx.WithCORS(cfg.CORSOrigins),
		limiter.Middleware(),
		httpx.WithBodyLimit(cfg.BodyLimitBytes),
		httpx.WithTimeout(cfg.RequestTimeout),
		metrics.WithRequestDuration,
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, srv, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func shutdown(log *slog.Logger, srv *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = srv.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
