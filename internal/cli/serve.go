package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/echohealth/echohealth/internal/analyzer"
	"github.com/echohealth/echohealth/internal/config"
	"github.com/echohealth/echohealth/internal/journal"
	"github.com/echohealth/echohealth/internal/profile"
	"github.com/echohealth/echohealth/internal/server"
	"github.com/echohealth/echohealth/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the screening API for a browser front end",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		exitErr("config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sessions live in Redis when configured so they expire on their own;
	// otherwise the embedded database holds them.
	var sessions store.SessionProvider = s
	if cfg.RedisAddr != "" {
		rs := store.NewRedisSessions(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.SessionTTL)
		if err := rs.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, using embedded session store", zap.Error(err))
		} else {
			sessions = rs
		}
	}

	srv := server.New(logger,
		sessions,
		analyzer.NewHeuristic(time.Second),
		journal.New(s.Durable(), s),
		profile.NewManager(s.Durable(), s),
	)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		exitErr("serve", err)
	}
	logger.Info("shutdown complete")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
