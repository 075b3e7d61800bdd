package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/subscribebox/internal/api"
	"github.com/ignite/subscribebox/internal/config"
	"github.com/ignite/subscribebox/internal/form"
	"github.com/ignite/subscribebox/internal/metrics"
	"github.com/ignite/subscribebox/internal/newsletter"
	"github.com/ignite/subscribebox/internal/pkg/distlock"
	"github.com/ignite/subscribebox/internal/pkg/logger"
	"github.com/ignite/subscribebox/internal/session"
	"github.com/ignite/subscribebox/internal/ui"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func serveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the widget over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// app is the wired widget service.
type app struct {
	handler  http.Handler
	sessions *session.Registry
	redis    *redis.Client
}

func (a *app) close() {
	a.sessions.Close()
	if a.redis != nil {
		a.redis.Close()
	}
}

// buildApp wires every component from cfg.
func buildApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	m, err := metrics.New(nil)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	client := newsletter.NewClient(cfg.Newsletter,
		newsletter.WithLogger(log),
		newsletter.WithRecorder(m),
	)

	sessions := session.NewRegistry(func(locale string) *form.Controller {
		return form.New(client, form.Options{
			Messages:                 ui.MessagesFor(locale),
			ResetDelay:               cfg.Form.ResetDelay(),
			ResetSubmittingOnFailure: cfg.Form.ResetSubmittingOnFailure,
			Logger:                   log,
		})
	}, cfg.Session.TTL())
	if err := m.TrackSessions(sessions.Len); err != nil {
		return nil, fmt.Errorf("register session gauge: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	renderer, err := ui.NewRenderer()
	if err != nil {
		return nil, err
	}

	h := api.NewHandlers(
		sessions,
		renderer,
		m,
		distlock.NewLocker(rdb, api.SubmitLockPrefix, cfg.Redis.LockTTL()),
		cfg.Form,
		cfg.Session,
		log,
	)
	hc := api.NewHealthChecker(rdb, client, sessions.Len)

	return &app{
		handler:  api.SetupRoutes(h, hc, m.Handler(), cfg.Server.AllowedOrigins),
		sessions: sessions,
		redis:    rdb,
	}, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Default()

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if a.redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis not reachable at startup", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go a.sessions.Run(sweepCtx, time.Minute)

	server := api.NewServer(cfg.Server, a.handler)
	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", addr, "endpoint", cfg.Newsletter.Endpoint)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	log.Info("server stopped")
	return nil
}
