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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/config"
	"github.com/JonMunkholm/buyerleads/internal/core"
	"github.com/JonMunkholm/buyerleads/internal/events"
	"github.com/JonMunkholm/buyerleads/internal/logging"
	"github.com/JonMunkholm/buyerleads/internal/metrics"
	"github.com/JonMunkholm/buyerleads/internal/ratelimit"
	"github.com/JonMunkholm/buyerleads/internal/store"
	"github.com/JonMunkholm/buyerleads/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Values already in the environment win over .env.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := store.MigrateUp(cfg.Database.URL); err != nil {
			return err
		}
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, store.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	st := store.New(pool)

	checks := map[string]web.HealthCheck{"database": st.Ping}

	g, gctx := errgroup.WithContext(ctx)

	var opLimiter, ipLimiter ratelimit.Limiter
	if cfg.Redis.URL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			return err
		}
		defer closeRedis(client)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		opLimiter = ratelimit.NewRedisLimiter(client, cfg.Redis.KeyPrefix, cfg.Rate.Operations, cfg.Rate.Window)
		ipLimiter = ratelimit.NewRedisLimiter(client, cfg.Redis.KeyPrefix, cfg.Rate.RequestsPerMinute, time.Minute)
		slog.Info("rate limiting backed by redis")
	} else {
		ops := ratelimit.NewMemoryLimiter(cfg.Rate.Operations, cfg.Rate.Window)
		ips := ratelimit.NewMemoryLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		g.Go(func() error { ops.RunSweeper(gctx, cfg.Rate.SweepInterval); return nil })
		g.Go(func() error { ips.RunSweeper(gctx, cfg.Rate.SweepInterval); return nil })
		opLimiter, ipLimiter = ops, ips
	}

	var publisher interface {
		core.HistoryPublisher
		Close()
	} = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(ctx, events.KafkaOptions{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
			Timeout:  cfg.Kafka.Timeout,
		})
		if err != nil {
			return err
		}
		publisher = kp
		slog.Info("publishing history to kafka", "topic", cfg.Kafka.Topic)
	}
	defer publisher.Close()

	m := metrics.New()
	opts := []core.Option{
		core.WithPublisher(publisher),
		core.WithMetrics(m),
		core.WithImportLimiter(core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
		core.WithImportTimeout(cfg.Import.Timeout),
	}
	var limiter core.RateLimiter
	if cfg.Rate.Enabled {
		limiter = opLimiter
	}
	service := core.NewService(st, limiter, opts...)

	server := web.NewServer(web.Deps{
		Service:   service,
		Users:     st,
		Tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.SessionTTL),
		Metrics:   m,
		IPLimiter: ipLimiter,
		Checks:    checks,
	}, cfg)

	g.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func closeRedis(c *redis.Client) {
	if err := c.Close(); err != nil {
		slog.Warn("close redis client", "error", err)
	}
}
