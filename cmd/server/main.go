package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenghermawan/clandestineproject/internal/audit"
	auditmemory "github.com/agenghermawan/clandestineproject/internal/audit/store/memory"
	auditpostgres "github.com/agenghermawan/clandestineproject/internal/audit/store/postgres"
	"github.com/agenghermawan/clandestineproject/internal/backend"
	backendmetrics "github.com/agenghermawan/clandestineproject/internal/backend/metrics"
	"github.com/agenghermawan/clandestineproject/internal/contact"
	"github.com/agenghermawan/clandestineproject/internal/contact/sender"
	"github.com/agenghermawan/clandestineproject/internal/platform/config"
	"github.com/agenghermawan/clandestineproject/internal/platform/httpserver"
	"github.com/agenghermawan/clandestineproject/internal/platform/logger"
	"github.com/agenghermawan/clandestineproject/internal/platform/metrics"
	"github.com/agenghermawan/clandestineproject/internal/platform/postgres"
	"github.com/agenghermawan/clandestineproject/internal/platform/redis"
	rlmetrics "github.com/agenghermawan/clandestineproject/internal/ratelimit/metrics"
	ratelimit "github.com/agenghermawan/clandestineproject/internal/ratelimit/middleware"
	rlmodels "github.com/agenghermawan/clandestineproject/internal/ratelimit/models"
	"github.com/agenghermawan/clandestineproject/internal/ratelimit/store/bucket"
	"github.com/agenghermawan/clandestineproject/internal/stats"
	statsmetrics "github.com/agenghermawan/clandestineproject/internal/stats/metrics"
	httptransport "github.com/agenghermawan/clandestineproject/internal/transport/http"
	"github.com/agenghermawan/clandestineproject/pkg/platform/circuit"
	"github.com/agenghermawan/clandestineproject/pkg/platform/middleware/metadata"
)

const (
	auditQueueSize     = 256
	auditMemoryEntries = 1000
	bucketSweepEvery   = 5 * time.Minute
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server)

	if err := run(cfg, log); err != nil {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trusted, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	checks := map[string]httptransport.HealthCheck{}
	g, gctx := errgroup.WithContext(ctx)

	limitStore, closeRedis, err := buildRateLimitStore(ctx, cfg.Redis, checks)
	if err != nil {
		return err
	}
	defer closeRedis()
	if mem, ok := limitStore.(*bucket.InMemoryBucketStore); ok {
		g.Go(func() error { return sweepBuckets(gctx, mem) })
	}

	auditStore, closeDB, err := buildAuditStore(ctx, cfg.Postgres, checks)
	if err != nil {
		return err
	}
	defer closeDB()
	publisher := audit.NewPublisher(auditStore, log, audit.WithAsync(auditQueueSize))
	// The audit worker stops only after the HTTP server has drained.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	if w := publisher.Worker(); w != nil {
		g.Go(func() error { return w.Run(auditCtx) })
	}

	mailer, closeMailer, err := buildContactSender(cfg, log)
	if err != nil {
		return err
	}
	defer closeMailer()

	breaker := circuit.New("backend",
		circuit.WithFailureThreshold(cfg.Backend.FailureThreshold),
		circuit.WithSuccessThreshold(cfg.Backend.SuccessThreshold),
		circuit.WithCooldown(cfg.Backend.Cooldown),
	)
	client := backend.New(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithBreaker(breaker),
		backend.WithMetrics(backendmetrics.New()),
		backend.WithLogger(log),
	)

	tracker := stats.NewTracker(time.Now(), stats.WithObserver(statsmetrics.New()))
	g.Go(func() error { return tracker.Run(gctx, cfg.Stats.GrowthInterval) })

	limiter := ratelimit.New(limitStore, log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithMetrics(rlmetrics.New()),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		CookieName:     cfg.Server.CookieName,
		TrustedProxies: trusted,

		Backend:    client,
		Auditor:    publisher,
		Contact:    contact.NewService(mailer, cfg.Contact.Recipient, log),
		Stats:      tracker,
		Limiter:    limiter,
		ContactRule: rlmodels.Rule{
			Name:   "contact",
			Limit:  cfg.RateLimit.ContactPerHour,
			Window: time.Hour,
		},
		SearchRule: rlmodels.Rule{
			Name:   "search",
			Limit:  cfg.RateLimit.SearchPerMinute,
			Window: time.Minute,
		},
		Metrics:      metrics.New(),
		HealthChecks: checks,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting clandestine gateway",
		"backend", cfg.Backend.BaseURL,
		"contact_transport", cfg.Contact.Transport,
	)
	g.Go(func() error {
		defer stopAudit()
		return httpserver.ListenAndServe(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})

	return g.Wait()
}

func buildRateLimitStore(ctx context.Context, cfg config.RedisConfig, checks map[string]httptransport.HealthCheck) (ratelimit.Store, func(), error) {
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		return bucket.NewInMemoryBucketStore(), func() {}, nil
	}
	checks["redis"] = rdb.Health
	return bucket.NewRedis(rdb.Client), func() { _ = rdb.Close() }, nil
}

func buildAuditStore(ctx context.Context, cfg config.PostgresConfig, checks map[string]httptransport.HealthCheck) (audit.Store, func(), error) {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return auditmemory.NewInMemoryStore(auditMemoryEntries), func() {}, nil
	}
	store := auditpostgres.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	checks["postgres"] = db.PingContext
	return store, func() { _ = db.Close() }, nil
}

func buildContactSender(cfg config.Config, log *slog.Logger) (contact.Sender, func(), error) {
	switch cfg.Contact.Transport {
	case "smtp":
		if cfg.Contact.SMTPUsername == "" || cfg.Contact.SMTPPassword == "" {
			return nil, nil, errors.New("smtp contact transport needs SMTP_USERNAME and SMTP_PASSWORD")
		}
		return sender.NewSMTP(cfg.Contact.SMTPHost, cfg.Contact.SMTPPort, cfg.Contact.SMTPUsername, cfg.Contact.SMTPPassword), func() {}, nil
	case "kafka":
		client, err := sender.NewKafkaClient(cfg.Kafka.Brokers, cfg.Kafka.ContactTopic)
		if err != nil {
			return nil, nil, err
		}
		return sender.NewKafka(client, cfg.Kafka.ContactTopic), client.Close, nil
	case "log", "":
		return sender.NewLog(log), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown contact transport %q", cfg.Contact.Transport)
	}
}

func sweepBuckets(ctx context.Context, store *bucket.InMemoryBucketStore) error {
	ticker := time.NewTicker(bucketSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			store.Sweep()
		}
	}
}
