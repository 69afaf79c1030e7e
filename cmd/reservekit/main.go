package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/reservekit/pkg/config"
	"github.com/dmitrymomot/reservekit/pkg/engine"
	"github.com/dmitrymomot/reservekit/pkg/httpserver"
	"github.com/dmitrymomot/reservekit/pkg/logger"
	"github.com/dmitrymomot/reservekit/pkg/mailcheck"
	"github.com/dmitrymomot/reservekit/pkg/mailer"
	"github.com/dmitrymomot/reservekit/pkg/notifier"
	"github.com/dmitrymomot/reservekit/pkg/outbox"
	"github.com/dmitrymomot/reservekit/pkg/pg"
	"github.com/dmitrymomot/reservekit/pkg/redis"
	"github.com/dmitrymomot/reservekit/pkg/reservation"
	"github.com/dmitrymomot/reservekit/pkg/tracking"
)

type appConfig struct {
	Env        string `env:"APP_ENV" envDefault:"development"`
	DevMailDir string `env:"DEV_MAIL_DIR" envDefault:"./var/mail"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("service stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return err
	}
	var outboxCfg outbox.Config
	if err := config.Load(&outboxCfg); err != nil {
		return err
	}

	log := logger.New(logger.WithEnvironment(appCfg.Env, "reservekit"))
	logger.SetAsDefault(log)

	var healthchecks []func(context.Context) error

	// Notification storage: Postgres when configured, otherwise in-memory
	// for local development.
	var storage notifier.Storage = notifier.NewMemoryStorage()
	if os.Getenv("PG_CONN_URL") != "" {
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		pgStorage := notifier.NewPostgresStorage(pool)
		if err := pgStorage.ApplySchema(ctx); err != nil {
			return err
		}
		storage = pgStorage
		healthchecks = append(healthchecks, pg.Healthcheck(pool))
		log.Info("notification storage: postgres")
	} else {
		log.Warn("notification storage: in-memory, notifications will not survive restarts")
	}

	// Idempotency guard: Redis when configured, so redelivery stays
	// deduplicated across instances and restarts.
	var guard outbox.IdempotencyGuard = outbox.NewMemoryGuard(outboxCfg.GuardTTL)
	if os.Getenv("REDIS_URL") != "" {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		guard = outbox.NewRedisGuard(client, outboxCfg.GuardTTL)
		healthchecks = append(healthchecks, redis.Healthcheck(client))
		log.Info("idempotency guard: redis")
	}

	var mailCfg mailer.Config
	if err := config.Load(&mailCfg); err != nil {
		return err
	}
	var identity mailer.Identity
	if err := config.Load(&identity); err != nil {
		return err
	}

	var sender mailer.EmailSender
	if mailCfg.PostmarkServerToken != "" {
		var err error
		sender, err = mailer.NewPostmarkClient(mailCfg)
		if err != nil {
			return err
		}
		log.Info("email transport: postmark")
	} else {
		sender = mailer.NewDevSender(appCfg.DevMailDir)
		log.Warn("email transport: dev sender", slog.String("dir", appCfg.DevMailDir))
	}

	dispatcher, err := mailer.NewDispatcher(sender, mailer.NewRegistry(identity))
	if err != nil {
		return err
	}

	store := reservation.NewMemoryStore()
	manager := notifier.NewManager(storage, notifier.WithManagerLogger(log))

	events := outbox.NewMemoryStorage()
	defer events.Close()

	enqueuer, err := outbox.NewEnqueuer(events, outbox.WithMaxRetries(outboxCfg.MaxRetries))
	if err != nil {
		return err
	}

	var engineCfg engine.Config
	if err := config.Load(&engineCfg); err != nil {
		return err
	}
	eng, err := engine.New(store, enqueuer, guard, mailcheck.New(), dispatcher, manager,
		engine.WithBaseURL(engineCfg.BaseURL),
		engine.WithEngineLogger(log),
	)
	if err != nil {
		return err
	}

	worker, err := outbox.NewWorker(events, eng.Handle,
		outbox.WithPollInterval(outboxCfg.PollInterval),
		outbox.WithLockTimeout(outboxCfg.LockTimeout),
		outbox.WithMaxConcurrent(outboxCfg.MaxConcurrent),
		outbox.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}

	trackingSvc := tracking.NewService(storage, store, tracking.WithServiceLogger(log))

	r := chi.NewRouter()
	tracking.NewHandler(trackingSvc).Routes(r)
	notifier.NewHandler(manager).Routes(r)
	r.Get("/health", httpserver.HealthCheckHandler(log, healthchecks...))

	var srvCfg httpserver.Config
	if err := config.Load(&srvCfg); err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(srvCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("http server listening", slog.String("addr", srvCfg.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("http server stopped")
		}),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(worker.Run(ctx))
	eg.Go(func() error { return srv.Run(ctx, r) })
	return eg.Wait()
}
