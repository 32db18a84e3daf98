package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medinet/credgate/internal/bot"
	"github.com/medinet/credgate/internal/health"
	"github.com/medinet/credgate/internal/idempotency"
	"github.com/medinet/credgate/internal/jobs"
	jobhandlers "github.com/medinet/credgate/internal/jobs/handlers"
	"github.com/medinet/credgate/internal/lifecycle"
	"github.com/medinet/credgate/internal/middleware"
	"github.com/medinet/credgate/internal/notify"
	"github.com/medinet/credgate/internal/ratelimit"
	"github.com/medinet/credgate/internal/referral"
	"github.com/medinet/credgate/internal/repository"
	"github.com/medinet/credgate/internal/store"
	"github.com/medinet/credgate/pkg/config"
	"github.com/medinet/credgate/pkg/graceful"
	"github.com/medinet/credgate/pkg/logger"
	"github.com/medinet/credgate/pkg/redis"
)

const referralEventBuffer = 64

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		})
		if err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(logger.Options{
		Level:         cfg.Logger.Level,
		Format:        cfg.Logger.Format,
		File:          cfg.Logger.File,
		MaxSizeMB:     cfg.Logger.MaxSizeMB,
		MaxBackups:    cfg.Logger.MaxBackups,
		MaxAgeDays:    cfg.Logger.MaxAgeDays,
		SentryEnabled: cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)

	config.Watch(v, log)

	log.Info("starting credgate bot",
		slog.String("env", cfg.AppEnv),
		slog.String("channel", cfg.Referral.Channel),
		slog.Int("referrals_required", cfg.Referral.Required),
	)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	storeClient := store.New(cfg.Store, log)
	users := repository.NewUserRepository(storeClient, log)
	creds := repository.NewCredentialRepository(storeClient, log)

	events := make(chan referral.Event, referralEventBuffer)
	ledger := referral.NewLedger(users, cfg.Referral.Required, events, log)

	idemStore := idempotency.NewRedisStore(redisClient.Client, log)
	idemManager := idempotency.NewManager(idemStore, log)
	idemCleaner := idempotency.NewCleaner(redisClient.Client, log, 10*time.Minute, 24*time.Hour)
	go idemCleaner.Run(ctx)

	limiter := ratelimit.NewAdaptiveLimiter(
		ratelimit.NewRedisLimiter(redisClient.Client, log),
		ratelimit.NewMemoryLimiter(log),
		log,
	)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, ratelimit.NewRules(cfg.RateLimit), log)
	rateLimitCleaner := ratelimit.NewCleaner(redisClient.Client, log, 5*time.Minute)
	go rateLimitCleaner.Run(ctx)

	b, err := bot.New(*cfg, log, users, creds, ledger, idemManager, rateLimitMw)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	notifier := notify.New(b.Telebot(), events, log)
	go notifier.Run(ctx)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	worker := jobs.NewWorker(redisOpt, map[string]int{jobs.QueueDefault: 1, jobs.QueueLow: 1}, log)
	worker.RegisterHandler(jobs.TaskTypeUsageReset, jobhandlers.NewUsageResetHandler(creds, log))
	go func() {
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped", slog.Any("error", err))
		}
	}()

	scheduler := jobs.NewScheduler(redisOpt, log)
	if err := scheduler.RegisterTasks(); err != nil {
		log.Error("failed to register scheduled tasks", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Run()

	queue := jobs.NewManager(redisOpt, log)
	enqueueCatchUpReset(ctx, queue, log)

	checker := health.NewChecker(log)
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	checker.AddCheck("store", health.NewStoreChecker(storeClient))

	mux := http.NewServeMux()
	mux.Handle("/healthz", health.LivenessHandler())
	mux.Handle("/readyz", checker.ReadinessHandler())
	mux.Handle("/metrics", promhttp.Handler())

	httpHandler := logger.Middleware(middleware.HTTPLogging(log)(mux))
	srv := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: httpHandler,
	}, cfg.Server.ShutdownTimeout)

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("http server terminated", slog.Any("error", err))
		}
	}()

	go b.Start()
	log.Info("bot is running")

	<-ctx.Done()

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram-bot", func(context.Context) error {
		// The event channel closes only after the bot stops: hooks run in
		// parallel, and an in-flight /start must not publish to a closed
		// channel.
		b.Stop()
		close(events)
		return nil
	})
	shutdown.Register("jobs-worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	shutdown.Register("jobs-scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("jobs-queue", func(context.Context) error {
		return queue.Close()
	})
	shutdown.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("credgate bot stopped")
}

// enqueueCatchUpReset schedules one immediate usage reset so counters are
// correct after the process was down across a midnight boundary. The handler
// skips records already reset today, so this is safe to run on every boot.
func enqueueCatchUpReset(ctx context.Context, queue *jobs.Manager, log *slog.Logger) {
	task, err := jobs.NewUsageResetTask("")
	if err != nil {
		log.Warn("failed to build catch-up reset task", slog.Any("error", err))
		return
	}

	if _, err := queue.Enqueue(ctx, task); err != nil {
		log.Warn("failed to enqueue catch-up reset task", slog.Any("error", err))
	}
}
