package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/marcelsud/wusul-core/auth"
	authpostgres "github.com/marcelsud/wusul-core/auth/postgres"
	"github.com/marcelsud/wusul-core/config"
	"github.com/marcelsud/wusul-core/internal/http/chi"
	"github.com/marcelsud/wusul-core/metrics"
	"github.com/marcelsud/wusul-core/subscriptions"
	"github.com/marcelsud/wusul-core/webhook"
	webhookpostgres "github.com/marcelsud/wusul-core/webhook/postgres"
	webhookredis "github.com/marcelsud/wusul-core/webhook/redis"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

const TIMEOUT = 30 * time.Second

/* api runs the HTTP API together with one dispatch worker and the retry
 * scheduler (the Redis sweeper, or in-process timers when
 * WEBHOOK_RETRY_SCHEDULER=memory)
 * Credentials always come from PostgreSQL; subscriptions come from
 * SUBSCRIPTIONS_FILE when set, otherwise from PostgreSQL
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	logger := httplog.NewLogger("wusul-api", httplog.Options{
		JSON:     true,
		LogLevel: cfg.GetLogLevel(),
	})

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("api stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	maxOpen, maxIdle, maxLife := cfg.GetPostgresPool()

	credentials, err := authpostgres.NewRepositoryWithPoolConfig(cfg.DatabaseURL, maxOpen, maxIdle, maxLife)
	if err != nil {
		return err
	}
	defer credentials.Close(ctx)
	if err := credentials.CreateTable(ctx); err != nil {
		return err
	}

	subs, closeSubs, err := subscriptionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSubs()

	store, err := webhookredis.NewRepository(cfg.GetRedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	store.WithAttemptTTL(cfg.GetWebhookAttemptTTL())
	defer store.Close(ctx)

	exporter, err := metrics.NewOTelExporter(metrics.NewRedisCollector(store))
	if err != nil {
		return err
	}
	defer exporter.Shutdown(context.Background())

	deliveryMetrics, err := metrics.NewDeliveryMetrics(exporter.Meter())
	if err != nil {
		return err
	}

	dispatcher := webhook.NewDispatcher(
		subs,
		store,
		store,
		webhook.NewHTTPSender(cfg.GetWebhookUserAgent(), cfg.GetWebhookHTTPTimeout()),
		logger.With().Str("component", "dispatcher").Logger(),
	)
	dispatcher.Queue = store
	dispatcher.Policy = webhook.NewRetryPolicy(cfg.GetWebhookRetryAttempts(), cfg.GetWebhookRetryTimeoutHours())
	dispatcher.Source = cfg.GetWebhookSource()
	dispatcher.Concurrency = cfg.GetWebhookFanoutConcurrency()
	dispatcher.Observer = deliveryMetrics

	runRetries := retryScheduler(cfg, store, dispatcher, logger)

	worker := webhook.NewWorker(workerID(), store, dispatcher, store, logger.With().Str("component", "worker").Logger())

	r := chi.Handlers(ctx, logger, chi.Services{
		Authenticator: auth.NewAuthenticator(credentials, logger.With().Str("component", "auth").Logger()),
		Subscriptions: webhook.NewSubscriptionService(subs),
		Dispatcher:    dispatcher,
		Attempts:      store,
		Metrics:       exporter.ServeHTTP(),
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.GetPort(),
		Handler:      r,
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := worker.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("worker stopped")
		}
	})
	wg.Go(func() {
		if err := runRetries(ctx); err != nil {
			logger.Error().Err(err).Msg("retry scheduler stopped")
		}
	})

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)

	logger.Info().Str("port", cfg.GetPort()).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		wg.Wait()
		return err
	}

	err = <-errShutdown
	wg.Wait()
	return err
}

/* retryScheduler points the dispatcher at the configured retry scheduler
 * and returns the loop that runs retries until ctx is cancelled
 */
func retryScheduler(cfg *config.Config, store *webhookredis.Repository, dispatcher *webhook.Dispatcher, logger zerolog.Logger) func(context.Context) error {
	if cfg.GetWebhookRetryScheduler() == config.SchedulerMemory {
		timers := webhook.NewTimerScheduler(logger.With().Str("component", "timer-scheduler").Logger())
		timers.Handle(dispatcher.Retry)
		dispatcher.Scheduler = timers
		logger.Warn().Msg("in-memory retry scheduler selected, pending retries are lost on exit")
		return func(ctx context.Context) error {
			<-ctx.Done()
			timers.Stop()
			return nil
		}
	}

	dispatcher.Scheduler = store
	sweeper := webhook.NewSweeper(store, dispatcher.Retry, cfg.GetWebhookSweepInterval(), logger.With().Str("component", "sweeper").Logger())
	sweeper.Concurrency = cfg.GetWebhookFanoutConcurrency()
	sweeper.RecoverInterval = cfg.GetWebhookRecoverInterval()
	if lease := 2 * cfg.GetWebhookHTTPTimeout(); lease > sweeper.Lease {
		sweeper.Lease = lease
	}
	return sweeper.Run
}

// subscriptionStore picks the file-backed registry or PostgreSQL
func subscriptionStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (webhook.SubscriptionRepository, func(), error) {
	if cfg.SubscriptionsFile != "" {
		loader := subscriptions.NewLoader()
		if err := loader.Load(cfg.SubscriptionsFile); err != nil {
			return nil, nil, err
		}
		logger.Info().Str("file", cfg.SubscriptionsFile).Int("subscriptions", len(loader.List())).Msg("subscriptions loaded")
		return loader, func() {}, nil
	}

	maxOpen, maxIdle, maxLife := cfg.GetPostgresPool()
	repo, err := webhookpostgres.NewRepositoryWithPoolConfig(cfg.DatabaseURL, maxOpen, maxIdle, maxLife)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.CreateTable(ctx); err != nil {
		repo.Close(ctx)
		return nil, nil, err
	}
	return repo, func() { repo.Close(ctx) }, nil
}

func workerID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "worker"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("shutting down server: %w", err)
	}
}
