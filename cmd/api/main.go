package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/fairledger/internal/api"
	"github.com/fastprodman/fairledger/internal/config"
	"github.com/fastprodman/fairledger/internal/infra/events"
	"github.com/fastprodman/fairledger/internal/infra/lock"
	"github.com/fastprodman/fairledger/internal/infra/logging"
	"github.com/fastprodman/fairledger/internal/infra/pgutils"
	"github.com/fastprodman/fairledger/internal/infra/redisutil"
	pgbooths "github.com/fastprodman/fairledger/internal/repos/booths/postgres"
	pgcards "github.com/fastprodman/fairledger/internal/repos/cards/postgres"
	pgitems "github.com/fastprodman/fairledger/internal/repos/items/postgres"
	pgtransactions "github.com/fastprodman/fairledger/internal/repos/transactions/postgres"
	"github.com/fastprodman/fairledger/internal/services/auth"
	"github.com/fastprodman/fairledger/internal/services/catalog"
	"github.com/fastprodman/fairledger/internal/services/ledger"
	"github.com/fastprodman/fairledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = checkAPIConfig(cfg)
	if err != nil {
		return fmt.Errorf("check config: %w", err)
	}

	logger := logging.SetupJSON(cfg.SlogLevel())
	queue := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		serr := queue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	queue.Add("postgres", func(context.Context) error {
		return db.Close()
	})

	locker, err := newLocker(ctx, cfg, logger, queue)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, logger, queue)
	if err != nil {
		return err
	}

	// --- Services ---
	boothRepo := pgbooths.New(db)
	cat := catalog.New(pgitems.New(db))

	engine := ledger.New(pgcards.New(db), boothRepo, pgtransactions.New(db), cat,
		ledger.WithLocker(locker),
		ledger.WithPublisher(publisher),
		ledger.WithLogger(logger),
		ledger.WithMaxRetries(cfg.Ledger.MaxRetries),
		ledger.WithQueryLimits(cfg.Ledger.PageSize, cfg.Ledger.QueryLimit),
		ledger.WithWriteTimeout(cfg.Ledger.CompensationTimeout),
	)

	authSvc, err := auth.New(boothRepo, cfg.Auth)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	if cfg.Auth.CashierPasswordHash == "" {
		logger.Warn("cashier login disabled, auth.cashier_password_hash is empty")
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.App.Port, api.NewRouter(api.Deps{
		Ledger:      engine,
		Auth:        authSvc,
		Catalog:     cat,
		Logger:      logger,
		CORSOrigins: cfg.App.CORSOrigins,
	}))

	queue.Add("http server", func(c context.Context) error {
		logger.Info("Shut down server")

		return srv.Shutdown(c)
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	logger.Info("API started", "port", cfg.App.Port)

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

// newLocker returns the Redis card lock when redis.addr is set and the
// process-local one otherwise.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger, queue *shutdownqueue.Queue) (lock.Locker, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("card lock is process-local")
		return lock.NewLocal(), nil
	}

	client, err := redisutil.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	queue.Add("redis", func(context.Context) error {
		return client.Close()
	})

	logger.Info("card lock is redis", "addr", cfg.Redis.Addr, "ttl", cfg.Ledger.LockTTL)

	return lock.NewRedis(client, cfg.Ledger.LockTTL, logger), nil
}

// newPublisher returns the Kafka publisher when brokers are configured and a
// no-op otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger, queue *shutdownqueue.Queue) (events.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("transaction events disabled")
		return events.Nop{}, nil
	}

	producer, err := events.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	pub := events.NewKafka(producer, cfg.Kafka.Topic)

	queue.Add("kafka", func(context.Context) error {
		return pub.Close()
	})

	logger.Info("publishing transaction events", "topic", cfg.Kafka.Topic)

	return pub, nil
}
