package stakingd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"stakeledger/config"
	"stakeledger/core/events"
	"stakeledger/observability"
	"stakeledger/observability/logging"
	telemetry "stakeledger/observability/otel"
	"stakeledger/storage"
)

// Main initialises and runs the staking ledger daemon.
func Main() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "services/stakingd/config.yaml", "path to stakingd configuration")
	flag.Parse()

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	env := strings.TrimSpace(os.Getenv("STAKINGD_ENV"))
	logger := logging.SetupWithOptions(logging.Options{
		Service:    "stakingd",
		Env:        env,
		Level:      logging.ParseLevel(cfg.Log.Level),
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
			ServiceName: "stakingd",
			Environment: env,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			Metrics:     true,
			Traces:      true,
			SampleRatio: cfg.Telemetry.SampleRatio,
		}.ApplyEnv())
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTelemetry(ctx)
		}()
	}

	params, err := config.LoadGlobal(cfg.ParamsPath)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}

	dbPath := cfg.DataDir
	if cfg.StorageEngine == "bolt" {
		dbPath = filepath.Join(cfg.DataDir, "ledger.db")
	}
	db, err := storage.Open(cfg.StorageEngine, dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	journal, err := OpenJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer journal.Close()

	metrics := observability.Rewards()
	sys, err := NewSystem(*params, db, SystemOptions{
		Emitter:   events.Fanout{observability.NewEventMetrics(metrics)},
		BlockTime: cfg.BlockTime.Duration,
	})
	if err != nil {
		return fmt.Errorf("build ledger: %w", err)
	}
	svc := NewService(sys, journal, metrics, logger)

	keeper, err := keeperFromConfig(cfg.Keeper, svc, logger)
	if err != nil {
		return err
	}

	auth, err := NewAdminAuthenticator(cfg.Admin, logger)
	if err != nil {
		return err
	}
	server := NewServer(svc, auth, NewRateLimiter(cfg.RateLimit), logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           otelhttp.NewHandler(server, "stakingd"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("stakingd listening", "addr", cfg.ListenAddress, "storage", cfg.StorageEngine)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			_ = httpServer.Close()
			return err
		}
		return nil
	})
	if keeper != nil {
		group.Go(func() error { return keeper.Run(ctx) })
	}
	return group.Wait()
}
