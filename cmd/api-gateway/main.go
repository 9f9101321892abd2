package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/chainset"
	"github.com/goodnatureofminers/txconfirm-backend/internal/metrics"
	"github.com/goodnatureofminers/txconfirm-backend/internal/repository/postgres"
	"github.com/goodnatureofminers/txconfirm-backend/internal/transport"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
)

type config struct {
	Addr           string        `long:"addr" env:"API_GATEWAY_ADDR" description:"gRPC health addr" default:":8000"`
	RestAddr       string        `long:"rest-addr" env:"API_GATEWAY_REST_ADDR" description:"rest addr" default:":8001"`
	PostgresDSN    string        `long:"postgres-dsn" env:"API_GATEWAY_POSTGRES_DSN" description:"Postgres DSN of tracked transactions" required:"true"`
	HealthInterval time.Duration `long:"health-interval" env:"API_GATEWAY_HEALTH_INTERVAL" description:"chain availability refresh interval" default:"10s"`

	chainset.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", zap.Error(err))
	}
	var cfg config
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("api-gateway failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	repo, err := postgres.NewRepository(pool, metrics.NewPostgresRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	set, err := chainset.Build(cfg.Config, chainset.Options{SkipWatchers: true}, logger)
	if err != nil {
		return fmt.Errorf("build chains: %w", err)
	}
	defer set.Close()

	trackers := make([]transport.Tracker, 0, len(set.Trackers))
	for _, t := range set.Trackers {
		trackers = append(trackers, t)
	}
	endpoints := make([]transport.Endpoints, 0, len(set.Endpoints))
	for _, e := range set.Endpoints {
		endpoints = append(endpoints, e)
	}

	healthServer := health.NewServer()
	reporter, err := transport.NewHealthReporter(healthServer, endpoints, cfg.HealthInterval, logger)
	if err != nil {
		return fmt.Errorf("init health reporter: %w", err)
	}
	handler, err := transport.NewStatusHandler(repo, trackers, endpoints, logger)
	if err != nil {
		return fmt.Errorf("init status handler: %w", err)
	}
	rest, err := newRESTServer(cfg.RestAddr, handler)
	if err != nil {
		return err
	}

	logger.Info("serving chains", zap.Any("chains", set.Chains()),
		zap.String("grpc_addr", cfg.Addr), zap.String("rest_addr", cfg.RestAddr))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reporter.Run(ctx)
	})
	g.Go(func() error {
		return serveGRPC(ctx, cfg.Addr, healthServer, logger)
	})
	g.Go(func() error {
		return serveHTTP(ctx, rest, logger)
	})
	return g.Wait()
}
