package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/goodnatureofminers/txconfirm-backend/internal/chainset"
	"github.com/goodnatureofminers/txconfirm-backend/internal/dedup"
	"github.com/goodnatureofminers/txconfirm-backend/internal/metrics"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/monitor"
	"github.com/goodnatureofminers/txconfirm-backend/internal/notify"
	"github.com/goodnatureofminers/txconfirm-backend/internal/notify/telegram"
	"github.com/goodnatureofminers/txconfirm-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/txconfirm-backend/internal/repository/postgres"
	"github.com/goodnatureofminers/txconfirm-backend/internal/watcher"
	"github.com/goodnatureofminers/txconfirm-backend/pkg/batcher"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type config struct {
	PostgresDSN   string `long:"postgres-dsn" env:"TXWATCH_POSTGRES_DSN" description:"Postgres DSN of tracked transactions" required:"true"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"TXWATCH_CLICKHOUSE_DSN" description:"ClickHouse DSN for chain events, events are only logged when empty"`
	MetricsAddr   string `long:"metrics-addr" env:"TXWATCH_METRICS_ADDR" description:"address for metrics server" default:":2112"`

	Monitor struct {
		Interval  time.Duration `long:"interval" env:"INTERVAL" description:"pause between monitor ticks" default:"60s"`
		BatchSize int           `long:"batch-size" env:"BATCH_SIZE" description:"unresolved records checked per tick" default:"500"`
		Workers   int           `long:"workers" env:"WORKERS" description:"concurrent status checks" default:"8"`
		Fractions []int         `long:"fraction" env:"FRACTIONS" env-delim:"," description:"progress milestones in percent of required confirmations"`
	} `group:"Monitor" namespace:"monitor" env-namespace:"TXWATCH_MONITOR"`

	Notify struct {
		Dedup         string        `long:"dedup" env:"DEDUP" description:"dedup store" choice:"postgres" choice:"memory" default:"postgres"`
		DedupTTL      time.Duration `long:"dedup-ttl" env:"DEDUP_TTL" description:"window in which a milestone is sent once" default:"72h"`
		TelegramToken string        `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"bot token, notifications are only logged when empty"`
		Rate          float64       `long:"rate" env:"RATE" description:"messages per second across all chats" default:"25"`
		ChatInterval  time.Duration `long:"chat-interval" env:"CHAT_INTERVAL" description:"minimum gap between messages to one chat" default:"1s"`
	} `group:"Notifications" namespace:"notify" env-namespace:"TXWATCH_NOTIFY"`

	Events struct {
		FlushSize     int           `long:"flush-size" env:"FLUSH_SIZE" description:"events per insert" default:"500"`
		FlushInterval time.Duration `long:"flush-interval" env:"FLUSH_INTERVAL" description:"max age of a pending batch" default:"2s"`
		QueueSize     int           `long:"queue-size" env:"QUEUE_SIZE" description:"events buffered before dropping"`
	} `group:"Events" namespace:"events" env-namespace:"TXWATCH_EVENTS"`

	chainset.Config
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", zap.Error(err))
	}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("txwatch failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool, metrics.NewPostgresRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	blocks, err := startBlockSignal(ctx, cfg.Bitcoin.ZMQAddr, logger)
	if err != nil {
		return err
	}
	signals := map[model.Chain]<-chan struct{}{}
	if blocks != nil {
		signals[model.Bitcoin] = blocks
	}

	set, err := chainset.Build(cfg.Config, chainset.Options{Signals: signals}, logger)
	if err != nil {
		return fmt.Errorf("build chains: %w", err)
	}
	defer set.Close()
	logger.Info("chains enabled", zap.Any("chains", set.Chains()))

	sink, stopSink, err := newEventSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopSink()

	gate, err := newGate(cfg, pool, logger)
	if err != nil {
		return err
	}

	trackers := make([]monitor.Tracker, 0, len(set.Trackers))
	for _, t := range set.Trackers {
		trackers = append(trackers, t)
	}
	mon, err := monitor.NewService(repo, trackers, gate, metrics.NewMonitor(), monitor.Config{
		Interval:  cfg.Monitor.Interval,
		BatchSize: cfg.Monitor.BatchSize,
		Workers:   cfg.Monitor.Workers,
		Fractions: cfg.Monitor.Fractions,
	}, logger)
	if err != nil {
		return fmt.Errorf("init monitor: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mon.Run(ctx)
	})
	if len(set.Watchers) > 0 {
		scheduler, err := watcher.NewScheduler(set.Watchers, sink, metrics.NewScheduler(), logger)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		g.Go(func() error {
			return scheduler.Run(ctx)
		})
	}
	return g.Wait()
}

// newEventSink returns the ClickHouse sink when a DSN is set and the log sink otherwise.
func newEventSink(ctx context.Context, cfg config, logger *zap.Logger) (watcher.Sink, func(), error) {
	if cfg.ClickhouseDSN == "" {
		logger.Info("no ClickHouse DSN, chain events are logged only")
		return watcher.NewLogSink(logger), func() {}, nil
	}

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return nil, nil, fmt.Errorf("init event repository: %w", err)
	}
	sink := clickhouse.NewSink(repo, batcher.Config{
		FlushSize:     cfg.Events.FlushSize,
		FlushInterval: cfg.Events.FlushInterval,
		QueueSize:     cfg.Events.QueueSize,
	}, logger)
	sink.Start(ctx)

	return sink, func() {
		sink.Stop()
		if err := repo.Close(); err != nil {
			logger.Warn("close event repository", zap.Error(err))
		}
	}, nil
}

func newGate(cfg config, pool *pgxpool.Pool, logger *zap.Logger) (*notify.Gate, error) {
	var store notify.DedupStore
	switch cfg.Notify.Dedup {
	case "memory":
		logger.Warn("in-memory dedup store, milestones may repeat after a restart")
		store = dedup.NewMemory()
	default:
		pg, err := dedup.NewPostgres(pool, metrics.NewPostgresRepository())
		if err != nil {
			return nil, fmt.Errorf("init dedup store: %w", err)
		}
		store = pg
	}

	deliverer, err := newDeliverer(cfg, logger)
	if err != nil {
		return nil, err
	}

	gate, err := notify.NewGate(store, deliverer, cfg.Notify.DedupTTL, metrics.NewNotifier(), logger)
	if err != nil {
		return nil, fmt.Errorf("init notification gate: %w", err)
	}
	return gate, nil
}

func newDeliverer(cfg config, logger *zap.Logger) (notify.Deliverer, error) {
	if cfg.Notify.TelegramToken == "" {
		logger.Info("no Telegram token, notifications are logged only")
		return notify.NewLogDeliverer(logger), nil
	}

	// bot.New validates the token with getMe.
	b, err := bot.New(cfg.Notify.TelegramToken, bot.WithCheckInitTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	limiter, err := notify.NewLimiter(cfg.Notify.Rate, cfg.Notify.ChatInterval)
	if err != nil {
		return nil, err
	}
	d, err := telegram.NewDeliverer(b, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("init telegram deliverer: %w", err)
	}
	return d, nil
}
