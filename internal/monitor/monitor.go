// Package monitor re-checks unresolved transactions, writes back their progress and
// requests one notification per milestone crossing.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// Config tunes the monitor loop. Zero fields take the defaults.
type Config struct {
	Interval  time.Duration
	BatchSize int
	Workers   int
	Fractions []int
}

// Service is the confirmation monitor.
type Service struct {
	repo      Repository
	trackers  map[model.Chain]Tracker
	notifier  Notifier
	metrics   Metrics
	logger    *zap.Logger
	sleep     clock.SleepFunc
	interval  time.Duration
	batchSize int
	workers   int
	fractions []int
}

// NewService builds a Service checking records of the chains trackers cover.
func NewService(
	repo Repository,
	trackers []Tracker,
	notifier Notifier,
	metrics Metrics,
	cfg Config,
	logger *zap.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("monitor repository is required")
	}
	if notifier == nil {
		return nil, errors.New("monitor notifier is required")
	}
	if metrics == nil {
		return nil, errors.New("monitor metrics is required")
	}
	if len(trackers) == 0 {
		return nil, errors.New("at least one tracker is required")
	}

	byChain := make(map[model.Chain]Tracker, len(trackers))
	for _, t := range trackers {
		if _, dup := byChain[t.Chain()]; dup {
			return nil, fmt.Errorf("duplicate tracker for chain %s", t.Chain())
		}
		byChain[t.Chain()] = t
	}

	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if len(cfg.Fractions) == 0 {
		cfg.Fractions = DefaultFractions()
	}
	for _, f := range cfg.Fractions {
		if f <= 0 || f >= 100 {
			return nil, fmt.Errorf("milestone fraction %d must be within (0, 100)", f)
		}
	}

	return &Service{
		repo:      repo,
		trackers:  byChain,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger.Named("monitor"),
		sleep:     clock.Sleep,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
		fractions: cfg.Fractions,
	}, nil
}

// Run ticks until the context is canceled. A failed tick is logged and retried after the interval.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("confirmation monitor started", zap.Duration("interval", s.interval), zap.Int("workers", s.workers))
	for {
		if err := s.run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("monitor tick failed", zap.Error(err))
		}
		if err := s.sleep(ctx, s.interval); err != nil {
			s.logger.Info("confirmation monitor stopped")
			return nil
		}
	}
}

// run performs one tick over the unresolved records.
func (s *Service) run(ctx context.Context) (err error) {
	started := time.Now()
	var records []model.TransactionRecord
	defer func() {
		s.metrics.ObserveTick(err, len(records), started)
	}()

	records, err = s.repo.ListUnresolved(ctx, s.batchSize)
	if err != nil {
		return fmt.Errorf("list unresolved: %w", err)
	}
	if len(records) == 0 {
		s.logger.Debug("no unresolved transactions")
		return nil
	}
	if len(records) == s.batchSize {
		s.logger.Info("unresolved backlog fills the batch, the rest follows on later ticks", zap.Int("batch", s.batchSize))
	}

	return workerpool.ForEach(ctx, s.workers, records, s.check)
}

func (s *Service) check(ctx context.Context, rec model.TransactionRecord) {
	started := time.Now()
	logger := s.logger.With(zap.String("chain", string(rec.Chain)), zap.String("hash", rec.Hash))

	tracker, ok := s.trackers[rec.Chain]
	if !ok {
		logger.Warn("no tracker configured for chain")
		s.metrics.ObserveCheck(rec.Chain, resultNoTracker, started)
		return
	}

	st := tracker.Status(ctx, rec.Hash)
	if st.Unknown() {
		if ctx.Err() == nil {
			logger.Warn("status unknown, retrying next tick", zap.Error(st.Err))
		}
		s.metrics.ObserveCheck(rec.Chain, resultUnknown, started)
		return
	}

	ev := Evaluate(rec, st, s.fractions)
	if ev.Illegal {
		logger.Warn("refusing illegal status transition", zap.String("from", string(rec.Status)))
		s.metrics.ObserveCheck(rec.Chain, resultIllegal, started)
		return
	}
	if ev.Anomaly {
		logger.Warn("chain reported fewer confirmations than stored, keeping stored value",
			zap.Uint64("stored", rec.Confirmations),
			zap.Uint64("observed", ev.Observed),
		)
	}

	result := resultUnchanged
	if ev.Changed {
		if err := s.repo.UpdateStatus(ctx, ev.Update); err != nil {
			logger.Error("write back failed", zap.Error(err))
			s.metrics.ObserveCheck(rec.Chain, resultWriteFailed, started)
			return
		}
		result = resultUpdated
		logger.Debug("status updated",
			zap.String("status", string(ev.Update.Status)),
			zap.Uint64("confirmations", ev.Update.Confirmations),
		)
	}

	required := rec.RequiredConfirmations
	if required == 0 {
		required = st.Required
	}
	for _, c := range ev.Crossings {
		n := model.Notification{
			Key: model.DedupKey{
				Chain:     rec.Chain,
				Hash:      rec.Hash,
				Owner:     rec.Owner,
				Milestone: c.Milestone,
			},
			Status:        ev.Update.Status,
			Confirmations: ev.Update.Confirmations,
			Required:      required,
			BlockHeight:   ev.Update.BlockHeight,
			Percent:       c.Percent,
		}
		if _, err := s.notifier.Notify(ctx, n); err != nil {
			logger.Error("notification failed", zap.String("milestone", string(c.Milestone)), zap.Error(err))
		}
	}
	s.metrics.ObserveCheck(rec.Chain, result, started)
}
