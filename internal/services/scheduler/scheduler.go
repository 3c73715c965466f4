// Package scheduler drives cultivation progress for every active character
// on fixed wall-clock boundaries.
package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"goa.design/clue/log"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/cultivation-idle/internal/audit"
	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/dice"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/locks"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/presence"
	"github.com/KirkDiggler/cultivation-idle/internal/retry"
	"github.com/KirkDiggler/cultivation-idle/internal/services/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/services/progress"
)

const (
	DefaultConcurrency   = 8
	DefaultEntityTimeout = 10 * time.Second

	meterName = "github.com/KirkDiggler/cultivation-idle/internal/services/scheduler"
)

// Sweeper is the part of the alchemy service the scheduler drives
type Sweeper interface {
	Sweep(ctx context.Context, characterIDs []string, now time.Time) ([]alchemy.DueNotice, error)
}

// Config holds configuration for the scheduler
type Config struct {
	Characters characters.Repository // Required
	Presence   presence.Source       // Required

	Sweeper    Sweeper              // Optional, no sweep when nil
	Reconciler *progress.Reconciler // Optional, defaults to one cycle per Interval
	Effect     progress.Effect      // Optional, defaults to progress.CultivationEffect
	Source     dice.Source          // Optional, feeds the default effect
	Clock      clock.Clock          // Optional
	Locks      *locks.Keyed         // Optional, share with the alchemy service
	Audit      audit.Recorder       // Optional
	Retry      *retry.Policy        // Optional
	Meter      metric.Meter         // Optional, defaults to the global meter provider

	Interval      time.Duration // Optional, defaults to progress.DefaultInterval
	Concurrency   int           // Optional, defaults to DefaultConcurrency
	EntityTimeout time.Duration // Optional, defaults to DefaultEntityTimeout
}

// Status is a snapshot of the scheduler for operators
type Status struct {
	Running           bool      `json:"running"`
	IntervalSeconds   float64   `json:"interval_seconds"`
	ActiveEntityCount int       `json:"active_entity_count"`
	LastRunAt         time.Time `json:"last_run_at,omitempty"`
}

// IterationReport summarizes one RunOnce
type IterationReport struct {
	StartedAt   time.Time `json:"started_at"`
	Active      int       `json:"active"`
	Processed   int       `json:"processed"`
	Cycles      int       `json:"cycles"`
	Failed      []string  `json:"failed,omitempty"`
	DueSessions int       `json:"due_sessions"`
}

// Scheduler is the periodic driver. Only one Run may be active at a time.
type Scheduler struct {
	characters characters.Repository
	presence   presence.Source
	sweeper    Sweeper
	reconciler *progress.Reconciler
	effect     progress.Effect
	clock      clock.Clock
	locks      *locks.Keyed
	audit      audit.Recorder
	retry      retry.Policy

	interval      time.Duration
	concurrency   int
	entityTimeout time.Duration

	running     atomic.Bool
	activeCount atomic.Int64
	lastRunAt   atomic.Int64

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool

	cyclesCounter   metric.Int64Counter
	failureCounter  metric.Int64Counter
	iterationTiming metric.Float64Histogram
}

// errUnchanged aborts a Mutate that has nothing to write
var errUnchanged = errors.New("no cycles elapsed")

// New creates a scheduler
func New(cfg *Config) *Scheduler {
	if cfg.Characters == nil {
		panic("character repository is required")
	}
	if cfg.Presence == nil {
		panic("presence source is required")
	}

	s := &Scheduler{
		characters:    cfg.Characters,
		presence:      cfg.Presence,
		sweeper:       cfg.Sweeper,
		reconciler:    cfg.Reconciler,
		effect:        cfg.Effect,
		clock:         cfg.Clock,
		locks:         cfg.Locks,
		audit:         cfg.Audit,
		retry:         retry.DefaultPolicy(),
		interval:      cfg.Interval,
		concurrency:   cfg.Concurrency,
		entityTimeout: cfg.EntityTimeout,
	}

	if s.interval <= 0 {
		s.interval = progress.DefaultInterval
	}
	if s.reconciler == nil {
		s.reconciler = progress.NewReconciler(s.interval)
	}
	if s.effect == nil {
		src := cfg.Source
		if src == nil {
			src = dice.NewRandomSource()
		}
		s.effect = progress.CultivationEffect(src)
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.locks == nil {
		s.locks = locks.NewKeyed()
	}
	if s.audit == nil {
		s.audit = audit.LogRecorder{}
	}
	if cfg.Retry != nil {
		s.retry = *cfg.Retry
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.entityTimeout <= 0 {
		s.entityTimeout = DefaultEntityTimeout
	}

	meter := cfg.Meter
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	s.initMetrics(meter)

	return s
}

func (s *Scheduler) initMetrics(meter metric.Meter) {
	var err error
	s.cyclesCounter, err = meter.Int64Counter("scheduler.cycles",
		metric.WithDescription("Cultivation cycles credited"))
	if err != nil {
		otel.Handle(err)
	}
	s.failureCounter, err = meter.Int64Counter("scheduler.entity_failures",
		metric.WithDescription("Characters skipped because reconciliation failed"))
	if err != nil {
		otel.Handle(err)
	}
	s.iterationTiming, err = meter.Float64Histogram("scheduler.iteration.duration",
		metric.WithDescription("Wall time of one scheduler iteration"),
		metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}
}

// NextBoundary returns the first multiple of interval strictly after now
func NextBoundary(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}

// Run processes an iteration at every interval boundary until ctx is done
// or Stop is called. An iteration already in flight always completes.
// A Stop that arrived while no loop was running makes Run return at once.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return engerr.InvalidStatef("scheduler is already running")
	}
	defer s.running.Store(false)

	s.mu.Lock()
	if s.stopped {
		s.stopped = false
		s.mu.Unlock()
		log.Info(ctx, log.KV{K: "msg", V: "scheduler stopped before start"})
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	log.Info(ctx, log.KV{K: "msg", V: "scheduler started"}, log.KV{K: "interval", V: s.interval.String()})

	for {
		wait := NextBoundary(s.clock.Now(), s.interval).Sub(s.clock.Now())
		timer := time.NewTimer(wait)

		select {
		case <-runCtx.Done():
			timer.Stop()
			log.Info(ctx, log.KV{K: "msg", V: "scheduler stopped"})
			return nil
		case <-timer.C:
		}

		if _, err := s.RunOnce(context.WithoutCancel(runCtx)); err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "scheduler iteration failed"})
		}
	}
}

// Stop asks a running loop to exit after its current iteration. Without a
// running loop the request is held for the next Run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		return
	}
	s.stopped = true
}

// Status reports whether the loop runs and how many characters it last saw
func (s *Scheduler) Status() Status {
	st := Status{
		Running:           s.running.Load(),
		IntervalSeconds:   s.interval.Seconds(),
		ActiveEntityCount: int(s.activeCount.Load()),
	}
	if ts := s.lastRunAt.Load(); ts != 0 {
		st.LastRunAt = time.Unix(0, ts).UTC()
	}
	return st
}

// RunOnce reconciles every active character in parallel, then sweeps their
// alchemy sessions. A failing character is logged and left untouched.
func (s *Scheduler) RunOnce(ctx context.Context) (*IterationReport, error) {
	started := time.Now()
	now := s.clock.Now()

	ids, err := retry.Value(ctx, s.retry, s.presence.ListActiveIDs)
	if err != nil {
		return nil, engerr.Wrap(err, "failed to list active characters")
	}

	s.activeCount.Store(int64(len(ids)))
	s.lastRunAt.Store(now.UnixNano())

	report := &IterationReport{StartedAt: now, Active: len(ids)}
	if len(ids) == 0 {
		log.Debug(ctx, log.KV{K: "msg", V: "no active characters"})
		return report, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			cr, err := s.reconcile(ctx, id, now)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				report.Failed = append(report.Failed, id)
				s.failureCounter.Add(ctx, 1)
				log.Error(ctx, err,
					log.KV{K: "msg", V: "failed to reconcile character"},
					log.KV{K: "character_id", V: id},
					log.KV{K: "code", V: string(engerr.GetCode(err))})
				return nil
			}

			report.Processed++
			report.Cycles += cr.Cycles
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(report.Failed)

	if s.sweeper != nil {
		notices, err := s.sweeper.Sweep(ctx, ids, now)
		if err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "alchemy sweep incomplete"})
		}
		report.DueSessions = len(notices)
	}

	s.cyclesCounter.Add(ctx, int64(report.Cycles))
	s.iterationTiming.Record(ctx, time.Since(started).Seconds())

	log.Info(ctx,
		log.KV{K: "msg", V: "scheduler iteration complete"},
		log.KV{K: "active", V: report.Active},
		log.KV{K: "processed", V: report.Processed},
		log.KV{K: "cycles", V: report.Cycles},
		log.KV{K: "failed", V: len(report.Failed)},
		log.KV{K: "due_sessions", V: report.DueSessions})

	return report, nil
}

// ForceReconcileNow catches one character up immediately, active or not
func (s *Scheduler) ForceReconcileNow(ctx context.Context, id string) (*progress.CycleReport, error) {
	if id == "" {
		return nil, engerr.InvalidArgument("character ID is required")
	}
	return s.reconcile(ctx, id, s.clock.Now())
}

// reconcile loads, advances and stores one character under its lock. The
// store is only written when the reconciliation succeeded.
func (s *Scheduler) reconcile(ctx context.Context, id string, now time.Time) (*progress.CycleReport, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.entityTimeout)
	defer cancel()

	var report *progress.CycleReport
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.characters.Mutate(ctx, id, func(ch *character.Character) error {
			r, err := s.reconciler.Reconcile(ch, now, s.effect)
			if err != nil {
				return err
			}
			report = r
			if r.Cycles == 0 && !r.FirstObservation {
				return errUnchanged
			}
			return nil
		})
		return err
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return nil, err
	}

	if len(report.Events) > 0 {
		s.audit.Record(ctx, id, audit.EventSpecialEvent, "special events during cultivation", map[string]any{
			"events": report.Events,
			"cycles": report.Cycles,
		})
	}

	return report, nil
}
