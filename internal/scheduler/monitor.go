package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmonitor/internal/domain"
	"github.com/hamed0406/pingmonitor/internal/outage"
	"github.com/hamed0406/pingmonitor/internal/probe"
	"github.com/hamed0406/pingmonitor/internal/repo"
	"github.com/hamed0406/pingmonitor/internal/session"
)

const DefaultStatusEvery = 60

var ErrInvalidMonitor = errors.New("scheduler: invalid monitor config")

// DropRecorder receives every outage event synchronously, in log order.
type DropRecorder interface {
	Record(ev domain.OutageEvent) error
}

type Config struct {
	Target   string
	Interval time.Duration
	// Timeout bounds each probe and must be shorter than Interval.
	Timeout time.Duration
	// Duration limits the session; zero runs until cancelled.
	Duration time.Duration
	// StatusEvery logs a status line every n probes; negative disables.
	StatusEvery int64
}

type Monitor struct {
	Logger    *zap.Logger
	Checker   probe.Checker
	Snapshots repo.SnapshotStore
	Drops     DropRecorder

	cfg   Config
	now   func() time.Time
	wait  func(ctx context.Context, d time.Duration) error
	state atomic.Value
}

type Option func(*Monitor)

func WithSnapshots(s repo.SnapshotStore) Option { return func(m *Monitor) { m.Snapshots = s } }

func WithDropRecorder(d DropRecorder) Option { return func(m *Monitor) { m.Drops = d } }

// WithClock replaces wall-clock time and the tick sleep. wait must return
// early with ctx.Err() once ctx is done.
func WithClock(now func() time.Time, wait func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Monitor) {
		m.now = now
		m.wait = wait
	}
}

func NewMonitor(logger *zap.Logger, checker probe.Checker, cfg Config, opts ...Option) (*Monitor, error) {
	switch {
	case cfg.Target == "":
		return nil, fmt.Errorf("%w: target required", ErrInvalidMonitor)
	case cfg.Interval <= 0:
		return nil, fmt.Errorf("%w: interval must be > 0", ErrInvalidMonitor)
	case cfg.Timeout <= 0 || cfg.Timeout >= cfg.Interval:
		return nil, fmt.Errorf("%w: timeout %v must be > 0 and < interval %v", ErrInvalidMonitor, cfg.Timeout, cfg.Interval)
	case cfg.Duration < 0:
		return nil, fmt.Errorf("%w: duration must be >= 0", ErrInvalidMonitor)
	case checker == nil:
		return nil, fmt.Errorf("%w: checker required", ErrInvalidMonitor)
	}
	if cfg.StatusEvery == 0 {
		cfg.StatusEvery = DefaultStatusEvery
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		Logger:  logger,
		Checker: probe.NewTimeoutChecker(checker, cfg.Timeout),
		cfg:     cfg,
		now:     time.Now,
		wait:    sleepCtx,
	}
	for _, o := range opts {
		o(m)
	}
	m.state.Store(domain.StateRunning)
	return m, nil
}

// State is safe to call from any goroutine.
func (m *Monitor) State() domain.RunState { return m.state.Load().(domain.RunState) }

// Run probes until the configured duration elapses or ctx is cancelled, and
// always returns the final snapshot. Cancellation is observed at the next
// tick boundary; a probe already in flight completes and is recorded.
func (m *Monitor) Run(ctx context.Context) domain.Snapshot {
	clock := session.Start(m.now, m.cfg.Duration)
	tracker := outage.NewTracker(clock.StartedAt())
	m.state.Store(domain.StateRunning)

	m.Logger.Info("monitor_started",
		zap.String("target", m.cfg.Target),
		zap.Duration("interval", m.cfg.Interval),
		zap.Duration("timeout", m.cfg.Timeout),
		zap.Duration("duration", m.cfg.Duration),
	)

	next := clock.StartedAt()
	var final domain.RunState
	for {
		if clock.Expired() {
			final = domain.StateStoppingByDuration
			break
		}
		if ctx.Err() != nil {
			final = domain.StateStoppingByCancellation
			break
		}

		m.tick(ctx, clock, tracker)

		next = next.Add(m.cfg.Interval)
		now := m.now()
		if now.After(next) {
			missed := now.Sub(next)/m.cfg.Interval + 1
			next = next.Add(missed * m.cfg.Interval)
			m.Logger.Warn("tick_overrun", zap.Int64("skipped_ticks", int64(missed)))
		}
		_ = m.wait(ctx, next.Sub(now))
	}

	m.state.Store(final)
	snap := m.snapshot(clock, tracker, final, true)
	m.publish(ctx, snap)
	m.state.Store(domain.StateTerminated)

	rate, _ := snap.Stats.SuccessRate()
	m.Logger.Info("monitor_stopped",
		zap.String("reason", string(snap.StopReason())),
		zap.Int64("total_probes", snap.Stats.TotalProbes),
		zap.Int64("failed_probes", snap.Stats.FailedProbes),
		zap.Int64("max_consecutive", snap.Stats.MaxConsecutiveFailures),
		zap.Float64("success_pct", rate*100),
		zap.Duration("elapsed", snap.Elapsed),
	)
	return snap
}

func (m *Monitor) tick(ctx context.Context, clock *session.Clock, tracker *outage.Tracker) {
	ts := m.now()
	res := m.Checker.Check(context.WithoutCancel(ctx), m.cfg.Target)
	step := tracker.Record(domain.ProbeOutcome{Timestamp: ts, Success: res.Success()})
	stats := tracker.Stats()

	switch step.Transition {
	case outage.RunStart, outage.RunContinuation:
		if res.Outcome == probe.Faulted {
			m.Logger.Warn("probe_fault",
				zap.String("target", m.cfg.Target),
				zap.String("checker", res.Name),
				zap.String("message", res.Message),
				zap.Error(res.Err),
			)
		}
		m.Logger.Info("packet_drop",
			zap.String("at", ts.Format("15:04:05")),
			zap.Int64("consecutive", step.Event.ConsecutiveIndex),
			zap.String("outcome", res.Outcome.String()),
			zap.String("message", res.Message),
		)
		if m.Drops != nil {
			if err := m.Drops.Record(*step.Event); err != nil {
				m.Logger.Error("droplog_write_failed", zap.Error(err))
			}
		}
	case outage.Recovery:
		m.Logger.Info("connection_restored", zap.Int64("after_drops", step.RecoveredAfter))
	}

	if m.cfg.StatusEvery > 0 && stats.TotalProbes%m.cfg.StatusEvery == 0 {
		rate, _ := stats.SuccessRate()
		m.Logger.Info("status",
			zap.Int64("total_probes", stats.TotalProbes),
			zap.Int64("failed_probes", stats.FailedProbes),
			zap.String("success", fmt.Sprintf("%.1f%%", rate*100)),
		)
	}

	m.publish(ctx, m.snapshot(clock, tracker, domain.StateRunning, false))
}

func (m *Monitor) snapshot(clock *session.Clock, tracker *outage.Tracker, state domain.RunState, final bool) domain.Snapshot {
	return domain.Snapshot{
		Target:    m.cfg.Target,
		Stats:     tracker.Stats(),
		Outages:   tracker.Events(),
		Elapsed:   clock.Elapsed(),
		TakenAt:   m.now(),
		Interval:  m.cfg.Interval,
		Limit:     clock.Limit(),
		Remaining: clock.Remaining(),
		State:     state,
		Final:     final,
	}
}

func (m *Monitor) publish(ctx context.Context, s domain.Snapshot) {
	if m.Snapshots == nil {
		return
	}
	if err := m.Snapshots.Publish(context.WithoutCancel(ctx), s); err != nil {
		m.Logger.Warn("snapshot_publish_error", zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
