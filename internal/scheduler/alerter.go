package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmonitor/internal/domain"
	"github.com/hamed0406/pingmonitor/internal/notify"
	"github.com/hamed0406/pingmonitor/internal/outage"
	"github.com/hamed0406/pingmonitor/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

// Alerter watches published snapshots and notifies when the target goes
// down or comes back. It only reads snapshots, never the live tracker.
type Alerter struct {
	logger    *zap.Logger
	snapshots repo.SnapshotStore
	alertDB   repo.AlertStore
	notifier  notify.Notifier
	cfg       AlerterConfig
	now       func() time.Time
}

func NewAlerter(
	logger *zap.Logger,
	snapshots repo.SnapshotStore,
	alertDB repo.AlertStore,
	notifier notify.Notifier,
	cfg AlerterConfig,
) *Alerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Alerter{
		logger:    logger,
		snapshots: snapshots,
		alertDB:   alertDB,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			// one last look so a final recovery is not lost
			_ = a.scanOnce(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-t.C:
			if err := a.scanOnce(ctx); err != nil {
				a.logger.Warn("alerter_scan_error", zap.Error(err))
			}
		}
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	snap, err := a.snapshots.Latest(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	now := a.now()
	up := snap.Stats.CurrentConsecutiveFailures == 0
	rec, err := a.alertDB.Get(ctx, snap.Target)
	if err != nil {
		return err
	}

	// No record yet counts as "was up": the first UP is not a recovery.
	stateChanged := (rec == nil && !up) || (rec != nil && rec.LastUp != up)

	// Cooldown only matters for DOWN alerts (suppresses flapping repeats).
	cooled := true
	var lastSent time.Time
	if rec != nil && rec.LastSentAt != nil {
		lastSent = *rec.LastSentAt
		cooled = now.Sub(lastSent) >= a.cfg.Cooldown
	}

	downAlert := stateChanged && !up && cooled
	recoveryAlert := stateChanged && up && a.cfg.AlertOnRecovery // bypass cooldown

	if downAlert || recoveryAlert {
		msg := alertMessage(snap, now)
		if err := a.notifier.Notify(ctx, msg); err != nil {
			a.logger.Warn("alert_send_error", zap.String("title", msg.Title), zap.Error(err))
		} else {
			a.logger.Info("alert_sent", zap.String("title", msg.Title), zap.String("target", snap.Target))
		}
		return a.alertDB.Set(ctx, snap.Target, up, now)
	}

	// State changed without a send (cooldown, recovery alerts off): keep the
	// previous send time so the cooldown still applies.
	if stateChanged || rec == nil {
		return a.alertDB.Set(ctx, snap.Target, up, lastSent)
	}
	return nil
}

func alertMessage(snap *domain.Snapshot, now time.Time) notify.Message {
	s := snap.Stats
	rate := "n/a"
	if r, ok := s.SuccessRate(); ok {
		rate = fmt.Sprintf("%.2f%%", r*100)
	}

	eps := outage.Episodes(snap.Outages)
	var last outage.Episode
	if len(eps) > 0 {
		last = eps[len(eps)-1]
	}
	totals := fmt.Sprintf("%d of %d probes", s.FailedProbes, s.TotalProbes)

	if s.CurrentConsecutiveFailures > 0 {
		return notify.Message{
			Severity: notify.SeverityDown,
			Target:   snap.Target,
			Title:    "🔴 Target DOWN",
			At:       now,
			Fields: []notify.Field{
				{Name: "Target", Value: snap.Target},
				{Name: "Consecutive drops", Value: fmt.Sprint(s.CurrentConsecutiveFailures)},
				{Name: "Since", Value: last.Start.Format(time.RFC3339)},
				{Name: "Total drops", Value: totals},
				{Name: "Success rate", Value: rate},
			},
		}
	}
	return notify.Message{
		Severity: notify.SeverityRecovered,
		Target:   snap.Target,
		Title:    "🟢 Target RECOVERED",
		At:       now,
		Fields: []notify.Field{
			{Name: "Target", Value: snap.Target},
			{Name: "Last outage", Value: fmt.Sprintf("%d drops from %s to %s",
				last.Drops, last.Start.Format(time.RFC3339), last.Last.Format(time.RFC3339))},
			{Name: "Total drops", Value: totals},
			{Name: "Success rate", Value: rate},
		},
	}
}
