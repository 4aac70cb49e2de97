package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmonitor/internal/domain"
	"github.com/hamed0406/pingmonitor/internal/notify"
	"github.com/hamed0406/pingmonitor/internal/repo/memory"
)

// ---- shared helpers ----

func snapWith(current, failed, total int64) domain.Snapshot {
	var outs []domain.OutageEvent
	for i := int64(1); i <= failed; i++ {
		outs = append(outs, domain.OutageEvent{StartTimestamp: t0.Add(time.Duration(i) * time.Second), ConsecutiveIndex: i})
	}
	return domain.Snapshot{
		Target:  "8.8.8.8",
		Outages: outs,
		Stats: domain.Statistics{
			TotalProbes:                total,
			FailedProbes:               failed,
			CurrentConsecutiveFailures: current,
			MaxConsecutiveFailures:     failed,
		},
	}
}

type memNotifier struct {
	n      int
	titles []string
	texts  []string
	err    error
}

func (m *memNotifier) Notify(ctx context.Context, msg notify.Message) error {
	m.n++
	m.titles = append(m.titles, msg.Title)
	m.texts = append(m.texts, msg.Text())
	return m.err
}

// ---- tests ----

func TestAlerter_SendsOnDown_RespectsCooldown(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	nt := &memNotifier{}
	al := NewAlerter(zap.NewNop(), store, store, nt, AlerterConfig{
		AlertOnRecovery: true,
		Cooldown:        1 * time.Minute,
		PollInterval:    10 * time.Millisecond,
	})
	clock := t0
	al.now = func() time.Time { return clock }

	// no snapshot yet -> nothing
	if err := al.scanOnce(ctx); err != nil || nt.n != 0 {
		t.Fatalf("unexpected alert before first snapshot: %d %v", nt.n, err)
	}

	_ = store.Publish(ctx, snapWith(2, 2, 10))
	if err := al.scanOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if nt.n != 1 || !strings.Contains(nt.titles[0], "DOWN") {
		t.Fatalf("want 1 down alert, got %v", nt.titles)
	}
	if !strings.Contains(nt.texts[0], "Consecutive drops: 2") {
		t.Fatalf("down text missing run length: %q", nt.texts[0])
	}

	// still down -> no new alert
	_ = store.Publish(ctx, snapWith(3, 3, 11))
	_ = al.scanOnce(ctx)
	if nt.n != 1 {
		t.Fatalf("want no repeat while down, got %d", nt.n)
	}

	// recovery -> alert
	_ = store.Publish(ctx, snapWith(0, 3, 12))
	_ = al.scanOnce(ctx)
	if nt.n != 2 || !strings.Contains(nt.titles[1], "RECOVERED") {
		t.Fatalf("want recovery alert, got %v", nt.titles)
	}

	// flap down again within cooldown -> suppressed
	clock = clock.Add(10 * time.Second)
	_ = store.Publish(ctx, snapWith(1, 4, 13))
	_ = al.scanOnce(ctx)
	if nt.n != 2 {
		t.Fatalf("want cooldown to suppress, got %d", nt.n)
	}

	// recovery is never cooled down; the next drop after cooldown alerts again
	_ = store.Publish(ctx, snapWith(0, 4, 14))
	_ = al.scanOnce(ctx)
	clock = clock.Add(2 * time.Minute)
	_ = store.Publish(ctx, snapWith(1, 5, 15))
	_ = al.scanOnce(ctx)
	if nt.n != 4 {
		t.Fatalf("want recovery + down after cooldown, got %d (%v)", nt.n, nt.titles)
	}
}

func TestAlerter_NoRecoveryIfDisabled(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	nt := &memNotifier{}
	al := NewAlerter(zap.NewNop(), store, store, nt, AlerterConfig{AlertOnRecovery: false})

	// first time UP (no previous) -> no alert
	_ = store.Publish(ctx, snapWith(0, 0, 5))
	if err := al.scanOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if nt.n != 0 {
		t.Fatalf("unexpected alert: %d", nt.n)
	}

	// go DOWN -> should alert
	_ = store.Publish(ctx, snapWith(1, 1, 6))
	_ = al.scanOnce(ctx)
	if nt.n != 1 {
		t.Fatalf("want one down alert, got %d", nt.n)
	}

	// UP with recovery disabled -> silent
	_ = store.Publish(ctx, snapWith(0, 1, 7))
	_ = al.scanOnce(ctx)
	if nt.n != 1 {
		t.Fatalf("recovery alerts are disabled, got %d", nt.n)
	}
}

func TestAlerter_SendErrorStillRecordsState(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	nt := &memNotifier{err: errors.New("slack non-2xx")}
	al := NewAlerter(zap.NewNop(), store, store, nt, AlerterConfig{Cooldown: time.Minute})

	_ = store.Publish(ctx, snapWith(1, 1, 1))
	if err := al.scanOnce(ctx); err != nil {
		t.Fatal(err)
	}
	rec, _ := store.Get(ctx, "8.8.8.8")
	if rec == nil || rec.LastUp {
		t.Fatalf("want down state recorded, got %+v", rec)
	}
}

func TestAlerter_RunStopsOnCancel(t *testing.T) {
	store := memory.New()
	al := NewAlerter(nil, store, store, &memNotifier{}, AlerterConfig{PollInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := al.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want ctx error, got %v", err)
	}
}
