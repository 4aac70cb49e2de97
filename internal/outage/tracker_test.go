package outage

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
)

var t0 = time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

func feed(tr *Tracker, seq []bool) {
	for i, ok := range seq {
		tr.Record(domain.ProbeOutcome{Timestamp: t0.Add(time.Duration(i) * time.Second), Success: ok})
	}
}

func indexes(evs []domain.OutageEvent) []int64 {
	out := make([]int64, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.ConsecutiveIndex)
	}
	return out
}

func TestTracker_Scenario(t *testing.T) {
	tr := NewTracker(t0)
	feed(tr, []bool{true, true, false, false, false, true, false})

	s := tr.Stats()
	if s.TotalProbes != 7 || s.FailedProbes != 4 || s.MaxConsecutiveFailures != 3 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.CurrentConsecutiveFailures != 1 {
		t.Fatalf("want current run 1, got %d", s.CurrentConsecutiveFailures)
	}
	if got := indexes(tr.Events()); !reflect.DeepEqual(got, []int64{1, 2, 3, 1}) {
		t.Fatalf("want [1 2 3 1], got %v", got)
	}
	if !tr.Events()[2].StartTimestamp.Equal(t0.Add(4 * time.Second)) {
		t.Fatalf("event timestamp should be the probe's: %v", tr.Events()[2].StartTimestamp)
	}
}

func TestTracker_AllSuccess(t *testing.T) {
	tr := NewTracker(t0)
	feed(tr, []bool{true, true, true, true, true})

	rate, ok := tr.SuccessRate()
	if !ok || rate != 1.0 {
		t.Fatalf("want 1.0, got %v (ok=%v)", rate, ok)
	}
	if len(tr.Events()) != 0 || tr.Stats().MaxConsecutiveFailures != 0 {
		t.Fatalf("unexpected outage state: %+v %v", tr.Stats(), tr.Events())
	}
}

func TestTracker_NoProbesIsNoData(t *testing.T) {
	tr := NewTracker(t0)
	if _, ok := tr.SuccessRate(); ok {
		t.Fatalf("want no data")
	}
}

func TestTracker_Transitions(t *testing.T) {
	tr := NewTracker(t0)
	want := []Transition{Steady, RunStart, RunContinuation, Recovery, RunStart}
	seq := []bool{true, false, false, true, false}
	for i, ok := range seq {
		step := tr.Record(domain.ProbeOutcome{Timestamp: t0, Success: ok})
		if step.Transition != want[i] {
			t.Fatalf("probe %d: want %v got %v", i, want[i], step.Transition)
		}
		if (step.Event != nil) == ok {
			t.Fatalf("probe %d: event presence should match failure", i)
		}
		if step.Transition == Recovery && step.RecoveredAfter != 2 {
			t.Fatalf("want recovery after 2, got %d", step.RecoveredAfter)
		}
	}
}

func TestApply_IsPure(t *testing.T) {
	before := domain.Statistics{TotalProbes: 3, FailedProbes: 1, CurrentConsecutiveFailures: 1, MaxConsecutiveFailures: 1}
	after, _ := Apply(before, domain.ProbeOutcome{Success: false})
	if before.TotalProbes != 3 || before.CurrentConsecutiveFailures != 1 {
		t.Fatalf("input mutated: %+v", before)
	}
	if after.TotalProbes != 4 || after.CurrentConsecutiveFailures != 2 || after.MaxConsecutiveFailures != 2 {
		t.Fatalf("unexpected result: %+v", after)
	}
}

func TestTracker_RandomSequencesHoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := rng.Intn(300)
		seq := make([]bool, n)
		for i := range seq {
			seq[i] = rng.Float64() < 0.7
		}

		tr := NewTracker(t0)
		for i, ok := range seq {
			tr.Record(domain.ProbeOutcome{Timestamp: t0.Add(time.Duration(i) * time.Second), Success: ok})
			s := tr.Stats()
			if s.FailedProbes > s.TotalProbes || s.MaxConsecutiveFailures < s.CurrentConsecutiveFailures {
				t.Fatalf("invariant broken at %d: %+v", i, s)
			}
			if int64(len(tr.Events())) != s.FailedProbes {
				t.Fatalf("log length %d != failed %d", len(tr.Events()), s.FailedProbes)
			}
		}

		var failed, longest, run int64
		var wantIdx []int64
		for _, ok := range seq {
			if ok {
				run = 0
				continue
			}
			failed++
			run++
			wantIdx = append(wantIdx, run)
			if run > longest {
				longest = run
			}
		}
		s := tr.Stats()
		if s.TotalProbes != int64(n) || s.FailedProbes != failed || s.MaxConsecutiveFailures != longest {
			t.Fatalf("round %d: stats %+v, want total=%d failed=%d max=%d", round, s, n, failed, longest)
		}
		if got := indexes(tr.Events()); len(wantIdx) > 0 && !reflect.DeepEqual(got, wantIdx) {
			t.Fatalf("round %d: indexes %v want %v", round, got, wantIdx)
		}
	}
}

func TestTracker_EventsSnapshotIsStable(t *testing.T) {
	tr := NewTracker(t0)
	feed(tr, []bool{false, false})
	snap := tr.Events()
	feed(tr, []bool{false, false, false})

	if len(snap) != 2 || cap(snap) != 2 {
		t.Fatalf("snapshot should stay clipped, len=%d cap=%d", len(snap), cap(snap))
	}
	grown := append(snap, domain.OutageEvent{ConsecutiveIndex: 99})
	if tr.Events()[2].ConsecutiveIndex == 99 {
		t.Fatalf("append on snapshot leaked into tracker log")
	}
	_ = grown
}
