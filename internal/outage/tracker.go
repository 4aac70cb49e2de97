package outage

import (
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
)

// Transition describes what a single outcome did to the outage state.
type Transition int

const (
	Steady Transition = iota
	RunStart
	RunContinuation
	Recovery
)

func (t Transition) String() string {
	switch t {
	case RunStart:
		return "run_start"
	case RunContinuation:
		return "run_continuation"
	case Recovery:
		return "recovery"
	}
	return "steady"
}

// Step is the observable effect of one Apply.
type Step struct {
	Transition Transition
	// Event is set for failed outcomes.
	Event *domain.OutageEvent
	// RecoveredAfter is the length of the run that just ended (Recovery only).
	RecoveredAfter int64
}

// Apply is the pure counter transition for one outcome.
func Apply(s domain.Statistics, o domain.ProbeOutcome) (domain.Statistics, Step) {
	s.TotalProbes++
	if o.Success {
		if s.CurrentConsecutiveFailures == 0 {
			return s, Step{Transition: Steady}
		}
		n := s.CurrentConsecutiveFailures
		s.CurrentConsecutiveFailures = 0
		return s, Step{Transition: Recovery, RecoveredAfter: n}
	}

	s.FailedProbes++
	s.CurrentConsecutiveFailures++
	if s.CurrentConsecutiveFailures > s.MaxConsecutiveFailures {
		s.MaxConsecutiveFailures = s.CurrentConsecutiveFailures
	}
	ev := domain.OutageEvent{
		StartTimestamp:   o.Timestamp,
		ConsecutiveIndex: s.CurrentConsecutiveFailures,
	}
	tr := RunContinuation
	if ev.RunStart() {
		tr = RunStart
	}
	return s, Step{Transition: tr, Event: &ev}
}

// Tracker owns the running statistics and the outage log. It is not safe for
// concurrent use; readers on other goroutines take a Snapshot.
type Tracker struct {
	stats  domain.Statistics
	events []domain.OutageEvent
}

func NewTracker(startedAt time.Time) *Tracker {
	return &Tracker{
		stats:  domain.Statistics{StartedAt: startedAt},
		events: make([]domain.OutageEvent, 0, 64),
	}
}

func (t *Tracker) Record(o domain.ProbeOutcome) Step {
	var step Step
	t.stats, step = Apply(t.stats, o)
	if step.Event != nil {
		t.events = append(t.events, *step.Event)
	}
	return step
}

func (t *Tracker) Stats() domain.Statistics { return t.stats }

// Events returns the outage log clipped to its current length. Entries are
// never rewritten, so the result stays valid while the tracker keeps appending.
func (t *Tracker) Events() []domain.OutageEvent {
	n := len(t.events)
	return t.events[:n:n]
}

// SuccessRate is domain.Statistics.SuccessRate for the current counters.
func (t *Tracker) SuccessRate() (float64, bool) { return t.stats.SuccessRate() }
