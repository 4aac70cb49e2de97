package domain

import "time"

type RunState string

const (
	StateRunning                RunState = "running"
	StateStoppingByDuration     RunState = "stopping_by_duration"
	StateStoppingByCancellation RunState = "stopping_by_cancellation"
	StateTerminated             RunState = "terminated"
)

type StopReason string

const (
	ReasonNone        StopReason = ""
	ReasonCompleted   StopReason = "Completed Successfully"
	ReasonStopped     StopReason = "Manually Stopped"
	ReasonInterrupted StopReason = "Interrupted"
)

// Snapshot is a read-only view of a session. Outages shares storage with the
// tracker's append-only log but is clipped to its own length, so later
// appends never show through.
type Snapshot struct {
	Target   string        `json:"target"`
	Stats    Statistics    `json:"stats"`
	Outages  []OutageEvent `json:"outages"`
	Elapsed  time.Duration `json:"elapsed"`
	TakenAt  time.Time     `json:"taken_at"`
	Interval time.Duration `json:"interval"`
	// Limit is the configured run duration; zero means unbounded.
	Limit time.Duration `json:"limit"`
	// Remaining is zero for unbounded sessions.
	Remaining time.Duration `json:"remaining"`
	// State is the loop state the snapshot was taken in. Final snapshots carry
	// the stopping state that led to termination.
	State RunState `json:"state"`
	Final bool     `json:"final"`
}

// StopReason classifies how a final snapshot's session ended.
func (s Snapshot) StopReason() StopReason {
	if !s.Final {
		return ReasonNone
	}
	switch s.State {
	case StateStoppingByDuration:
		return ReasonCompleted
	case StateStoppingByCancellation:
		if s.Limit <= 0 {
			return ReasonStopped
		}
		return ReasonInterrupted
	}
	return ReasonNone
}
