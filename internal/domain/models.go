package domain

import "time"

// ProbeOutcome is the result of one tick. It is consumed immediately by the
// outage tracker and never retained.
type ProbeOutcome struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// OutageEvent is written once per failed probe. ConsecutiveIndex is the
// position of the failure inside its current run, starting at 1.
type OutageEvent struct {
	StartTimestamp   time.Time `json:"start_timestamp"`
	ConsecutiveIndex int64     `json:"consecutive_index"`
}

// RunStart reports whether the event opened a new outage run.
func (e OutageEvent) RunStart() bool { return e.ConsecutiveIndex == 1 }

// Statistics are the running counters of a monitoring session.
type Statistics struct {
	TotalProbes                int64     `json:"total_probes"`
	FailedProbes               int64     `json:"failed_probes"`
	CurrentConsecutiveFailures int64     `json:"current_consecutive_failures"`
	MaxConsecutiveFailures     int64     `json:"max_consecutive_failures"`
	StartedAt                  time.Time `json:"started_at"`
}

// SuccessRate returns the fraction of successful probes. ok is false when no
// probe has been recorded yet.
func (s Statistics) SuccessRate() (rate float64, ok bool) {
	if s.TotalProbes <= 0 {
		return 0, false
	}
	return float64(s.TotalProbes-s.FailedProbes) / float64(s.TotalProbes), true
}

// LossRate is 1 - SuccessRate with the same guard.
func (s Statistics) LossRate() (rate float64, ok bool) {
	if s.TotalProbes <= 0 {
		return 0, false
	}
	return float64(s.FailedProbes) / float64(s.TotalProbes), true
}
