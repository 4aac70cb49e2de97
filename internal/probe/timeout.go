package probe

import (
	"context"
	"fmt"
	"time"
)

// TimeoutChecker bounds an inner checker. The inner check runs on its own
// goroutine; if it has not reported when the deadline passes, the result is
// TimedOut and the late result is discarded.
type TimeoutChecker struct {
	Inner   Checker
	Timeout time.Duration
}

func NewTimeoutChecker(inner Checker, timeout time.Duration) *TimeoutChecker {
	return &TimeoutChecker{Inner: inner, Timeout: timeout}
}

func (t *TimeoutChecker) Check(ctx context.Context, target string) CheckResult {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	done := make(chan CheckResult, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- CheckResult{
					Name:    "probe",
					Outcome: Faulted,
					Message: "probe panicked",
					Err:     fmt.Errorf("probe panic: %v", r),
				}
			}
		}()
		done <- t.Inner.Check(ctx, target)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return CheckResult{
			Name:      "probe",
			Outcome:   TimedOut,
			Message:   "deadline exceeded",
			LatencyMS: time.Since(start).Seconds() * 1000,
			Err:       ctx.Err(),
		}
	}
}
