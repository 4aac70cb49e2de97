package probe

import (
	"context"
	"fmt"
	"time"
)

// RetryChecker gives a failing target more chances inside one tick. A retry
// is skipped when the context deadline would expire during the backoff, and
// faults are returned at once.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := max(r.Attempts, 1)
	var last CheckResult
	tried := 0
	for tried < attempts {
		last = r.Inner.Check(ctx, target)
		tried++
		if last.Success() || last.Outcome == Faulted || tried == attempts {
			break
		}
		if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= r.Backoff {
			break
		}
		if !wait(ctx, r.Backoff) {
			break
		}
	}
	if tried > 1 && !last.Success() {
		last.Message = fmt.Sprintf("%s (after %d attempts)", last.Message, tried)
	}
	return last
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
