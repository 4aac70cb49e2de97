package probe

import "context"

// Outcome classifies a single reachability check.
type Outcome int

const (
	Reachable Outcome = iota
	Unreachable
	TimedOut
	// Faulted means the probe mechanism itself broke (missing executable,
	// socket permission, panic), as opposed to the target being down.
	Faulted
)

func (o Outcome) String() string {
	switch o {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case TimedOut:
		return "timed_out"
	case Faulted:
		return "faulted"
	}
	return "unknown"
}

// CheckResult is the unified result of a single probe.
//
// Err is only set for TimedOut and Faulted outcomes and is meant for logs.
type CheckResult struct {
	Name      string
	Outcome   Outcome
	LatencyMS float64
	Message   string
	Err       error
}

func (r CheckResult) Success() bool { return r.Outcome == Reachable }

// Checker performs a single check for a given target.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context, target string) CheckResult

func (f CheckerFunc) Check(ctx context.Context, target string) CheckResult { return f(ctx, target) }
