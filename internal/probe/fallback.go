package probe

import "context"

// FallbackChecker tries each checker in order and only moves on when the
// previous one faulted. Reachable, Unreachable and TimedOut are final.
type FallbackChecker struct {
	Checkers []Checker
}

func NewFallbackChecker(checkers ...Checker) *FallbackChecker {
	return &FallbackChecker{Checkers: checkers}
}

func (f *FallbackChecker) Check(ctx context.Context, target string) CheckResult {
	last := CheckResult{Name: "fallback", Outcome: Faulted, Message: "no checkers configured"}
	for _, c := range f.Checkers {
		if c == nil {
			continue
		}
		last = c.Check(ctx, target)
		if last.Outcome != Faulted {
			return last
		}
		if ctx.Err() != nil {
			break
		}
	}
	return last
}
