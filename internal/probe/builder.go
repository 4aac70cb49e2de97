package probe

import (
	"fmt"
	"strings"
	"time"
)

const (
	KindAuto = "auto"
	KindICMP = "icmp"
	KindExec = "exec"
	KindHTTP = "http"
)

// Options configure Build.
type Options struct {
	Kind          string
	Privileged    bool
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Build assembles the checker for a probe kind. "auto" tries go-ping first
// and falls back to the system executable when the ICMP socket faults.
func Build(opts Options) (Checker, error) {
	var c Checker
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindAuto:
		c = NewFallbackChecker(
			NewICMPChecker(opts.Privileged, opts.Timeout),
			NewExecChecker(opts.Timeout),
		)
	case KindICMP:
		c = NewICMPChecker(opts.Privileged, opts.Timeout)
	case KindExec:
		c = NewExecChecker(opts.Timeout)
	case KindHTTP:
		c = NewHTTPChecker(opts.Timeout)
	default:
		return nil, fmt.Errorf("probe: unknown kind %q", opts.Kind)
	}
	if opts.RetryAttempts > 1 {
		c = &RetryChecker{Inner: c, Attempts: opts.RetryAttempts, Backoff: opts.RetryBackoff}
	}
	return c, nil
}

// ValidKind reports whether Build accepts kind.
func ValidKind(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindAuto, KindICMP, KindExec, KindHTTP:
		return true
	}
	return false
}
