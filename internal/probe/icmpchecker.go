package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-ping/ping"
)

// ICMPChecker sends a single echo request with go-ping. Unprivileged mode
// uses UDP "ping sockets" (Linux needs net.ipv4.ping_group_range).
type ICMPChecker struct {
	Privileged bool
	// Timeout applies when the context carries no deadline.
	Timeout time.Duration
}

func NewICMPChecker(privileged bool, timeout time.Duration) *ICMPChecker {
	return &ICMPChecker{Privileged: privileged, Timeout: timeout}
}

func (c *ICMPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	pinger, err := ping.NewPinger(target)
	if err != nil {
		var de *net.DNSError
		if errors.As(err, &de) {
			return CheckResult{Name: "ICMP", Outcome: Unreachable, Message: "resolve: " + err.Error()}
		}
		return CheckResult{Name: "ICMP", Outcome: Faulted, Message: err.Error(), Err: err}
	}

	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return CheckResult{Name: "ICMP", Outcome: TimedOut, Message: "no time left", Err: context.DeadlineExceeded}
	}

	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(c.Privileged)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-stop:
		}
	}()

	if err := pinger.Run(); err != nil {
		return CheckResult{Name: "ICMP", Outcome: Faulted, Message: err.Error(), Err: err}
	}

	stats := pinger.Statistics()
	latency := time.Since(start).Seconds() * 1000
	if stats.PacketsRecv > 0 {
		return CheckResult{
			Name:      "ICMP",
			Outcome:   Reachable,
			Message:   "echo reply",
			LatencyMS: float64(stats.AvgRtt) / float64(time.Millisecond),
		}
	}
	if ctx.Err() != nil {
		return CheckResult{Name: "ICMP", Outcome: TimedOut, Message: "deadline exceeded", LatencyMS: latency, Err: ctx.Err()}
	}
	return CheckResult{Name: "ICMP", Outcome: Unreachable, Message: "no echo reply", LatencyMS: latency}
}
