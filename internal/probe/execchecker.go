package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// ExecChecker shells out to the platform ping executable, one echo request
// per check. Command defaults to "ping".
type ExecChecker struct {
	Command string
	GOOS    string
	// Wait is the reply wait passed to the executable.
	Wait time.Duration
}

func NewExecChecker(wait time.Duration) *ExecChecker {
	return &ExecChecker{Command: "ping", GOOS: runtime.GOOS, Wait: wait}
}

// Args returns the arguments for one echo request on the given platform.
func Args(goos string, wait time.Duration, target string) []string {
	ms := wait.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	switch goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), target}
	case "darwin", "freebsd", "netbsd", "openbsd":
		return []string{"-c", "1", "-W", strconv.FormatInt(ms, 10), target}
	default:
		// iputils 20190709+ accepts fractional seconds
		secs := strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64)
		return []string{"-c", "1", "-W", secs, target}
	}
}

// execHeadroom is left between the executable's own reply wait and the
// context deadline, so a lost reply ends as a non-zero exit, not a kill.
const execHeadroom = 100 * time.Millisecond

// replyWait shrinks wait to fit inside the context deadline.
func replyWait(ctx context.Context, wait time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl) - execHeadroom; left < wait {
			wait = left
		}
	}
	return max(wait, 10*time.Millisecond)
}

func (e *ExecChecker) Check(ctx context.Context, target string) CheckResult {
	cmdName := e.Command
	if cmdName == "" {
		cmdName = "ping"
	}
	goos := e.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, cmdName, Args(goos, replyWait(ctx, e.Wait), target)...)
	err := cmd.Run()
	latency := time.Since(start).Seconds() * 1000
	if err == nil {
		return CheckResult{Name: "exec", Outcome: Reachable, Message: "exit 0", LatencyMS: latency}
	}

	if ctx.Err() != nil {
		return CheckResult{Name: "exec", Outcome: TimedOut, Message: "deadline exceeded", LatencyMS: latency, Err: ctx.Err()}
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return CheckResult{Name: "exec", Outcome: Unreachable, Message: fmt.Sprintf("exit %d", ee.ExitCode()), LatencyMS: latency}
	}
	// exec.ErrNotFound, permission problems and the like
	return CheckResult{Name: "exec", Outcome: Faulted, Message: err.Error(), LatencyMS: latency, Err: err}
}
