package probe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

const userAgent = "pingmonitor/1"

// HTTPChecker treats an http(s) target as reachable when the server answers
// below 500. Redirects are not followed: any answer proves the path is up.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Check sends HEAD and retries once with GET when the server refuses HEAD.
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	resp, err := h.do(ctx, http.MethodHead, target)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		resp.Body.Close()
		resp, err = h.do(ctx, http.MethodGet, target)
	}
	latency := float64(time.Since(start).Microseconds()) / 1000

	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return CheckResult{Name: "HTTP", Outcome: Faulted, Message: err.Error(), Err: err}
	case err != nil:
		out := Unreachable
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			out = TimedOut
		}
		return CheckResult{Name: "HTTP", Outcome: out, Message: err.Error(), LatencyMS: latency, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	resp.Body.Close()

	out := Reachable
	if resp.StatusCode >= 500 {
		out = Unreachable
	}
	return CheckResult{Name: "HTTP", Outcome: out, Message: resp.Status, LatencyMS: latency}
}

// requestError marks a target that cannot even form a request.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func (h *HTTPChecker) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, &requestError{err}
	}
	req.Header.Set("User-Agent", userAgent)
	return h.Client.Do(req)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
