package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hamed0406/pingmonitor/internal/probe"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field, format string, args ...any) error {
	return &FieldError{Field: field, Err: fmt.Errorf(format, args...)}
}

// Validate reports every problem at once. The returned error matches
// ErrInvalidConfig and wraps one FieldError per problem. It checks a
// normalized copy, so c itself is left as is.
func (c Config) Validate() error {
	Normalize(&c)
	var errs error
	add := func(err error) { errs = multierr.Append(errs, err) }

	target := c.Target
	switch {
	case target == "":
		add(fieldErr("target", "must not be empty"))
	case strings.ContainsAny(target, " \t"):
		add(fieldErr("target", "must not contain whitespace"))
	case probe.HostOf(target) == "":
		add(fieldErr("target", "no host in %q", target))
	}
	if c.Probe == probe.KindHTTP {
		if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			add(fieldErr("target", "probe http needs an http(s) URL, got %q", target))
		}
	}
	if !probe.ValidKind(c.Probe) {
		add(fieldErr("probe", "unknown kind %q", c.Probe))
	}

	if c.Interval <= 0 {
		add(fieldErr("interval", "must be positive, got %s", c.Interval))
	}
	if c.Timeout <= 0 {
		add(fieldErr("timeout", "must be positive, got %s", c.Timeout))
	} else if c.Interval > 0 && c.Timeout >= c.Interval {
		add(fieldErr("timeout", "%s must be shorter than interval %s", c.Timeout, c.Interval))
	}
	if c.Duration < 0 {
		add(fieldErr("duration", "must not be negative"))
	}
	if c.RetryAttempts < 1 {
		add(fieldErr("retry.attempts", "must be at least 1, got %d", c.RetryAttempts))
	}
	if c.RetryBackoff < 0 {
		add(fieldErr("retry.backoff", "must not be negative"))
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		add(fieldErr("log.level", "%v", err))
	}
	for name, p := range map[string]string{
		"output.drop_log":    c.DropLog,
		"output.html_report": c.HTMLReport,
		"output.text_report": c.TextReport,
	} {
		if strings.TrimSpace(p) == "" {
			add(fieldErr(name, "must not be empty"))
		}
	}

	for _, k := range append(append([]string{}, c.PublicAPIKeys...), c.AdminAPIKeys...) {
		if strings.ContainsAny(k, " \t,") {
			add(fieldErr("api.keys", "key contains whitespace or comma"))
			break
		}
	}
	for name, v := range map[string]int{
		"api.public_rpm": c.PublicRPM, "api.public_burst": c.PublicBurst,
		"api.admin_rpm": c.AdminRPM, "api.admin_burst": c.AdminBurst,
	} {
		if v < 0 {
			add(fieldErr(name, "must not be negative"))
		}
	}

	if c.SlackWebhook != "" {
		if u, err := url.Parse(c.SlackWebhook); err != nil || u.Scheme != "https" {
			add(fieldErr("alerts.slack_webhook", "must be an https URL"))
		}
	}
	if c.AlertCooldown < 0 {
		add(fieldErr("alerts.cooldown", "must not be negative"))
	}
	if c.AlertPoll <= 0 {
		add(fieldErr("alerts.poll", "must be positive"))
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}
