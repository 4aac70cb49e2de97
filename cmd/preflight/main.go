// cmd/preflight/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/pingmonitor/internal/config"
	"github.com/hamed0406/pingmonitor/internal/probe"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	envFile := flag.String("env-file", ".env", "dotenv file")
	flag.Parse()
	os.Exit(preflight(*configPath, *envFile, os.Stdout, os.Stderr))
}

func preflight(configPath, envFile string, stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	if err := config.LoadDotEnv(envFile); err != nil {
		fail("env file " + envFile + ": " + err.Error())
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fail(err.Error())
		return 1
	}
	config.Normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		for _, e := range unwrapAll(err) {
			fail(e.Error())
		}
		return 1
	}
	ok(fmt.Sprintf("config valid: target=%s interval=%s timeout=%s duration=%s probe=%s",
		cfg.Target, cfg.Interval, cfg.Timeout, config.FormatDuration(cfg.Duration), cfg.Probe))

	dns := probe.CheckDNS(context.Background(), cfg.Target)
	switch {
	case dns.Fatal():
		fail(fmt.Sprintf("target %s does not resolve (%s %s)", dns.Domain, dns.Class, dns.ResolverError))
	case dns.Class == probe.DNSServFail:
		warn(fmt.Sprintf("DNS lookup for %s failed (%s); the monitor will start and count drops", dns.Domain, dns.ResolverError))
	default:
		ok(fmt.Sprintf("DNS %s: %s", dns.Domain, dns.Class))
	}

	if cfg.StatusAddr == "" {
		warn("PINGMON_STATUS_ADDR is empty; the status API is disabled.")
	} else {
		ok("PINGMON_STATUS_ADDR=" + cfg.StatusAddr)
		if len(cfg.AdminAPIKeys) == 0 {
			warn("ADMIN_API_KEYS is empty; POST /api/stop is refused.")
		}
		if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
			warn("PUBLIC_API_KEYS is empty; read routes are open.")
		}
		if len(cfg.AllowedOrigins) == 0 {
			warn("ALLOWED_ORIGINS empty; browsers from any origin may only read.")
		} else {
			ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
		}
	}

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty; outage alerts are disabled.")
	} else {
		ok("Slack alerts enabled")
	}

	if failed {
		return 1
	}
	ok("preflight passed")
	return 0
}

// unwrapAll flattens joined errors so each field problem prints on its own line.
func unwrapAll(err error) []error {
	var leaves []error
	var walk func(error)
	walk = func(e error) {
		if multi, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range multi.Unwrap() {
				walk(inner)
			}
			return
		}
		if parts := multierr.Errors(e); len(parts) > 1 {
			for _, inner := range parts {
				walk(inner)
			}
			return
		}
		if errors.Is(config.ErrInvalidConfig, e) {
			return
		}
		leaves = append(leaves, e)
	}
	walk(err)
	return leaves
}
