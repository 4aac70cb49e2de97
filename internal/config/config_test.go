package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_EnvParsesAndDefaults(t *testing.T) {
	t.Setenv("PINGMON_STATUS_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("PUBLIC_API_KEYS", "pub_a, pub_b")
	t.Setenv("ADMIN_API_KEYS", "adm_x")
	t.Setenv("RETRY_ATTEMPTS", "3")
	t.Setenv("RETRY_BACKOFF_MS", "250")
	t.Setenv("PINGMON_TARGET", "1.1.1.1")
	t.Setenv("PINGMON_INTERVAL", "2s")
	t.Setenv("PINGMON_DURATION", "1h 30m")
	t.Setenv("PUBLIC_RPM", "111")
	t.Setenv("ADMIN_BURST", "44")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StatusAddr != ":9090" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if len(cfg.PublicAPIKeys) != 2 || cfg.PublicAPIKeys[1] != "pub_b" {
		t.Fatalf("public keys wrong: %+v", cfg.PublicAPIKeys)
	}
	if len(cfg.AdminAPIKeys) != 1 || cfg.AdminAPIKeys[0] != "adm_x" {
		t.Fatalf("admin keys wrong: %+v", cfg.AdminAPIKeys)
	}
	if cfg.RetryAttempts != 3 || cfg.RetryBackoff != 250*time.Millisecond {
		t.Fatalf("retry wrong: %d %s", cfg.RetryAttempts, cfg.RetryBackoff)
	}
	if cfg.Target != "1.1.1.1" || cfg.Interval != 2*time.Second || cfg.Duration != 90*time.Minute {
		t.Fatalf("monitor fields wrong: %+v", cfg)
	}
	if cfg.PublicRPM != 111 || cfg.AdminBurst != 44 || cfg.PublicBurst != Defaults().PublicBurst {
		t.Fatalf("rate limits wrong: %+v", cfg)
	}
	if cfg.Timeout != Defaults().Timeout {
		t.Fatalf("unset timeout should keep default, got %s", cfg.Timeout)
	}
}

func TestLoad_EnvCollectsBadValues(t *testing.T) {
	t.Setenv("PINGMON_INTERVAL", "soon")
	t.Setenv("RETRY_ATTEMPTS", "many")
	t.Setenv("PINGMON_PRIVILEGED", "maybe")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"PINGMON_INTERVAL", "RETRY_ATTEMPTS", "PINGMON_PRIVILEGED"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not mention %s", err, key)
		}
	}
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pingmonitor.yaml")
	body := `
target: example.com
interval: 5s
timeout: 2s
duration: 1d 4h
probe: exec
retry:
  attempts: 2
log:
  level: debug
api:
  addr: ":8081"
  public_keys: [a, b]
alerts:
  cooldown: 10 minutes
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PINGMON_INTERVAL", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "example.com" || cfg.Probe != "exec" || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Interval != 3*time.Second {
		t.Fatalf("env should override file interval, got %s", cfg.Interval)
	}
	if cfg.Timeout != 2*time.Second || cfg.Duration != 28*time.Hour {
		t.Fatalf("durations wrong: timeout=%s duration=%s", cfg.Timeout, cfg.Duration)
	}
	if cfg.RetryAttempts != 2 || cfg.StatusAddr != ":8081" || len(cfg.PublicAPIKeys) != 2 {
		t.Fatalf("nested values wrong: %+v", cfg)
	}
	if cfg.AlertCooldown != 10*time.Minute {
		t.Fatalf("cooldown = %s", cfg.AlertCooldown)
	}
	if cfg.DropLog != Defaults().DropLog {
		t.Fatalf("absent key should keep default, got %q", cfg.DropLog)
	}
}

func TestLoad_RejectsUnknownKeysAndBadDurations(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown":  "targte: example.com\n",
		"duration": "interval: later\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != Defaults().Target {
		t.Fatalf("target = %q", cfg.Target)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PINGMON_TARGET=9.9.9.9\nPINGMON_PROBE=icmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PINGMON_TARGET", "")
	os.Unsetenv("PINGMON_TARGET")
	t.Setenv("PINGMON_PROBE", "exec")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PINGMON_TARGET") })

	if got := os.Getenv("PINGMON_TARGET"); got != "9.9.9.9" {
		t.Fatalf("PINGMON_TARGET = %q", got)
	}
	if got := os.Getenv("PINGMON_PROBE"); got != "exec" {
		t.Fatalf("existing env must win, got %q", got)
	}
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Target = ""
	cfg.Interval = time.Second
	cfg.Timeout = 2 * time.Second
	cfg.Probe = "carrier-pigeon"
	cfg.RetryAttempts = 0
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
	for _, field := range []string{"target", "timeout", "probe", "retry.attempts", "log.level"} {
		if !strings.Contains(err.Error(), field+":") {
			t.Fatalf("error %q missing %s", err, field)
		}
	}
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected a FieldError inside %v", err)
	}
}

func TestValidate_HTTPProbeNeedsURL(t *testing.T) {
	for _, kind := range []string{"http", "HTTP", " Http "} {
		cfg := Defaults()
		cfg.Probe = kind
		cfg.Target = "example.com"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("kind %q: want ErrInvalidConfig, got %v", kind, err)
		}
		cfg.Target = "https://example.com/health"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("kind %q: unexpected: %v", kind, err)
		}
		if cfg.Probe != kind {
			t.Fatalf("Validate must not modify its receiver, kind = %q", cfg.Probe)
		}
	}
}

func TestNormalize(t *testing.T) {
	cfg := Defaults()
	cfg.Target = "  example.com\t"
	cfg.Probe = " EXEC "
	cfg.LogLevel = "Debug "
	Normalize(&cfg)
	if cfg.Target != "example.com" || cfg.Probe != "exec" || cfg.LogLevel != "debug" {
		t.Fatalf("not normalized: target=%q probe=%q level=%q", cfg.Target, cfg.Probe, cfg.LogLevel)
	}
	cfg.Probe = ""
	Normalize(&cfg)
	if cfg.Probe != "auto" {
		t.Fatalf("empty kind should become auto, got %q", cfg.Probe)
	}
	Normalize(nil)
}

func TestValidate_UnboundedDurationIsFine(t *testing.T) {
	cfg := Defaults()
	cfg.Duration = 0
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.Duration = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative duration should fail")
	}
}
