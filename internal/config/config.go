package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Target        string        // host, IP or http(s) URL
	Interval      time.Duration // fixed tick cadence
	Timeout       time.Duration // per-probe bound, < Interval
	Duration      time.Duration // 0 means run until stopped
	Probe         string        // auto | icmp | exec | http
	Privileged    bool          // raw ICMP sockets instead of UDP ping sockets
	RetryAttempts int           // attempts per tick, inside Timeout
	RetryBackoff  time.Duration // backoff between attempts
	StatusEvery   int64         // status line every n probes, <0 disables

	LogDir     string // logs directory
	LogLevel   string
	Console    bool // mirror logs to stderr
	DropLog    string
	HTMLReport string
	TextReport string

	StatusAddr     string // status API bind address; empty disables the API
	AllowedOrigins []string
	PublicAPIKeys  []string
	AdminAPIKeys   []string
	PublicRPM      int
	PublicBurst    int
	AdminRPM       int
	AdminBurst     int

	SlackWebhook    string
	AlertCooldown   time.Duration
	AlertOnRecovery bool
	AlertPoll       time.Duration
}

func Defaults() Config {
	return Config{
		Target:        "8.8.8.8",
		Interval:      time.Second,
		Timeout:       750 * time.Millisecond,
		Probe:         "auto",
		RetryAttempts: 1,
		RetryBackoff:  100 * time.Millisecond,
		StatusEvery:   60,

		LogDir:     "logs",
		LogLevel:   "info",
		Console:    true,
		DropLog:    "ping_drops.log",
		HTMLReport: "ping_report.html",
		TextReport: "ping_report.txt",

		PublicRPM:   120,
		PublicBurst: 60,
		AdminRPM:    30,
		AdminBurst:  10,

		AlertCooldown:   15 * time.Minute,
		AlertOnRecovery: true,
		AlertPoll:       5 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order. An empty path skips the file. It does not
// validate.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	err := applyEnv(&cfg)
	return cfg, err
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs error
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := ParseDuration(v)
			if err != nil {
				errs = multierr.Append(errs, envError(key, err))
				return
			}
			*dst = d
		}
	}
	millis := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			ms, err := strconv.Atoi(v)
			if err != nil || ms < 0 {
				errs = multierr.Append(errs, envError(key, errors.New("want non-negative milliseconds")))
				return
			}
			*dst = time.Duration(ms) * time.Millisecond
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = multierr.Append(errs, envError(key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = multierr.Append(errs, envError(key, err))
				return
			}
			*dst = b
		}
	}
	list := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}

	str("PINGMON_TARGET", &cfg.Target)
	dur("PINGMON_INTERVAL", &cfg.Interval)
	dur("PINGMON_TIMEOUT", &cfg.Timeout)
	dur("PINGMON_DURATION", &cfg.Duration)
	str("PINGMON_PROBE", &cfg.Probe)
	flag("PINGMON_PRIVILEGED", &cfg.Privileged)
	num("RETRY_ATTEMPTS", &cfg.RetryAttempts)
	millis("RETRY_BACKOFF_MS", &cfg.RetryBackoff)
	if v := os.Getenv("PINGMON_STATUS_EVERY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = multierr.Append(errs, envError("PINGMON_STATUS_EVERY", err))
		} else {
			cfg.StatusEvery = n
		}
	}

	str("LOG_DIR", &cfg.LogDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	flag("LOG_CONSOLE", &cfg.Console)
	str("PINGMON_DROP_LOG", &cfg.DropLog)
	str("PINGMON_HTML_REPORT", &cfg.HTMLReport)
	str("PINGMON_TEXT_REPORT", &cfg.TextReport)

	str("PINGMON_STATUS_ADDR", &cfg.StatusAddr)
	list("ALLOWED_ORIGINS", &cfg.AllowedOrigins)
	list("PUBLIC_API_KEYS", &cfg.PublicAPIKeys)
	list("ADMIN_API_KEYS", &cfg.AdminAPIKeys)
	num("PUBLIC_RPM", &cfg.PublicRPM)
	num("PUBLIC_BURST", &cfg.PublicBurst)
	num("ADMIN_RPM", &cfg.AdminRPM)
	num("ADMIN_BURST", &cfg.AdminBurst)

	str("SLACK_WEBHOOK_URL", &cfg.SlackWebhook)
	dur("ALERT_COOLDOWN", &cfg.AlertCooldown)
	flag("ALERT_ON_RECOVERY", &cfg.AlertOnRecovery)
	dur("ALERT_POLL", &cfg.AlertPoll)

	return errs
}

func envError(key string, err error) error {
	return &FieldError{Field: key, Err: err}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
