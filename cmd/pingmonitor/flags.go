package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/hamed0406/pingmonitor/internal/config"
)

type cliFlags struct {
	fs         *flag.FlagSet
	configPath string
	envFile    string

	target, interval, timeout, duration, probe string
	logDir, logLevel, statusAddr               string
	dropLog, htmlReport, textReport            string
	privileged, quiet                          bool
}

func newFlags(out io.Writer) *cliFlags {
	f := &cliFlags{fs: flag.NewFlagSet("pingmonitor", flag.ContinueOnError)}
	fs := f.fs
	fs.SetOutput(out)
	fs.StringVar(&f.configPath, "config", "", "YAML config file (optional)")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.StringVar(&f.target, "target", "", "host, IP or http(s) URL to probe (default 8.8.8.8)")
	fs.StringVar(&f.interval, "interval", "", "probe interval, e.g. 1s")
	fs.StringVar(&f.timeout, "timeout", "", "per-probe timeout, shorter than the interval")
	fs.StringVar(&f.duration, "duration", "", `how long to run, e.g. "2h 30m" or "1d"; empty or "unbounded" runs until stopped`)
	fs.StringVar(&f.probe, "probe", "", "probe kind: auto, icmp, exec or http")
	fs.BoolVar(&f.privileged, "privileged", false, "use raw ICMP sockets (needs root or CAP_NET_RAW)")
	fs.StringVar(&f.logDir, "log-dir", "", "directory for the rotated JSON log")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&f.quiet, "quiet", false, "do not mirror log lines to stderr")
	fs.StringVar(&f.statusAddr, "status-addr", "", "serve the status API on this address, e.g. :8080")
	fs.StringVar(&f.dropLog, "drop-log", "", "drop log path")
	fs.StringVar(&f.htmlReport, "html-report", "", "HTML report path")
	fs.StringVar(&f.textReport, "text-report", "", "text report path")
	return f
}

func (f *cliFlags) parse(args []string) error { return f.fs.Parse(args) }

// apply overlays only the flags that were given on the command line.
func (f *cliFlags) apply(cfg *config.Config) error {
	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "target":
			cfg.Target = f.target
		case "interval":
			err = parseInto(&cfg.Interval, "interval", f.interval)
		case "timeout":
			err = parseInto(&cfg.Timeout, "timeout", f.timeout)
		case "duration":
			err = parseInto(&cfg.Duration, "duration", f.duration)
		case "probe":
			cfg.Probe = f.probe
		case "privileged":
			cfg.Privileged = f.privileged
		case "log-dir":
			cfg.LogDir = f.logDir
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "quiet":
			cfg.Console = !f.quiet
		case "status-addr":
			cfg.StatusAddr = f.statusAddr
		case "drop-log":
			cfg.DropLog = f.dropLog
		case "html-report":
			cfg.HTMLReport = f.htmlReport
		case "text-report":
			cfg.TextReport = f.textReport
		}
	})
	return err
}

func parseInto(dst *time.Duration, name, raw string) error {
	d, err := config.ParseDuration(raw)
	if err != nil {
		return &config.FieldError{Field: "-" + name, Err: err}
	}
	*dst = d
	return nil
}

// loadConfig resolves the full precedence chain: defaults, YAML file,
// .env, environment, flags.
func (f *cliFlags) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return config.Config{}, fmt.Errorf("%w: env file: %w", config.ErrInvalidConfig, err)
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	if err := f.apply(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	config.Normalize(&cfg)
	return cfg, cfg.Validate()
}
