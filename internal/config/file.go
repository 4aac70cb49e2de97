package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a YAML scalar parsed with ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// fileConfig mirrors Config with pointers so absent keys keep the
// lower-precedence value.
type fileConfig struct {
	Target      *string   `yaml:"target"`
	Interval    *Duration `yaml:"interval"`
	Timeout     *Duration `yaml:"timeout"`
	Duration    *Duration `yaml:"duration"`
	Probe       *string   `yaml:"probe"`
	Privileged  *bool     `yaml:"privileged"`
	StatusEvery *int64    `yaml:"status_every"`
	Retry       struct {
		Attempts *int      `yaml:"attempts"`
		Backoff  *Duration `yaml:"backoff"`
	} `yaml:"retry"`
	Log struct {
		Dir     *string `yaml:"dir"`
		Level   *string `yaml:"level"`
		Console *bool   `yaml:"console"`
	} `yaml:"log"`
	Output struct {
		DropLog    *string `yaml:"drop_log"`
		HTMLReport *string `yaml:"html_report"`
		TextReport *string `yaml:"text_report"`
	} `yaml:"output"`
	API struct {
		Addr           *string  `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		PublicKeys     []string `yaml:"public_keys"`
		AdminKeys      []string `yaml:"admin_keys"`
		PublicRPM      *int     `yaml:"public_rpm"`
		PublicBurst    *int     `yaml:"public_burst"`
		AdminRPM       *int     `yaml:"admin_rpm"`
		AdminBurst     *int     `yaml:"admin_burst"`
	} `yaml:"api"`
	Alerts struct {
		SlackWebhook *string   `yaml:"slack_webhook"`
		Cooldown     *Duration `yaml:"cooldown"`
		OnRecovery   *bool     `yaml:"on_recovery"`
		Poll         *Duration `yaml:"poll"`
	} `yaml:"alerts"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return &FieldError{Field: path, Err: err}
	}
	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	set(&cfg.Target, fc.Target)
	setDur(&cfg.Interval, fc.Interval)
	setDur(&cfg.Timeout, fc.Timeout)
	setDur(&cfg.Duration, fc.Duration)
	set(&cfg.Probe, fc.Probe)
	set(&cfg.Privileged, fc.Privileged)
	set(&cfg.StatusEvery, fc.StatusEvery)
	set(&cfg.RetryAttempts, fc.Retry.Attempts)
	setDur(&cfg.RetryBackoff, fc.Retry.Backoff)

	set(&cfg.LogDir, fc.Log.Dir)
	set(&cfg.LogLevel, fc.Log.Level)
	set(&cfg.Console, fc.Log.Console)
	set(&cfg.DropLog, fc.Output.DropLog)
	set(&cfg.HTMLReport, fc.Output.HTMLReport)
	set(&cfg.TextReport, fc.Output.TextReport)

	set(&cfg.StatusAddr, fc.API.Addr)
	if fc.API.AllowedOrigins != nil {
		cfg.AllowedOrigins = fc.API.AllowedOrigins
	}
	if fc.API.PublicKeys != nil {
		cfg.PublicAPIKeys = fc.API.PublicKeys
	}
	if fc.API.AdminKeys != nil {
		cfg.AdminAPIKeys = fc.API.AdminKeys
	}
	set(&cfg.PublicRPM, fc.API.PublicRPM)
	set(&cfg.PublicBurst, fc.API.PublicBurst)
	set(&cfg.AdminRPM, fc.API.AdminRPM)
	set(&cfg.AdminBurst, fc.API.AdminBurst)

	set(&cfg.SlackWebhook, fc.Alerts.SlackWebhook)
	setDur(&cfg.AlertCooldown, fc.Alerts.Cooldown)
	set(&cfg.AlertOnRecovery, fc.Alerts.OnRecovery)
	setDur(&cfg.AlertPoll, fc.Alerts.Poll)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDur(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = time.Duration(*v)
	}
}
