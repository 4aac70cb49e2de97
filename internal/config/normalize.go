package config

import (
	"strings"

	"github.com/hamed0406/pingmonitor/internal/probe"
)

// Normalize canonicalizes free-form fields in place. Call it after the last
// override is applied.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Target = strings.TrimSpace(cfg.Target)
	cfg.Probe = strings.ToLower(strings.TrimSpace(cfg.Probe))
	if cfg.Probe == "" {
		cfg.Probe = probe.KindAuto
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
}
