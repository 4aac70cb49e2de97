package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPart = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-zµμ]*)`)

var unitScale = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond, "µs": time.Microsecond, "μs": time.Microsecond,
	"ms": time.Millisecond,
	"":   time.Second, "s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

var unboundedWords = map[string]bool{
	"": true, "0": true, "unbounded": true, "forever": true, "none": true, "infinite": true,
}

var ErrBadDuration = errors.New("bad duration")

// ParseDuration accepts Go durations ("1h30m") and the free-form spelling
// operators type ("2h 30m", "1 day 4 hours", "90"). A bare number is seconds.
// Words meaning "no limit" return 0.
func ParseDuration(s string) (time.Duration, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if unboundedWords[in] {
		return 0, nil
	}
	if strings.HasPrefix(in, "-") {
		return 0, fmt.Errorf("%w %q: must not be negative", ErrBadDuration, s)
	}
	if d, err := time.ParseDuration(in); err == nil {
		return d, nil
	}

	compact := strings.NewReplacer(",", " ", " and ", " ").Replace(in)
	matches := durationPart.FindAllStringSubmatchIndex(compact, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w %q", ErrBadDuration, s)
	}

	var total time.Duration
	pos := 0
	for _, m := range matches {
		if strings.TrimSpace(compact[pos:m[0]]) != "" {
			return 0, fmt.Errorf("%w %q: unexpected %q", ErrBadDuration, s, compact[pos:m[0]])
		}
		num, unit := compact[m[2]:m[3]], compact[m[4]:m[5]]
		scale, ok := unitScale[unit]
		if !ok {
			return 0, fmt.Errorf("%w %q: unknown unit %q", ErrBadDuration, s, unit)
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("%w %q: %v", ErrBadDuration, s, err)
		}
		total += time.Duration(f * float64(scale))
		pos = m[1]
	}
	if strings.TrimSpace(compact[pos:]) != "" {
		return 0, fmt.Errorf("%w %q: trailing %q", ErrBadDuration, s, compact[pos:])
	}
	return total, nil
}

// FormatDuration renders d so ParseDuration reads it back; 0 is "unbounded".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "unbounded"
	}
	return d.String()
}
