// Package notify delivers outage alerts.
package notify

import (
	"context"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Severity string

const (
	SeverityDown      Severity = "down"
	SeverityRecovered Severity = "recovered"
)

type Field struct {
	Name  string
	Value string
}

// Message is one alert about a monitored target.
type Message struct {
	Severity Severity
	Target   string
	Title    string
	Fields   []Field
	At       time.Time
}

// Text renders the fields as "Name: Value" lines.
func (m Message) Text() string {
	var b strings.Builder
	for i, f := range m.Fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Name + ": " + f.Value)
	}
	return b.String()
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Multi fans out to every notifier and combines their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, msg))
	}
	return err
}

// Log writes alerts to the structured log, so they are kept even without a
// chat integration.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(_ context.Context, msg Message) error {
	fields := []zap.Field{
		zap.String("severity", string(msg.Severity)),
		zap.String("target", msg.Target),
		zap.Time("at", msg.At),
	}
	for _, f := range msg.Fields {
		fields = append(fields, zap.String(strings.ToLower(strings.ReplaceAll(f.Name, " ", "_")), f.Value))
	}
	if msg.Severity == SeverityDown {
		l.Logger.Warn("alert", fields...)
	} else {
		l.Logger.Info("alert", fields...)
	}
	return nil
}
