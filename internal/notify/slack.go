package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrSlackDisabled = errors.New("slack disabled")

const (
	colorDown      = "#d93025"
	colorRecovered = "#188038"
)

// Slack posts alerts to an incoming webhook as one colored attachment.
type Slack struct {
	Webhook string
	Client  *http.Client
}

// NewSlack returns nil when webhook is empty so callers can skip wiring it.
func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Fallback string       `json:"fallback"`
	Color    string       `json:"color"`
	Title    string       `json:"title"`
	Fields   []slackField `json:"fields"`
	Ts       int64        `json:"ts,omitempty"`
}

type slackPayload struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

func newSlackPayload(msg Message) slackPayload {
	color := colorRecovered
	if msg.Severity == SeverityDown {
		color = colorDown
	}
	att := slackAttachment{
		Fallback: msg.Title + "\n" + msg.Text(),
		Color:    color,
		Title:    msg.Target,
	}
	if !msg.At.IsZero() {
		att.Ts = msg.At.Unix()
	}
	for _, f := range msg.Fields {
		att.Fields = append(att.Fields, slackField{Title: f.Name, Value: f.Value, Short: len(f.Value) < 40})
	}
	return slackPayload{Text: "*" + msg.Title + "*", Attachments: []slackAttachment{att}}
}

func (s *Slack) Notify(ctx context.Context, msg Message) error {
	if s == nil || s.Webhook == "" {
		return ErrSlackDisabled
	}
	body, err := json.Marshal(newSlackPayload(msg))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("slack %s: %s", resp.Status, bytes.TrimSpace(detail))
	}
	return nil
}
