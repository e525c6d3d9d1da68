// Package notifier turns log entries into chat-webhook messages and posts them.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dannytech/default-server/internal/model"
	"github.com/dannytech/default-server/internal/parser"
)

const (
	attachmentColor  = "#D27CD8"
	attachmentFooter = "Zigzag Notification Service"

	// maxResponseBodyRead bounds how much of an error response is kept.
	maxResponseBodyRead = 4096
)

// Payload is the incoming-webhook body for one log entry.
type Payload struct {
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a legacy Slack message attachment.
type Attachment struct {
	Fallback string          `json:"fallback"`
	Color    string          `json:"color"`
	Title    string          `json:"title"`
	Text     string          `json:"text"`
	Footer   string          `json:"footer"`
	TS       json.RawMessage `json:"ts"`
}

// Sender delivers payloads to a chat endpoint.
type Sender interface {
	Send(ctx context.Context, p Payload) error
}

// DeliveryError is returned when the endpoint answers with a non-2xx status.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook: unexpected status %d: %s", e.StatusCode, e.Body)
}

// BuildPayload maps an entry onto the fixed attachment schema.
func BuildPayload(entry model.LogEntry) (Payload, error) {
	if len(entry.TimeCreated) == 0 {
		return Payload{}, &parser.MissingFieldError{Field: parser.FieldTimeCreated}
	}
	return Payload{
		Attachments: []Attachment{{
			Fallback: fmt.Sprintf("%s: %s", entry.MachineName, entry.Message),
			Color:    attachmentColor,
			Title:    entry.MachineName,
			Text:     entry.Message,
			Footer:   attachmentFooter,
			TS:       entry.TimeCreated,
		}},
	}, nil
}

// SlackNotifier posts payloads to a Slack incoming webhook, one request each.
type SlackNotifier struct {
	url        string
	httpClient *http.Client
}

// NewSlackNotifier creates a notifier for the given webhook URL.
// A zero timeout leaves requests unbounded.
func NewSlackNotifier(url string, timeout time.Duration) *SlackNotifier {
	return NewSlackNotifierWithClient(url, &http.Client{Timeout: timeout})
}

// NewSlackNotifierWithClient creates a notifier with a caller-supplied HTTP client.
func NewSlackNotifierWithClient(url string, client *http.Client) *SlackNotifier {
	return &SlackNotifier{url: url, httpClient: client}
}

// Send POSTs p as JSON. Any transport error or non-2xx response is returned as is;
// there are no retries.
func (n *SlackNotifier) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("webhook: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyRead))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}
