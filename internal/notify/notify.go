// Package notify delivers lead alerts to operators over LINE push messages.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"

	apperrors "github.com/leadfunnel/personaquiz/internal/platform/errors"
)

var tracer = otel.Tracer("github.com/leadfunnel/personaquiz/internal/notify")

// Sink receives lead alert messages. Implementations must be safe for
// concurrent use.
type Sink interface {
	// Push sends a text message to the recipient id using the given
	// channel token. Delivery is best effort; callers decide whether a
	// failure matters.
	Push(ctx context.Context, token, to, message string) error
}

// DefaultEndpoint is the LINE Messaging API push endpoint.
const DefaultEndpoint = "https://api.line.me/v2/bot/message/push"

const pushTimeout = 8 * time.Second

// LineSink sends push messages through the LINE Messaging API.
type LineSink struct {
	endpoint string
	client   *http.Client
}

// NewLineSink creates a sink against the production endpoint.
func NewLineSink() *LineSink {
	return NewLineSinkWithEndpoint(DefaultEndpoint)
}

// NewLineSinkWithEndpoint creates a sink against a custom endpoint,
// used by tests.
func NewLineSinkWithEndpoint(endpoint string) *LineSink {
	return &LineSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: pushTimeout},
	}
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Push implements Sink. Empty token or recipient is reported as an error so
// the caller can log the skipped delivery.
func (s *LineSink) Push(ctx context.Context, token, to, message string) (err error) {
	if token == "" || to == "" {
		return apperrors.New(apperrors.CodeNotificationFailed, "push skipped: missing token or recipient")
	}

	ctx, span := tracer.Start(ctx, "notify.push")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	body, err := json.Marshal(pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: message}},
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "encode push message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "build push request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "send push request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.New(apperrors.CodeNotificationFailed,
			fmt.Sprintf("push rejected: status %d: %s", resp.StatusCode, detail))
	}
	return nil
}

// NopSink discards all messages. Used when pushes are disabled.
type NopSink struct{}

// Push implements Sink.
func (NopSink) Push(ctx context.Context, token, to, message string) error {
	return nil
}
