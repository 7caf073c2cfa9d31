// Package expo is the client for the Expo push gateway.
//
// The gateway accepts batches of at most BatchLimit messages and returns one
// delivery ticket per message. SendBatch handles the chunking; callers hand
// it any number of messages.
//
//	client := expo.NewClient()
//	tickets, err := client.Send(ctx, []expo.Message{{To: token, Title: "Hi"}})
package expo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/shashiranjanraj/atelier/config"
	"github.com/shashiranjanraj/atelier/pkg/httpclient"
)

// BatchLimit is the maximum number of messages per gateway request.
const BatchLimit = 100

// tokenRE matches the gateway's token format.
var tokenRE = regexp.MustCompile(`^Expo(nent)?PushToken\[[A-Za-z0-9_-]+\]$`)

// IsExpoToken reports whether token is syntactically valid for the gateway.
func IsExpoToken(token string) bool {
	return tokenRE.MatchString(token)
}

// Message is a single push message addressed to one device token.
type Message struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title,omitempty"`
	Body     string                 `json:"body,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"`
}

// Ticket is the gateway's per-message delivery receipt.
type Ticket struct {
	Status  string                 `json:"status"` // "ok" | "error"
	ID      string                 `json:"id,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// OK reports whether the message was accepted for delivery.
func (t Ticket) OK() bool { return t.Status == "ok" }

// DeliveryError returns the gateway's error reason, or "" when the ticket is ok.
func (t Ticket) DeliveryError() string {
	if t.OK() {
		return ""
	}
	if t.Details != nil {
		if reason, ok := t.Details["error"].(string); ok {
			return reason
		}
	}
	if t.Message != "" {
		return t.Message
	}
	return "unknown"
}

// DeviceNotRegistered reports the reason that marks a dead token.
func (t Ticket) DeviceNotRegistered() bool {
	return t.DeliveryError() == "DeviceNotRegistered"
}

// Client talks to the push gateway.
type Client struct {
	url     string
	timeout time.Duration
}

// NewClient builds a Client against the configured gateway URL.
func NewClient() *Client {
	return &Client{
		url:     config.ExpoPushURL(),
		timeout: 10 * time.Second,
	}
}

// ValidToken implements the gateway's token-format predicate.
func (c *Client) ValidToken(token string) bool {
	return IsExpoToken(token)
}

type gatewayResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send delivers msgs through the gateway in BatchLimit-sized chunks and
// returns one ticket per message, in input order. A transport or gateway
// failure on any chunk aborts and returns the tickets gathered so far
// alongside the error.
func (c *Client) Send(ctx context.Context, msgs []Message) ([]Ticket, error) {
	tickets := make([]Ticket, 0, len(msgs))

	for start := 0; start < len(msgs); start += BatchLimit {
		end := start + BatchLimit
		if end > len(msgs) {
			end = len(msgs)
		}

		chunk, err := c.sendChunk(ctx, msgs[start:end])
		if err != nil {
			return tickets, err
		}
		tickets = append(tickets, chunk...)
	}

	return tickets, nil
}

func (c *Client) sendChunk(ctx context.Context, msgs []Message) ([]Ticket, error) {
	resp, err := httpclient.Post(c.url).
		WithContext(ctx).
		Timeout(c.timeout).
		Retry(2, time.Second).
		Body(msgs).
		Send()
	if err != nil {
		return nil, fmt.Errorf("expo: send batch: %w", err)
	}

	if !resp.OK() {
		return nil, fmt.Errorf("expo: gateway returned HTTP %d: %s", resp.StatusCode, resp.Text())
	}

	var out gatewayResponse
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("expo: decode response: %w", err)
	}

	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("expo: gateway error: %s (%s)", out.Errors[0].Message, out.Errors[0].Code)
	}

	if len(out.Data) != len(msgs) {
		return nil, fmt.Errorf("expo: gateway returned %d tickets for %d messages", len(out.Data), len(msgs))
	}

	return out.Data, nil
}
