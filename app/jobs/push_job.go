// Package jobs holds the queued background jobs and their registrations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/atelier/pkg/expo"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/metrics"
	"github.com/shashiranjanraj/atelier/pkg/queue"
)

// Gateway is the delivery client used by SendPushJob. Set once at boot via
// Configure; tests swap in a fake.
type Gateway interface {
	Send(ctx context.Context, msgs []expo.Message) ([]expo.Ticket, error)
}

var gateway Gateway

// Configure wires the push gateway and registers all job types with the
// queue. Call once at boot, before workers start.
func Configure(gw Gateway) {
	gateway = gw
	queue.Register(fmt.Sprintf("%T", &SendPushJob{}), func() queue.Job { return &SendPushJob{} })
}

// SendPushJob delivers one composed notification to a set of tokens. The
// gateway client chunks the batch to its limit internally. Delivery errors
// are logged per ticket; the job only fails (and retries) on transport
// errors, where a resend is safe.
type SendPushJob struct {
	Tokens []string               `json:"tokens"`
	Title  string                 `json:"title"`
	Body   string                 `json:"body"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

func (j *SendPushJob) Handle() error {
	if gateway == nil {
		return fmt.Errorf("push gateway not configured")
	}
	if len(j.Tokens) == 0 {
		return nil
	}

	msgs := make([]expo.Message, 0, len(j.Tokens))
	for _, token := range j.Tokens {
		msgs = append(msgs, expo.Message{
			To:    token,
			Title: j.Title,
			Body:  j.Body,
			Data:  j.Data,
			Sound: "default",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tickets, err := gateway.Send(ctx, msgs)
	if err != nil {
		return fmt.Errorf("push send: %w", err)
	}

	for i, t := range tickets {
		if t.OK() {
			metrics.PushMessagesSent.WithLabelValues("ok").Inc()
			continue
		}
		metrics.PushMessagesSent.WithLabelValues("error").Inc()
		token := ""
		if i < len(j.Tokens) {
			token = j.Tokens[i]
		}
		logger.Warn("push delivery error", "token", token, "message", t.Message)
	}
	return nil
}

// QueueDispatcher enqueues push jobs; it satisfies the notification
// dispatcher's fire-and-forget contract by logging enqueue failures.
type QueueDispatcher struct{}

func (QueueDispatcher) EnqueuePush(tokens []string, title, body string, data map[string]interface{}) {
	job := &SendPushJob{Tokens: tokens, Title: title, Body: body, Data: data}
	if err := queue.Dispatch(job); err != nil {
		logger.Error("push enqueue failed", "tokens", len(tokens), "error", err)
	}
}
