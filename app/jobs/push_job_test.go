package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/shashiranjanraj/atelier/pkg/expo"
)

type stubGateway struct {
	msgs    []expo.Message
	tickets []expo.Ticket
	err     error
}

func (g *stubGateway) Send(_ context.Context, msgs []expo.Message) ([]expo.Ticket, error) {
	g.msgs = append(g.msgs, msgs...)
	if g.err != nil {
		return nil, g.err
	}
	tickets := make([]expo.Ticket, len(msgs))
	for i := range tickets {
		tickets[i] = expo.Ticket{Status: "ok"}
	}
	if g.tickets != nil {
		tickets = g.tickets
	}
	return tickets, nil
}

func useGateway(t *testing.T, gw Gateway) {
	t.Helper()
	old := gateway
	gateway = gw
	t.Cleanup(func() { gateway = old })
}

func TestHandleComposesMessages(t *testing.T) {
	gw := &stubGateway{}
	useGateway(t, gw)

	job := &SendPushJob{
		Tokens: []string{"ExponentPushToken[a]", "ExponentPushToken[b]"},
		Title:  "Order update",
		Body:   "Your order #abc123 has shipped.",
		Data:   map[string]interface{}{"screen": "order"},
	}
	if err := job.Handle(); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(gw.msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(gw.msgs))
	}
	m := gw.msgs[0]
	if m.To != "ExponentPushToken[a]" || m.Title != "Order update" || m.Sound != "default" {
		t.Errorf("message = %+v", m)
	}
	if m.Data["screen"] != "order" {
		t.Errorf("data = %v", m.Data)
	}
}

func TestHandleTransportErrorFailsJob(t *testing.T) {
	useGateway(t, &stubGateway{err: errors.New("gateway unreachable")})

	job := &SendPushJob{Tokens: []string{"ExponentPushToken[a]"}}
	if err := job.Handle(); err == nil {
		t.Fatal("expected a transport error to fail the job")
	}
}

func TestHandleDeliveryErrorDoesNotFailJob(t *testing.T) {
	useGateway(t, &stubGateway{tickets: []expo.Ticket{{Status: "error", Message: "DeviceNotRegistered"}}})

	job := &SendPushJob{Tokens: []string{"ExponentPushToken[dead]"}}
	if err := job.Handle(); err != nil {
		t.Fatalf("a per-ticket delivery error must not fail the job: %v", err)
	}
}

func TestHandleEmptyTokenListIsNoop(t *testing.T) {
	gw := &stubGateway{}
	useGateway(t, gw)

	if err := (&SendPushJob{}).Handle(); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(gw.msgs) != 0 {
		t.Errorf("sent %d messages, want 0", len(gw.msgs))
	}
}
