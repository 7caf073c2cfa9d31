package expo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsExpoToken(t *testing.T) {
	valid := []string{
		"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]",
		"ExpoPushToken[abc_123-XYZ]",
	}
	for _, tok := range valid {
		if !IsExpoToken(tok) {
			t.Errorf("IsExpoToken(%q) = false", tok)
		}
	}

	invalid := []string{
		"",
		"abc123",
		"ExponentPushToken[]",
		"ExponentPushToken[has space]",
		"expoPushToken[abc]",
		"ExponentPushToken[abc",
		"prefixExponentPushToken[abc]",
	}
	for _, tok := range invalid {
		if IsExpoToken(tok) {
			t.Errorf("IsExpoToken(%q) = true", tok)
		}
	}
}

func TestTicketHelpers(t *testing.T) {
	ok := Ticket{Status: "ok", ID: "t1"}
	if !ok.OK() || ok.DeliveryError() != "" || ok.DeviceNotRegistered() {
		t.Errorf("ok ticket misread: %+v", ok)
	}

	dead := Ticket{
		Status:  "error",
		Message: "device unreachable",
		Details: map[string]interface{}{"error": "DeviceNotRegistered"},
	}
	if dead.OK() {
		t.Error("error ticket reported OK")
	}
	if dead.DeliveryError() != "DeviceNotRegistered" {
		t.Errorf("DeliveryError = %q", dead.DeliveryError())
	}
	if !dead.DeviceNotRegistered() {
		t.Error("DeviceNotRegistered = false")
	}

	vague := Ticket{Status: "error", Message: "something broke"}
	if vague.DeliveryError() != "something broke" {
		t.Errorf("DeliveryError = %q, want message fallback", vague.DeliveryError())
	}
	if (Ticket{Status: "error"}).DeliveryError() != "unknown" {
		t.Error("bare error ticket should report unknown")
	}
}

func TestSendChunksLargeBatches(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msgs []Message
		if err := json.NewDecoder(r.Body).Decode(&msgs); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		batches = append(batches, len(msgs))

		tickets := make([]Ticket, len(msgs))
		for i := range tickets {
			tickets[i] = Ticket{Status: "ok", ID: fmt.Sprintf("t%d", i)}
		}
		json.NewEncoder(w).Encode(gatewayResponse{Data: tickets})
	}))
	defer srv.Close()

	c := &Client{url: srv.URL, timeout: 5 * time.Second}

	msgs := make([]Message, 150)
	for i := range msgs {
		msgs[i] = Message{To: fmt.Sprintf("ExponentPushToken[u%d]", i), Body: "hi"}
	}

	tickets, err := c.Send(context.Background(), msgs)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(tickets) != 150 {
		t.Errorf("tickets = %d, want 150", len(tickets))
	}
	if len(batches) != 2 || batches[0] != BatchLimit || batches[1] != 50 {
		t.Errorf("batch sizes = %v, want [100 50]", batches)
	}
}

func TestSendGatewayHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := &Client{url: srv.URL, timeout: 5 * time.Second}
	_, err := c.Send(context.Background(), []Message{{To: "ExponentPushToken[a]"}})
	if err == nil {
		t.Fatal("expected an error on HTTP 503")
	}
}

func TestSendGatewayLevelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"code": "PUSH_TOO_MANY_EXPERIENCE_IDS", "message": "mixed projects"}},
		})
	}))
	defer srv.Close()

	c := &Client{url: srv.URL, timeout: 5 * time.Second}
	_, err := c.Send(context.Background(), []Message{{To: "ExponentPushToken[a]"}})
	if err == nil {
		t.Fatal("expected an error on a gateway-level error")
	}
}

func TestSendTicketCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gatewayResponse{Data: []Ticket{}})
	}))
	defer srv.Close()

	c := &Client{url: srv.URL, timeout: 5 * time.Second}
	_, err := c.Send(context.Background(), []Message{{To: "ExponentPushToken[a]"}})
	if err == nil {
		t.Fatal("expected an error when ticket count does not match")
	}
}
