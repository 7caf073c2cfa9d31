package ws

import (
	"testing"
	"time"
)

func connect(h *Hub, userID string) *client {
	c := &client{hub: h, userID: userID, send: make(chan []byte, 8)}
	h.register <- c
	return c
}

func recv(t *testing.T, c *client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message within a second")
		return nil
	}
}

func expectNothing(t *testing.T, c *client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := connect(h, "user-a")
	b := connect(h, "user-b")

	h.Broadcast([]byte("gallery news"))

	if got := recv(t, a); string(got) != "gallery news" {
		t.Errorf("a got %q", got)
	}
	if got := recv(t, b); string(got) != "gallery news" {
		t.Errorf("b got %q", got)
	}
}

func TestSendToTargetsOneUsersConnections(t *testing.T) {
	h := NewHub()
	go h.Run()

	phone := connect(h, "user-a")
	laptop := connect(h, "user-a")
	other := connect(h, "user-b")

	h.SendTo("user-a", []byte("your order shipped"))

	recv(t, phone)
	recv(t, laptop)
	expectNothing(t, other)

	// An unknown user is a no-op, not a panic.
	h.SendTo("user-gone", []byte("dropped"))
	expectNothing(t, other)
}

func TestUnregisterRemovesClient(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := connect(h, "user-a")
	b := connect(h, "user-b")

	h.unregister <- a
	h.Broadcast([]byte("after leave"))

	recv(t, b)
	// a's send channel is closed on drop.
	if msg, open := <-a.send; open {
		t.Errorf("expected a closed channel, got %q", msg)
	}
}
