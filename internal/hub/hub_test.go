package hub

import (
	"testing"
)

func TestHubBindAndBroadcast(t *testing.T) {
	h := NewHub()
	a := h.NewConnection(nil)
	b := h.NewConnection(nil)
	c := h.NewConnection(nil)

	h.BindSession(a, "s1")
	h.BindSession(b, "s1")
	h.BindSession(c, "s2")

	if h.ConnectionCount() != 3 || h.SessionCount() != 2 {
		t.Fatalf("unexpected counts: %d connections, %d sessions", h.ConnectionCount(), h.SessionCount())
	}

	delivered, err := h.BroadcastJSON("s1", map[string]string{"type": "turn_started"})
	if err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}
	if got := string(<-a.Send); got != `{"type":"turn_started"}` {
		t.Fatalf("unexpected payload: %s", got)
	}
	<-b.Send
	if len(c.Send) != 0 {
		t.Fatalf("other sessions must not receive the broadcast")
	}
}

func TestHubRebindAndUnregister(t *testing.T) {
	h := NewHub()
	conn := h.NewConnection(nil)

	h.BindSession(conn, "s1")
	h.BindSession(conn, "s2")
	if h.HasActiveConnections("s1") || !h.HasActiveConnections("s2") {
		t.Fatalf("rebinding should move the connection")
	}
	if conn.SessionID() != "s2" {
		t.Fatalf("unexpected session: %s", conn.SessionID())
	}

	h.Unregister(conn)
	h.Unregister(conn)
	if h.ConnectionCount() != 0 || h.HasActiveConnections("s2") {
		t.Fatalf("unregister should drop the connection and its binding")
	}
	if _, ok := <-conn.Send; ok {
		t.Fatalf("send channel should be closed")
	}
	if err := h.Send(conn, []byte("late")); err != nil {
		t.Fatalf("sending to an unregistered connection should be a no-op, got %v", err)
	}
}

func TestHubSendBufferFull(t *testing.T) {
	h := NewHub()
	conn := h.NewConnection(nil)
	for i := 0; i < sendBufferSize; i++ {
		if err := h.Send(conn, []byte("x")); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	if err := h.Send(conn, []byte("x")); err != ErrBufferFull {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}

	h.BindSession(conn, "s1")
	if delivered := h.Broadcast("s1", []byte("x")); delivered != 0 {
		t.Fatalf("full connections should be skipped, got %d", delivered)
	}
}
