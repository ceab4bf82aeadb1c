package websocket

import (
	"testing"
	"time"

	"agent-sim-be/internal/model"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

// A client whose Send buffer is full gets dropped, and only the unregister
// handler closes its channel. Two back-to-back sends must not close it
// twice; a panic here would kill the hub goroutine for every session.
func TestSlowClientDroppedWithoutPanic(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	client := &Client{Hub: hub, SessionID: "s1", Send: make(chan []byte, 1)}
	hub.register <- client
	client.Send <- []byte("backlog")

	hub.Send("s1", model.SessionEvent{SessionID: "s1", Kind: "message"})
	hub.Send("s1", model.SessionEvent{SessionID: "s1", Kind: "message"})

	if got := <-client.Send; string(got) != "backlog" {
		t.Fatalf("buffered message lost, got %q", got)
	}
	select {
	case _, ok := <-client.Send:
		if ok {
			t.Fatal("expected the channel to be closed after the drop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slow client was never unregistered")
	}

	// The hub keeps serving other clients afterwards.
	other := &Client{Hub: hub, SessionID: "s2", Send: make(chan []byte, 4)}
	hub.register <- other
	hub.Send("s2", model.SessionEvent{SessionID: "s2", Kind: "message"})
	select {
	case <-other.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped delivering after dropping a slow client")
	}
}
