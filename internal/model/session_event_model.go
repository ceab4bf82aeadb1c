package model

import (
	"time"

	"agent-sim-be/pkg/store"
)

// SessionEvent is the payload pushed to websocket subscribers of a
// conversation session. Exactly one of Message or Lifecycle is set.
type SessionEvent struct {
	SessionID string         `json:"session_id"`
	Kind      string         `json:"kind"` // "message" | "lifecycle"
	Message   *store.Message `json:"message,omitempty"`
	Lifecycle *Lifecycle     `json:"lifecycle,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Lifecycle mirrors a simulation state change onto the socket.
type Lifecycle struct {
	Type         string `json:"type"`
	SimulationID string `json:"simulation_id,omitempty"`
}

func NewMessageEvent(sessionID string, msg store.Message) SessionEvent {
	return SessionEvent{
		SessionID: sessionID,
		Kind:      "message",
		Message:   &msg,
		CreatedAt: time.Now(),
	}
}

func NewLifecycleEvent(sessionID, typ, simulationID string) SessionEvent {
	return SessionEvent{
		SessionID: sessionID,
		Kind:      "lifecycle",
		Lifecycle: &Lifecycle{Type: typ, SimulationID: simulationID},
		CreatedAt: time.Now(),
	}
}
