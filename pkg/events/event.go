package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SIMULATION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Simulation lifecycle event codes.
const (
	SimulationStarted     = "SIMULATION_STARTED"
	SimulationRestarted   = "SIMULATION_RESTARTED"
	SimulationStartFailed = "SIMULATION_START_FAILED"
	SimulationStopped     = "SIMULATION_STOPPED"
	SimulationCompleted   = "SIMULATION_COMPLETED"
	SimulationFailed      = "SIMULATION_FAILED"
)

// NewSimulationEvent builds a lifecycle event carrying the session linkage.
func NewSimulationEvent(code, sessionID, simulationID string) BaseEvent {
	return BaseEvent{
		Type: code,
		Data: map[string]interface{}{
			"session_id":    sessionID,
			"simulation_id": simulationID,
		},
		OccurredAt: time.Now(),
	}
}
