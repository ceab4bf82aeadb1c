package dto

// StatusCallbackRequest is the engine's webhook payload reporting a
// simulation's terminal (or intermediate) state.
type StatusCallbackRequest struct {
	SimulationID string `json:"simulation_id" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=running completed failed stopped"`
	Detail       string `json:"detail"`
}
