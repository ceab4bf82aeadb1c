package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agent-sim-be/pkg/store"
)

// Simulation statuses reported by the engine.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusStopped   = "stopped"
)

// StartConfig is the immutable configuration handed to the engine at start.
type StartConfig struct {
	Idea            string            `json:"idea"`
	Category        string            `json:"category"`
	TargetAudience  []string          `json:"target_audience"`
	Country         string            `json:"country"`
	City            string            `json:"city"`
	RiskAppetite    int               `json:"risk_appetite"`
	IdeaMaturity    string            `json:"idea_maturity,omitempty"`
	Goals           []string          `json:"goals"`
	Locale          string            `json:"locale"`
	ResearchSummary string            `json:"research_summary,omitempty"`
	Sources         []store.SourceRef `json:"sources,omitempty"`
}

// StartResult is the engine's acknowledgement.
type StartResult struct {
	SimulationID string `json:"simulation_id"`
	Status       string `json:"status"`
}

// Engine is the external multi-agent simulation engine, consumed through
// two calls and otherwise opaque.
type Engine interface {
	Start(ctx context.Context, cfg StartConfig) (*StartResult, error)
	Stop(ctx context.Context) error
}

// HTTPEngine talks JSON-over-HTTP to the engine.
type HTTPEngine struct {
	BaseURL string
	Client  *http.Client
}

var _ Engine = &HTTPEngine{}

func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (e *HTTPEngine) Start(ctx context.Context, cfg StartConfig) (*StartResult, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal start config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/v1/simulations", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create start request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine start failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("engine start returned status %d", resp.StatusCode)
	}

	var result StartResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode start response: %w", err)
	}
	return &result, nil
}

func (e *HTTPEngine) Stop(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/v1/simulations/stop", nil)
	if err != nil {
		return fmt.Errorf("create stop request: %w", err)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("engine stop failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("engine stop returned status %d", resp.StatusCode)
	}
	return nil
}
