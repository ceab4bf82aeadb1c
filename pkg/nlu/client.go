package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MessageMode classifies a turn while a simulation is running.
type MessageMode string

const (
	ModeUpdate  MessageMode = "update"
	ModeDiscuss MessageMode = "discuss"
)

// ErrTimeout marks a call that exceeded its budget. Always recoverable via
// the caller's heuristic fallback, never surfaced as a hard failure.
var ErrTimeout = errors.New("nlu: call timed out")

// TransportError marks a network or 5xx failure. Same recovery path as a
// timeout.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("nlu: %s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("nlu: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SlotContext is the serialization of the current slot state sent along as
// extraction bias.
type SlotContext struct {
	Idea           string   `json:"idea,omitempty"`
	Category       string   `json:"category,omitempty"`
	TargetAudience []string `json:"target_audience,omitempty"`
	Country        string   `json:"country,omitempty"`
	City           string   `json:"city,omitempty"`
	RiskAppetite   int      `json:"risk_appetite,omitempty"`
	IdeaMaturity   string   `json:"idea_maturity,omitempty"`
	Goals          []string `json:"goals,omitempty"`
}

// LocationPair is one country/city candidate for an ambiguous turn.
type LocationPair struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// ExtractResult is the raw schema extraction, before normalization.
// Absent fields stay nil/empty.
type ExtractResult struct {
	Idea           *string        `json:"idea,omitempty"`
	Country        *string        `json:"country,omitempty"`
	City           *string        `json:"city,omitempty"`
	Category       *string        `json:"category,omitempty"`
	TargetAudience []string       `json:"target_audience,omitempty"`
	Goals          []string       `json:"goals,omitempty"`
	RiskAppetite   *float64       `json:"risk_appetite,omitempty"`
	IdeaMaturity   *string        `json:"idea_maturity,omitempty"`
	Question       string         `json:"question,omitempty"`
	Locations      []LocationPair `json:"locations,omitempty"`
}

// SearchItem is one web search hit.
type SearchItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Domain  string `json:"domain"`
	Snippet string `json:"snippet"`
}

// SearchResult is the web search response.
type SearchResult struct {
	Answer  string       `json:"answer"`
	Results []SearchItem `json:"results"`
}

// Client is the contract for the external text-understanding backend.
// All methods honor ctx cancellation; callers impose budgets by racing the
// call against a timer.
type Client interface {
	Extract(ctx context.Context, turn string, current SlotContext) (*ExtractResult, error)
	DetectStartIntent(ctx context.Context, turn, shortContext string) (bool, error)
	DetectMessageMode(ctx context.Context, turn, shortContext, locale string) (MessageMode, error)
	SearchWeb(ctx context.Context, query, locale string, maxResults int) (*SearchResult, error)
}

// HTTPClient talks JSON-over-HTTP to the NLU backend.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

var _ Client = &HTTPClient{}

// NewHTTPClient creates a client for the given base URL. The transport
// timeout is a generous upper bound; per-call budgets come from contexts.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type extractRequest struct {
	Text    string      `json:"text"`
	Context SlotContext `json:"context"`
}

type startIntentRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

type startIntentResponse struct {
	Start bool `json:"start"`
}

type messageModeRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
	Locale  string `json:"locale"`
}

type messageModeResponse struct {
	Mode string `json:"mode"`
}

type searchRequest struct {
	Query      string `json:"query"`
	Locale     string `json:"locale"`
	MaxResults int    `json:"max_results"`
}

func (c *HTTPClient) Extract(ctx context.Context, turn string, current SlotContext) (*ExtractResult, error) {
	var out ExtractResult
	if err := c.post(ctx, "extract", "/v1/extract", extractRequest{Text: turn, Context: current}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DetectStartIntent(ctx context.Context, turn, shortContext string) (bool, error) {
	var out startIntentResponse
	if err := c.post(ctx, "detect-start-intent", "/v1/intent/start", startIntentRequest{Text: turn, Context: shortContext}, &out); err != nil {
		return false, err
	}
	return out.Start, nil
}

func (c *HTTPClient) DetectMessageMode(ctx context.Context, turn, shortContext, locale string) (MessageMode, error) {
	var out messageModeResponse
	req := messageModeRequest{Text: turn, Context: shortContext, Locale: locale}
	if err := c.post(ctx, "detect-message-mode", "/v1/intent/mode", req, &out); err != nil {
		return "", err
	}
	if out.Mode == string(ModeDiscuss) {
		return ModeDiscuss, nil
	}
	return ModeUpdate, nil
}

func (c *HTTPClient) SearchWeb(ctx context.Context, query, locale string, maxResults int) (*SearchResult, error) {
	var out SearchResult
	req := searchRequest{Query: query, Locale: locale, MaxResults: maxResults}
	if err := c.post(ctx, "search-web", "/v1/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) post(ctx context.Context, op, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ErrTimeout
		}
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
