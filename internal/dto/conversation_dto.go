package dto

import (
	"time"
)

type CreateSessionRequest struct {
	Locale string `json:"locale" validate:"omitempty,oneof=en ar"`
}

type CreateSessionResponse struct {
	Id       string          `json:"id"`
	Locale   string          `json:"locale"`
	Greeting MessageResponse `json:"greeting"`
}

type MessageResponse struct {
	Id        string           `json:"id"`
	Role      string           `json:"role"`
	Text      string           `json:"text"`
	Prompt    *OptionPromptDTO `json:"prompt,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type OptionPromptDTO struct {
	Field  string          `json:"field"`
	Kind   string          `json:"kind"`
	Items  []OptionItemDTO `json:"items"`
	Hidden bool            `json:"hidden"`
}

type OptionItemDTO struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type SendTurnRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type SendTurnResponse struct {
	Messages []MessageResponse `json:"messages"`
	Mode     string            `json:"mode"`
	Missing  []string          `json:"missing"`
	Started  bool              `json:"started"`
}

type SelectOptionRequest struct {
	MessageId string   `json:"message_id" validate:"required,uuid4"`
	Field     string   `json:"field" validate:"required"`
	Values    []string `json:"values" validate:"required,min=1"`
}

type TranscriptResponse struct {
	SessionId string            `json:"session_id"`
	Messages  []MessageResponse `json:"messages"`
}

type SlotsDTO struct {
	Idea           string   `json:"idea"`
	Category       string   `json:"category"`
	TargetAudience []string `json:"target_audience"`
	Country        string   `json:"country"`
	City           string   `json:"city"`
	RiskAppetite   int      `json:"risk_appetite"`
	IdeaMaturity   string   `json:"idea_maturity"`
	Goals          []string `json:"goals"`
}

type ConfigResponse struct {
	Slots    SlotsDTO    `json:"slots"`
	Touched  []string    `json:"touched"`
	Missing  []string    `json:"missing"`
	Ready    bool        `json:"ready"`
	Mode     string      `json:"mode"`
	Started  bool        `json:"started"`
	Research ResearchDTO `json:"research"`
}

type ResearchDTO struct {
	Summary string         `json:"summary,omitempty"`
	Sources []SourceRefDTO `json:"sources,omitempty"`
}

type SourceRefDTO struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Domain string `json:"domain,omitempty"`
}

type UpdateConfigRequest struct {
	Idea           *string  `json:"idea" validate:"omitempty,max=4000"`
	Category       *string  `json:"category"`
	TargetAudience []string `json:"target_audience"`
	Country        *string  `json:"country"`
	City           *string  `json:"city"`
	RiskAppetite   *float64 `json:"risk_appetite" validate:"omitempty,min=0,max=100"`
	IdeaMaturity   *string  `json:"idea_maturity"`
	Goals          []string `json:"goals"`
}
