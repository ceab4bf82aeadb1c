package store

import (
	"time"

	"agent-sim-be/pkg/convo/slots"

	"github.com/google/uuid"
)

// TurnMode is the dispatcher's exclusive expectation for the next turn.
// Exactly one holds at a time; entering one clears any other.
type TurnMode string

const (
	ModeNone                      TurnMode = "none"
	ModeWaitingForCountry         TurnMode = "waiting_for_country"
	ModeWaitingForCity            TurnMode = "waiting_for_city"
	ModeWaitingForLocationChoice  TurnMode = "waiting_for_location_choice"
	ModePendingUpdateConfirmation TurnMode = "pending_update_confirmation"
	ModePendingConfigReview       TurnMode = "pending_config_review"
)

// Message roles
const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Option prompt kinds
const (
	PromptSingle = "single"
	PromptMulti  = "multi"
)

// SourceRef is one web-search result backing the research context.
type SourceRef struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Domain  string `json:"domain"`
	Snippet string `json:"snippet"`
}

// ResearchContext is replaced wholesale on each successful search and
// cleared (never partially merged) on failure.
type ResearchContext struct {
	Summary   string      `json:"summary"`
	Sources   []SourceRef `json:"sources"`
	FetchedAt time.Time   `json:"fetched_at,omitempty"`
}

// Empty reports whether no research is held.
func (r ResearchContext) Empty() bool {
	return r.Summary == "" && len(r.Sources) == 0
}

// OptionItem is one selectable chip in an option prompt.
type OptionItem struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// OptionPrompt asks the user to pick catalog entries for one slot.
type OptionPrompt struct {
	Field slots.Field  `json:"field"`
	Kind  string       `json:"kind"` // "single" | "multi"
	Items []OptionItem `json:"items"`
}

// Message is one transcript entry. The transcript is append-only; the only
// allowed post-append transition is hiding an option prompt, which is
// modeled as the session's HiddenPrompts set, not as an edit.
type Message struct {
	ID        uuid.UUID     `json:"id"`
	Role      string        `json:"role"`
	Text      string        `json:"text"`
	Prompt    *OptionPrompt `json:"prompt,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// LocationChoice is one country/city pairing offered when a turn was
// ambiguous about location.
type LocationChoice struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// Session is the in-memory state of one conversation. Slots and Mode are
// mutated only by the turn dispatcher; everything else reads them.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Locale string `json:"locale"`

	Slots *slots.State `json:"slots"`
	Mode  TurnMode     `json:"mode"`

	Research            ResearchContext `json:"research"`
	ResearchNoticeShown bool            `json:"research_notice_shown"`

	Transcript    []Message       `json:"transcript"`
	HiddenPrompts map[string]bool `json:"hidden_prompts"`

	// Pending free text waiting for a yes/no in pending_update_confirmation.
	PendingUpdate string `json:"pending_update"`

	// Choices offered while in waiting_for_location_choice.
	LocationChoices []LocationChoice `json:"location_choices,omitempty"`

	// Engine linkage. HasStarted resets when the engine reports
	// completion or failure so a new start can be attempted.
	SimulationID string `json:"simulation_id"`
	HasStarted   bool   `json:"has_started"`

	// The maturity chip prompt is offered once; it is optional for start.
	MaturityPrompted bool `json:"maturity_prompted"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates an empty conversation session.
func NewSession(userID, locale string) *Session {
	return &Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		Locale:        locale,
		Slots:         slots.New(),
		Mode:          ModeNone,
		HiddenPrompts: make(map[string]bool),
		CreatedAt:     time.Now(),
	}
}

// Append adds a plain message to the transcript and returns it.
func (s *Session) Append(role, text string) Message {
	msg := Message{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.Transcript = append(s.Transcript, msg)
	return msg
}

// AppendPrompt adds a system message carrying an option prompt.
func (s *Session) AppendPrompt(text string, prompt *OptionPrompt) Message {
	msg := Message{
		ID:        uuid.New(),
		Role:      RoleSystem,
		Text:      text,
		Prompt:    prompt,
		CreatedAt: time.Now(),
	}
	s.Transcript = append(s.Transcript, msg)
	return msg
}

// HidePrompt marks a prompt message's items as hidden (after selection).
func (s *Session) HidePrompt(messageID uuid.UUID) {
	if s.HiddenPrompts == nil {
		s.HiddenPrompts = make(map[string]bool)
	}
	s.HiddenPrompts[messageID.String()] = true
}

// PromptHidden reports whether the prompt on a message has been consumed.
func (s *Session) PromptHidden(messageID uuid.UUID) bool {
	return s.HiddenPrompts[messageID.String()]
}

// SetMode transitions the turn mode. Modes are mutually exclusive by
// construction; leaving waiting_for_location_choice drops its choices.
func (s *Session) SetMode(m TurnMode) {
	if s.Mode == ModeWaitingForLocationChoice && m != ModeWaitingForLocationChoice {
		s.LocationChoices = nil
	}
	s.Mode = m
}
