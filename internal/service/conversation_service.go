package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"agent-sim-be/internal/dto"
	"agent-sim-be/internal/model"
	"agent-sim-be/internal/pkg/logger"
	"agent-sim-be/internal/repository/memory"
	"agent-sim-be/pkg/catalog"
	"agent-sim-be/pkg/convo/dispatch"
	"agent-sim-be/pkg/convo/normalize"
	"agent-sim-be/pkg/convo/prompt"
	"agent-sim-be/pkg/convo/slots"
	"agent-sim-be/pkg/simulation"
	"agent-sim-be/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidOption   = errors.New("invalid option value")
)

type IConversationService interface {
	CreateSession(ctx context.Context, userID, locale string) (*dto.CreateSessionResponse, error)
	GetTranscript(ctx context.Context, sessionID string) (*dto.TranscriptResponse, error)
	GetConfig(ctx context.Context, sessionID string) (*dto.ConfigResponse, error)
	UpdateConfig(ctx context.Context, sessionID string, req dto.UpdateConfigRequest) (*dto.ConfigResponse, error)
	SendTurn(ctx context.Context, sessionID, text string) (*dto.SendTurnResponse, error)
	SelectOption(ctx context.Context, sessionID string, req dto.SelectOptionRequest) (*dto.SendTurnResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ApplyStatus(ctx context.Context, req dto.StatusCallbackRequest) error
}

type conversationService struct {
	sessions   *memory.SessionRepository
	dispatcher *dispatch.Dispatcher
	builder    *prompt.Builder
	publisher  IPublisherService
	logger     logger.ILogger

	// One mutex per live session. Turns on a session are strictly
	// sequential; distinct sessions proceed in parallel.
	locks sync.Map
}

func NewConversationService(
	sessions *memory.SessionRepository,
	dispatcher *dispatch.Dispatcher,
	builder *prompt.Builder,
	publisher IPublisherService,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		sessions:   sessions,
		dispatcher: dispatcher,
		builder:    builder,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *conversationService) lock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *conversationService) CreateSession(ctx context.Context, userID, locale string) (*dto.CreateSessionResponse, error) {
	if locale != "ar" {
		locale = "en"
	}
	sess := store.NewSession(userID, locale)
	greeting := sess.Append(store.RoleSystem, s.builder.Text("greeting", locale))
	s.sessions.Save(sess)

	s.logger.Info("Conversation", "Session created", map[string]interface{}{
		"session_id": sess.ID,
		"locale":     locale,
	})

	return &dto.CreateSessionResponse{
		Id:       sess.ID,
		Locale:   locale,
		Greeting: s.toMessageDTO(sess, greeting),
	}, nil
}

func (s *conversationService) GetTranscript(ctx context.Context, sessionID string) (*dto.TranscriptResponse, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	resp := &dto.TranscriptResponse{SessionId: sess.ID}
	for _, m := range sess.Transcript {
		resp.Messages = append(resp.Messages, s.toMessageDTO(sess, m))
	}
	return resp, nil
}

func (s *conversationService) GetConfig(ctx context.Context, sessionID string) (*dto.ConfigResponse, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.toConfigDTO(sess), nil
}

// UpdateConfig applies direct field edits. Every value passes through the
// same normalization as conversational input; unknown enum keys reject the
// whole request so a typo cannot silently drop a field.
func (s *conversationService) UpdateConfig(ctx context.Context, sessionID string, req dto.UpdateConfigRequest) (*dto.ConfigResponse, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if req.Idea != nil {
		sess.Slots.SetExplicit(slots.FieldIdea, strings.TrimSpace(*req.Idea))
	}
	if req.Category != nil {
		key, ok := normalize.Category(*req.Category)
		if !ok {
			return nil, fmt.Errorf("%w: category %q", ErrInvalidOption, *req.Category)
		}
		sess.Slots.SetExplicit(slots.FieldCategory, key)
	}
	if req.TargetAudience != nil {
		keys := normalize.OptionList(req.TargetAudience, catalog.Audiences())
		if len(keys) != len(req.TargetAudience) {
			return nil, fmt.Errorf("%w: target_audience %v", ErrInvalidOption, req.TargetAudience)
		}
		sess.Slots.SetExplicit(slots.FieldTargetAudience, keys)
	}
	if req.Country != nil {
		sess.Slots.SetExplicit(slots.FieldCountry, strings.TrimSpace(*req.Country))
	}
	if req.City != nil {
		sess.Slots.SetExplicit(slots.FieldCity, strings.TrimSpace(*req.City))
	}
	if req.RiskAppetite != nil {
		sess.Slots.SetExplicit(slots.FieldRiskAppetite, normalize.Risk(*req.RiskAppetite))
	}
	if req.IdeaMaturity != nil {
		key, ok := normalize.Maturity(*req.IdeaMaturity)
		if !ok {
			return nil, fmt.Errorf("%w: idea_maturity %q", ErrInvalidOption, *req.IdeaMaturity)
		}
		sess.Slots.SetExplicit(slots.FieldIdeaMaturity, key)
	}
	if req.Goals != nil {
		keys := normalize.OptionList(req.Goals, catalog.Goals())
		if len(keys) != len(req.Goals) {
			return nil, fmt.Errorf("%w: goals %v", ErrInvalidOption, req.Goals)
		}
		sess.Slots.SetExplicit(slots.FieldGoals, keys)
	}

	s.sessions.Save(sess)
	return s.toConfigDTO(sess), nil
}

func (s *conversationService) SendTurn(ctx context.Context, sessionID, text string) (*dto.SendTurnResponse, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	result := s.dispatcher.HandleTurn(ctx, sess, text)
	s.sessions.Save(sess)
	s.fanOut(ctx, sess, result)

	return s.toTurnDTO(sess, result), nil
}

// SelectOption resolves a chip selection: the values are normalized against
// the catalog, set explicitly (so later inference cannot overwrite them),
// the originating prompt is hidden, and the conversation advances.
func (s *conversationService) SelectOption(ctx context.Context, sessionID string, req dto.SelectOptionRequest) (*dto.SendTurnResponse, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	field := slots.Field(req.Field)
	switch field {
	case slots.FieldCategory:
		key, ok := normalize.Category(req.Values[0])
		if !ok {
			return nil, fmt.Errorf("%w: category %q", ErrInvalidOption, req.Values[0])
		}
		sess.Slots.SetExplicit(field, key)
	case slots.FieldIdeaMaturity:
		key, ok := normalize.Maturity(req.Values[0])
		if !ok {
			return nil, fmt.Errorf("%w: idea_maturity %q", ErrInvalidOption, req.Values[0])
		}
		sess.Slots.SetExplicit(field, key)
	case slots.FieldTargetAudience:
		keys := normalize.OptionList(req.Values, catalog.Audiences())
		if len(keys) != len(req.Values) {
			return nil, fmt.Errorf("%w: target_audience %v", ErrInvalidOption, req.Values)
		}
		sess.Slots.SetExplicit(field, keys)
	case slots.FieldGoals:
		keys := normalize.OptionList(req.Values, catalog.Goals())
		if len(keys) != len(req.Values) {
			return nil, fmt.Errorf("%w: goals %v", ErrInvalidOption, req.Values)
		}
		sess.Slots.SetExplicit(field, keys)
	default:
		return nil, fmt.Errorf("%w: field %q is not selectable", ErrInvalidOption, req.Field)
	}

	if msgID, err := uuid.Parse(req.MessageId); err == nil {
		sess.HidePrompt(msgID)
	}

	result := s.dispatcher.Advance(sess)
	s.sessions.Save(sess)
	s.fanOut(ctx, sess, result)

	return s.toTurnDTO(sess, result), nil
}

func (s *conversationService) DeleteSession(ctx context.Context, sessionID string) error {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if _, ok := s.sessions.Get(sessionID); !ok {
		return ErrSessionNotFound
	}
	s.sessions.Delete(sessionID)
	s.locks.Delete(sessionID)
	return nil
}

// ApplyStatus handles the engine's status callback. Terminal states reset
// the started flag so a new start can be attempted, and the user is told in
// their own locale.
func (s *conversationService) ApplyStatus(ctx context.Context, req dto.StatusCallbackRequest) error {
	sess, ok := s.sessions.FindBySimulationID(req.SimulationID)
	if !ok {
		return ErrSessionNotFound
	}

	mu := s.lock(sess.ID)
	mu.Lock()
	defer mu.Unlock()

	result := &dispatch.Result{}
	switch req.Status {
	case simulation.StatusCompleted:
		sess.HasStarted = false
		msg := sess.Append(store.RoleSystem, s.builder.Text("sim_completed", sess.Locale))
		result.Messages = append(result.Messages, msg)
		result.Events = append(result.Events, dispatch.LifecycleEvent{Type: "completed", SimulationID: req.SimulationID})
	case simulation.StatusFailed, simulation.StatusStopped:
		sess.HasStarted = false
		msg := sess.Append(store.RoleSystem, s.builder.Text("sim_failed", sess.Locale))
		result.Messages = append(result.Messages, msg)
		result.Events = append(result.Events, dispatch.LifecycleEvent{Type: req.Status, SimulationID: req.SimulationID})
	default:
		// running: nothing to surface
		return nil
	}

	s.sessions.Save(sess)
	s.fanOut(ctx, sess, result)
	return nil
}

// fanOut publishes the turn's messages and lifecycle events onto the
// in-process bus for the notifier to deliver.
func (s *conversationService) fanOut(ctx context.Context, sess *store.Session, result *dispatch.Result) {
	for _, m := range result.Messages {
		s.publishEvent(ctx, model.NewMessageEvent(sess.ID, m))
	}
	for _, e := range result.Events {
		s.publishEvent(ctx, model.NewLifecycleEvent(sess.ID, e.Type, e.SimulationID))
	}
}

func (s *conversationService) publishEvent(ctx context.Context, event model.SessionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Conversation", "Failed to marshal session event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Warn("Conversation", "Failed to publish session event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *conversationService) toMessageDTO(sess *store.Session, m store.Message) dto.MessageResponse {
	resp := dto.MessageResponse{
		Id:        m.ID.String(),
		Role:      m.Role,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
	if m.Prompt != nil {
		p := &dto.OptionPromptDTO{
			Field:  string(m.Prompt.Field),
			Kind:   m.Prompt.Kind,
			Hidden: sess.PromptHidden(m.ID),
		}
		for _, it := range m.Prompt.Items {
			p.Items = append(p.Items, dto.OptionItemDTO{
				Value:       it.Value,
				Label:       it.Label,
				Description: it.Description,
			})
		}
		resp.Prompt = p
	}
	return resp
}

func (s *conversationService) toTurnDTO(sess *store.Session, result *dispatch.Result) *dto.SendTurnResponse {
	resp := &dto.SendTurnResponse{
		Mode:    string(sess.Mode),
		Missing: fieldNames(sess.Slots.Missing()),
		Started: sess.HasStarted,
	}
	for _, m := range result.Messages {
		resp.Messages = append(resp.Messages, s.toMessageDTO(sess, m))
	}
	return resp
}

func (s *conversationService) toConfigDTO(sess *store.Session) *dto.ConfigResponse {
	resp := &dto.ConfigResponse{
		Slots: dto.SlotsDTO{
			Idea:           sess.Slots.Idea,
			Category:       sess.Slots.Category,
			TargetAudience: sess.Slots.TargetAudience,
			Country:        sess.Slots.Country,
			City:           sess.Slots.City,
			RiskAppetite:   sess.Slots.RiskAppetite,
			IdeaMaturity:   sess.Slots.IdeaMaturity,
			Goals:          sess.Slots.Goals,
		},
		Touched: fieldNames(sess.Slots.TouchedFields()),
		Missing: fieldNames(sess.Slots.Missing()),
		Ready:   sess.Slots.Ready(),
		Mode:    string(sess.Mode),
		Started: sess.HasStarted,
	}
	resp.Research.Summary = sess.Research.Summary
	for _, src := range sess.Research.Sources {
		resp.Research.Sources = append(resp.Research.Sources, dto.SourceRefDTO{
			Title:  src.Title,
			URL:    src.URL,
			Domain: src.Domain,
		})
	}
	return resp
}

func fieldNames(fields []slots.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, string(f))
	}
	return out
}
