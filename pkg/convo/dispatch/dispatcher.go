package dispatch

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"agent-sim-be/pkg/convo/extract"
	"agent-sim-be/pkg/convo/intent"
	"agent-sim-be/pkg/convo/prompt"
	"agent-sim-be/pkg/convo/research"
	"agent-sim-be/pkg/convo/slots"
	"agent-sim-be/pkg/nlu"
	"agent-sim-be/pkg/simulation"
	"agent-sim-be/pkg/store"
	"agent-sim-be/pkg/timeout"
)

// Lifecycle event types emitted alongside transcript messages.
const (
	EventStarted     = "started"
	EventRestarted   = "restarted"
	EventStartFailed = "start_failed"
	EventStopped     = "stopped"
)

// LifecycleEvent reports a simulation state change caused by a turn.
type LifecycleEvent struct {
	Type         string `json:"type"`
	SimulationID string `json:"simulation_id,omitempty"`
}

// Result is everything one turn produced: the system messages appended to
// the transcript (the user message is appended too but not repeated here)
// and any lifecycle events for the outer layers to fan out.
type Result struct {
	Messages []store.Message
	Events   []LifecycleEvent
}

// Dispatcher owns the turn-mode state machine. It is the only component
// that mutates a session's slots, mode, and research context; everything
// it calls returns proposals. It never returns an error: degraded calls
// become degraded replies, and only the engine-start path surfaces a
// failure, as a transcript message plus an event.
type Dispatcher struct {
	extractor   *extract.Orchestrator
	classifier  *intent.Classifier
	researcher  *research.Merger
	engine      simulation.Engine
	builder     *prompt.Builder
	startBudget time.Duration
	logger      *log.Logger
}

func NewDispatcher(
	extractor *extract.Orchestrator,
	classifier *intent.Classifier,
	researcher *research.Merger,
	engine simulation.Engine,
	builder *prompt.Builder,
	startBudget time.Duration,
	logger *log.Logger,
) *Dispatcher {
	return &Dispatcher{
		extractor:   extractor,
		classifier:  classifier,
		researcher:  researcher,
		engine:      engine,
		builder:     builder,
		startBudget: startBudget,
		logger:      logger,
	}
}

// HandleTurn appends the user turn and routes it by the session's mode.
// The caller must hold the session's lock for the whole call.
func (d *Dispatcher) HandleTurn(ctx context.Context, sess *store.Session, turn string) *Result {
	turn = strings.TrimSpace(turn)
	sess.Append(store.RoleUser, turn)

	switch sess.Mode {
	case store.ModeWaitingForCountry:
		return d.handleAwaitedLocation(ctx, sess, turn, slots.FieldCountry)
	case store.ModeWaitingForCity:
		return d.handleAwaitedLocation(ctx, sess, turn, slots.FieldCity)
	case store.ModeWaitingForLocationChoice:
		return d.handleLocationChoice(ctx, sess, turn)
	case store.ModePendingUpdateConfirmation:
		return d.handleUpdateConfirmation(ctx, sess, turn)
	case store.ModePendingConfigReview:
		return d.handleConfigReview(ctx, sess, turn)
	default:
		return d.handleIdle(ctx, sess, turn)
	}
}

// handleIdle covers ModeNone: free-form turns before the simulation starts,
// and discuss/update turns once it is running.
func (d *Dispatcher) handleIdle(ctx context.Context, sess *store.Session, turn string) *Result {
	res := &Result{}

	if sess.HasStarted {
		mode := d.classifier.MessageMode(ctx, turn, d.shortContext(sess), sess.Locale)
		if mode == nlu.ModeDiscuss {
			res.append(sess, d.builder.Discuss(sess.Research, sess.Locale))
			return res
		}
		sess.PendingUpdate = turn
		sess.SetMode(store.ModePendingUpdateConfirmation)
		res.append(sess, d.builder.Text("update_confirm", sess.Locale))
		return res
	}

	if sess.Slots.Ready() && d.classifier.StartIntent(ctx, turn, d.shortContext(sess)) {
		d.startSimulation(ctx, sess, res, false)
		return res
	}

	outcome := d.extractor.Run(ctx, turn, sess.Slots)
	d.applyOutcome(ctx, sess, res, outcome)
	return res
}

// handleAwaitedLocation resolves a turn that was expected to carry exactly
// one location field.
func (d *Dispatcher) handleAwaitedLocation(ctx context.Context, sess *store.Session, turn string, awaited slots.Field) *Result {
	res := &Result{}
	outcome := d.extractor.RunLocation(ctx, turn, awaited, sess.Slots)
	sess.SetMode(store.ModeNone)
	d.applyOutcome(ctx, sess, res, outcome)
	return res
}

// handleLocationChoice consumes a numbered pick from the offered pairings.
// Anything that is not a valid number is retried as a fresh location turn.
func (d *Dispatcher) handleLocationChoice(ctx context.Context, sess *store.Session, turn string) *Result {
	res := &Result{}

	if n, err := strconv.Atoi(strings.TrimSpace(turn)); err == nil {
		if n >= 1 && n <= len(sess.LocationChoices) {
			pick := sess.LocationChoices[n-1]
			sess.Slots.SetExplicit(slots.FieldCountry, pick.Country)
			sess.Slots.SetExplicit(slots.FieldCity, pick.City)
			sess.SetMode(store.ModeNone)
			d.advance(sess, res)
			return res
		}
		res.append(sess, d.builder.Text("choice_retry", sess.Locale))
		return res
	}

	// A free-text answer replaces the choice round entirely.
	outcome := d.extractor.RunLocation(ctx, turn, slots.FieldCity, sess.Slots)
	sess.SetMode(store.ModeNone)
	d.applyOutcome(ctx, sess, res, outcome)
	return res
}

// handleUpdateConfirmation resolves the yes/no gate for applying a mid-run
// update. Yes stops the running simulation, folds the pending text into the
// idea, refreshes research, and restarts. No discards the pending text.
func (d *Dispatcher) handleUpdateConfirmation(ctx context.Context, sess *store.Session, turn string) *Result {
	res := &Result{}

	switch {
	case intent.Affirmative(turn):
		pending := sess.PendingUpdate
		sess.PendingUpdate = ""
		sess.SetMode(store.ModeNone)

		if err := d.engine.Stop(ctx); err != nil {
			d.logger.Printf("[DISPATCH] engine stop before restart failed: %v", err)
		}
		sess.HasStarted = false
		res.event(EventStopped, sess.SimulationID)

		merged := sess.Slots.Idea + "\n\nUpdate: " + pending
		sess.Slots.SetExplicit(slots.FieldIdea, merged)
		d.refreshResearch(ctx, sess, res, pending)

		res.append(sess, d.builder.Text("update_applied", sess.Locale))
		d.startSimulation(ctx, sess, res, true)
		return res

	case intent.Negative(turn):
		sess.PendingUpdate = ""
		sess.SetMode(store.ModeNone)
		res.append(sess, d.builder.Text("update_discarded", sess.Locale))
		return res

	default:
		res.append(sess, d.builder.Text("yes_or_no", sess.Locale))
		return res
	}
}

// handleConfigReview resolves the final gate. Yes starts the engine; any
// other turn is treated as an edit and re-reviewed.
func (d *Dispatcher) handleConfigReview(ctx context.Context, sess *store.Session, turn string) *Result {
	res := &Result{}

	if intent.Affirmative(turn) {
		sess.SetMode(store.ModeNone)
		d.startSimulation(ctx, sess, res, false)
		return res
	}

	outcome := d.extractor.Run(ctx, turn, sess.Slots)
	sess.SetMode(store.ModeNone)
	d.applyOutcome(ctx, sess, res, outcome)
	return res
}

// Advance re-runs the slot-completion step after an out-of-band mutation
// (chip selection, config PATCH) so the conversation keeps moving.
func (d *Dispatcher) Advance(sess *store.Session) *Result {
	res := &Result{}
	d.advance(sess, res)
	return res
}

// applyOutcome merges an extraction outcome into the session, triggers the
// research refresh when the idea changed, surfaces the backend's follow-up
// question, and advances toward the next missing slot.
func (d *Dispatcher) applyOutcome(ctx context.Context, sess *store.Session, res *Result, outcome *extract.Outcome) {
	if len(outcome.Locations) > 1 {
		sess.LocationChoices = outcome.Locations
		sess.SetMode(store.ModeWaitingForLocationChoice)
		res.append(sess, d.builder.LocationChoices(outcome.Locations, sess.Locale))
		return
	}
	if len(outcome.Locations) == 1 {
		l := outcome.Locations[0]
		if outcome.Proposal.Country == nil && l.Country != "" {
			outcome.Proposal.Country = &l.Country
		}
		if outcome.Proposal.City == nil && l.City != "" {
			outcome.Proposal.City = &l.City
		}
	}

	changed := sess.Slots.MergeInferred(outcome.Proposal)
	for _, f := range changed {
		if f == slots.FieldIdea {
			d.refreshResearch(ctx, sess, res, sess.Slots.Idea)
			break
		}
	}

	if outcome.Question != "" {
		res.append(sess, outcome.Question)
		return
	}
	d.advance(sess, res)
}

// advance asks for the first missing slot in the canonical order, or moves
// to the config review when everything required is filled. Enumerable slots
// get chip prompts; location slots get dedicated waiting modes. The
// optional maturity chips are offered exactly once.
func (d *Dispatcher) advance(sess *store.Session, res *Result) {
	missing := sess.Slots.Missing()
	if len(missing) == 0 {
		if sess.Slots.IdeaMaturity == "" && !sess.MaturityPrompted {
			sess.MaturityPrompted = true
			res.appendPrompt(sess,
				d.builder.AskFor(slots.FieldIdeaMaturity, sess.Locale),
				d.builder.OptionPrompt(slots.FieldIdeaMaturity, sess.Locale))
			return
		}
		sess.SetMode(store.ModePendingConfigReview)
		res.append(sess, d.builder.Summary(sess.Slots, sess.Locale))
		return
	}

	first := missing[0]
	switch first {
	case slots.FieldCountry:
		sess.SetMode(store.ModeWaitingForCountry)
		res.append(sess, d.builder.AskFor(first, sess.Locale))
	case slots.FieldCity:
		sess.SetMode(store.ModeWaitingForCity)
		res.append(sess, d.builder.AskFor(first, sess.Locale))
	case slots.FieldCategory, slots.FieldTargetAudience, slots.FieldGoals:
		res.appendPrompt(sess,
			d.builder.AskFor(first, sess.Locale),
			d.builder.OptionPrompt(first, sess.Locale))
	default:
		res.append(sess, d.builder.AskFor(first, sess.Locale))
	}
}

// refreshResearch swaps the research context wholesale. On failure the old
// context is cleared and, once per session, a notice is appended so the
// user knows the start will proceed without background research.
func (d *Dispatcher) refreshResearch(ctx context.Context, sess *store.Session, res *Result, ideaText string) {
	r := d.researcher.Run(ctx, ideaText, sess.Locale)
	if r.Failed {
		sess.Research = store.ResearchContext{}
		if !sess.ResearchNoticeShown {
			sess.ResearchNoticeShown = true
			res.append(sess, d.builder.Text("research_notice", sess.Locale))
		}
		return
	}
	sess.Research = r.Context
}

// startSimulation snapshots the slots into an immutable config and races
// the engine start against its budget. Failure is the one hard-failure
// path in the conversation: it resets HasStarted and tells the user.
func (d *Dispatcher) startSimulation(ctx context.Context, sess *store.Session, res *Result, restart bool) {
	cfg := simulation.StartConfig{
		Idea:            sess.Slots.Idea,
		Category:        sess.Slots.Category,
		TargetAudience:  append([]string(nil), sess.Slots.TargetAudience...),
		Country:         sess.Slots.Country,
		City:            sess.Slots.City,
		RiskAppetite:    sess.Slots.RiskAppetite,
		IdeaMaturity:    sess.Slots.IdeaMaturity,
		Goals:           append([]string(nil), sess.Slots.Goals...),
		Locale:          sess.Locale,
		ResearchSummary: sess.Research.Summary,
		Sources:         append([]store.SourceRef(nil), sess.Research.Sources...),
	}

	started, err := timeout.Race(ctx, d.startBudget, func(cc context.Context) (*simulation.StartResult, error) {
		return d.engine.Start(cc, cfg)
	})
	if err != nil {
		d.logger.Printf("[DISPATCH] simulation start failed: %v", err)
		sess.HasStarted = false
		res.append(sess, d.builder.Text("start_failed", sess.Locale))
		res.event(EventStartFailed, "")
		return
	}

	sess.SimulationID = started.SimulationID
	sess.HasStarted = true
	sess.SetMode(store.ModeNone)
	res.append(sess, d.builder.Text("start_ok", sess.Locale))
	if restart {
		res.event(EventRestarted, started.SimulationID)
	} else {
		res.event(EventStarted, started.SimulationID)
	}
}

// shortContext is the last few transcript lines, enough for the intent
// classifiers to disambiguate elliptical turns.
func (d *Dispatcher) shortContext(sess *store.Session) string {
	const window = 4
	start := len(sess.Transcript) - window
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	for _, m := range sess.Transcript[start:] {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Text)
	}
	return sb.String()
}

func (r *Result) append(sess *store.Session, text string) {
	r.Messages = append(r.Messages, sess.Append(store.RoleSystem, text))
}

func (r *Result) appendPrompt(sess *store.Session, text string, p *store.OptionPrompt) {
	r.Messages = append(r.Messages, sess.AppendPrompt(text, p))
}

func (r *Result) event(typ, simulationID string) {
	r.Events = append(r.Events, LifecycleEvent{Type: typ, SimulationID: simulationID})
}
