package dispatch

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"agent-sim-be/pkg/convo/extract"
	"agent-sim-be/pkg/convo/intent"
	"agent-sim-be/pkg/convo/prompt"
	"agent-sim-be/pkg/convo/research"
	"agent-sim-be/pkg/convo/slots"
	"agent-sim-be/pkg/nlu"
	"agent-sim-be/pkg/simulation"
	"agent-sim-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient pops one extraction result per Extract call and returns
// fixed answers for the other methods.
type scriptedClient struct {
	extracts   []*nlu.ExtractResult
	extractErr error
	start      bool
	startErr   error
	mode       nlu.MessageMode
	modeErr    error
	search     *nlu.SearchResult
	searchErr  error
}

func (c *scriptedClient) Extract(ctx context.Context, turn string, current nlu.SlotContext) (*nlu.ExtractResult, error) {
	if c.extractErr != nil {
		return nil, c.extractErr
	}
	if len(c.extracts) == 0 {
		return &nlu.ExtractResult{}, nil
	}
	r := c.extracts[0]
	c.extracts = c.extracts[1:]
	return r, nil
}

func (c *scriptedClient) DetectStartIntent(ctx context.Context, turn, shortContext string) (bool, error) {
	return c.start, c.startErr
}

func (c *scriptedClient) DetectMessageMode(ctx context.Context, turn, shortContext, locale string) (nlu.MessageMode, error) {
	return c.mode, c.modeErr
}

func (c *scriptedClient) SearchWeb(ctx context.Context, query, locale string, maxResults int) (*nlu.SearchResult, error) {
	return c.search, c.searchErr
}

type fakeEngine struct {
	starts   []simulation.StartConfig
	stops    int
	startErr error
	nextID   string
}

func (e *fakeEngine) Start(ctx context.Context, cfg simulation.StartConfig) (*simulation.StartResult, error) {
	if e.startErr != nil {
		return nil, e.startErr
	}
	e.starts = append(e.starts, cfg)
	if e.nextID == "" {
		e.nextID = "sim-1"
	}
	return &simulation.StartResult{SimulationID: e.nextID, Status: simulation.StatusRunning}, nil
}

func (e *fakeEngine) Stop(ctx context.Context) error {
	e.stops++
	return nil
}

func strptr(s string) *string { return &s }

func newDispatcher(client nlu.Client, engine simulation.Engine) *Dispatcher {
	logger := log.New(os.Stderr, "", 0)
	return NewDispatcher(
		extract.NewOrchestrator(client, time.Second, logger),
		intent.NewClassifier(client, time.Second, logger),
		research.NewMerger(client, time.Second, 5, logger),
		engine,
		prompt.NewBuilder(),
		time.Second,
		logger,
	)
}

func readySession() *store.Session {
	sess := store.NewSession("u", "en")
	sess.Slots.SetExplicit(slots.FieldIdea, "meal kit delivery")
	sess.Slots.SetExplicit(slots.FieldCountry, "Egypt")
	sess.Slots.SetExplicit(slots.FieldCity, "Cairo")
	sess.Slots.SetExplicit(slots.FieldCategory, "food")
	sess.Slots.SetExplicit(slots.FieldTargetAudience, []string{"families"})
	sess.Slots.SetExplicit(slots.FieldGoals, []string{"validate_demand"})
	sess.MaturityPrompted = true
	return sess
}

func TestRichFirstTurnFillsSlotsAndAsksForAudience(t *testing.T) {
	client := &scriptedClient{
		extracts: []*nlu.ExtractResult{{
			Idea:     strptr("a fintech app"),
			Country:  strptr("Egypt"),
			City:     strptr("Cairo"),
			Category: strptr("fintech"),
		}},
		search: &nlu.SearchResult{Answer: "busy market"},
	}
	d := newDispatcher(client, &fakeEngine{})
	sess := store.NewSession("u", "en")

	result := d.HandleTurn(context.Background(), sess, "I want a fintech app for Cairo, Egypt")

	assert.Equal(t, "a fintech app", sess.Slots.Idea)
	assert.Equal(t, "finance", sess.Slots.Category, "fintech must normalize to the canonical key")
	assert.Equal(t, "Egypt", sess.Slots.Country)
	assert.Equal(t, "Cairo", sess.Slots.City)
	assert.Equal(t, "busy market", sess.Research.Summary, "idea change must trigger research")
	assert.Equal(t, store.ModeNone, sess.Mode)

	require.NotEmpty(t, result.Messages)
	last := result.Messages[len(result.Messages)-1]
	require.NotNil(t, last.Prompt, "next missing enumerable slot gets an option prompt")
	assert.Equal(t, slots.FieldTargetAudience, last.Prompt.Field)
}

func TestAmbiguousLocationOffersChoices(t *testing.T) {
	client := &scriptedClient{
		extracts: []*nlu.ExtractResult{{
			Locations: []nlu.LocationPair{
				{Country: "Egypt", City: "Alexandria"},
				{Country: "United States", City: "Alexandria"},
			},
		}},
	}
	d := newDispatcher(client, &fakeEngine{})
	sess := store.NewSession("u", "en")
	sess.Slots.SetExplicit(slots.FieldIdea, "an app")
	sess.SetMode(store.ModeWaitingForCity)

	result := d.HandleTurn(context.Background(), sess, "Alexandria")

	assert.Equal(t, store.ModeWaitingForLocationChoice, sess.Mode)
	require.Len(t, sess.LocationChoices, 2)
	require.NotEmpty(t, result.Messages)
	assert.Contains(t, result.Messages[0].Text, "1. Alexandria, Egypt")

	// Picking by number settles both fields and leaves the choice mode.
	d.HandleTurn(context.Background(), sess, "2")
	assert.Equal(t, "United States", sess.Slots.Country)
	assert.Equal(t, "Alexandria", sess.Slots.City)
	assert.Equal(t, store.ModeNone, sess.Mode)
	assert.Nil(t, sess.LocationChoices)
	assert.True(t, sess.Slots.IsTouched(slots.FieldCountry), "a pick is an explicit choice")
}

func TestInvalidChoiceNumberRetries(t *testing.T) {
	d := newDispatcher(&scriptedClient{}, &fakeEngine{})
	sess := store.NewSession("u", "en")
	sess.LocationChoices = []store.LocationChoice{{Country: "Egypt", City: "Alexandria"}}
	sess.Mode = store.ModeWaitingForLocationChoice

	d.HandleTurn(context.Background(), sess, "7")
	assert.Equal(t, store.ModeWaitingForLocationChoice, sess.Mode, "out-of-range pick keeps the choices open")
	assert.Len(t, sess.LocationChoices, 1)
}

func TestReviewThenStart(t *testing.T) {
	engine := &fakeEngine{nextID: "sim-42"}
	d := newDispatcher(&scriptedClient{}, engine)
	sess := readySession()
	sess.SetMode(store.ModePendingConfigReview)
	sess.Research = store.ResearchContext{Summary: "notes"}

	result := d.HandleTurn(context.Background(), sess, "yes")

	require.Len(t, engine.starts, 1)
	assert.Equal(t, "meal kit delivery", engine.starts[0].Idea)
	assert.Equal(t, "notes", engine.starts[0].ResearchSummary)
	assert.True(t, sess.HasStarted)
	assert.Equal(t, "sim-42", sess.SimulationID)
	assert.Equal(t, store.ModeNone, sess.Mode)

	require.Len(t, result.Events, 1)
	assert.Equal(t, EventStarted, result.Events[0].Type)
	assert.Equal(t, "sim-42", result.Events[0].SimulationID)
}

func TestStartFailureResetsStartedFlag(t *testing.T) {
	engine := &fakeEngine{startErr: errors.New("engine down")}
	d := newDispatcher(&scriptedClient{}, engine)
	sess := readySession()
	sess.SetMode(store.ModePendingConfigReview)

	result := d.HandleTurn(context.Background(), sess, "yes")

	assert.False(t, sess.HasStarted)
	assert.Empty(t, sess.SimulationID)
	require.Len(t, result.Events, 1)
	assert.Equal(t, EventStartFailed, result.Events[0].Type)
	// Slots survive a failed start untouched.
	assert.True(t, sess.Slots.Ready())
}

func TestMidRunUpdateConfirmation(t *testing.T) {
	engine := &fakeEngine{nextID: "sim-2"}
	client := &scriptedClient{
		mode:   nlu.ModeUpdate,
		search: &nlu.SearchResult{Answer: "fresh research"},
	}
	d := newDispatcher(client, engine)
	sess := readySession()
	sess.HasStarted = true
	sess.SimulationID = "sim-1"

	d.HandleTurn(context.Background(), sess, "add a premium tier")
	assert.Equal(t, store.ModePendingUpdateConfirmation, sess.Mode)
	assert.Equal(t, "add a premium tier", sess.PendingUpdate)
	assert.Equal(t, "meal kit delivery", sess.Slots.Idea, "nothing applied before confirmation")

	result := d.HandleTurn(context.Background(), sess, "yes")

	assert.Equal(t, 1, engine.stops)
	assert.Equal(t, "meal kit delivery\n\nUpdate: add a premium tier", sess.Slots.Idea)
	assert.Equal(t, "fresh research", sess.Research.Summary)
	assert.True(t, sess.HasStarted)
	assert.Equal(t, "sim-2", sess.SimulationID)
	assert.Empty(t, sess.PendingUpdate)

	types := []string{}
	for _, e := range result.Events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{EventStopped, EventRestarted}, types)
}

func TestMidRunUpdateDiscarded(t *testing.T) {
	engine := &fakeEngine{}
	d := newDispatcher(&scriptedClient{mode: nlu.ModeUpdate}, engine)
	sess := readySession()
	sess.HasStarted = true
	sess.SimulationID = "sim-1"

	d.HandleTurn(context.Background(), sess, "change the city")
	d.HandleTurn(context.Background(), sess, "no")

	assert.Equal(t, 0, engine.stops)
	assert.Equal(t, store.ModeNone, sess.Mode)
	assert.Empty(t, sess.PendingUpdate)
	assert.True(t, sess.HasStarted)
	assert.Equal(t, "meal kit delivery", sess.Slots.Idea)
}

func TestMidRunUnclearAnswerReasks(t *testing.T) {
	d := newDispatcher(&scriptedClient{mode: nlu.ModeUpdate}, &fakeEngine{})
	sess := readySession()
	sess.HasStarted = true

	d.HandleTurn(context.Background(), sess, "make it cheaper")
	d.HandleTurn(context.Background(), sess, "hmm maybe later perhaps")

	assert.Equal(t, store.ModePendingUpdateConfirmation, sess.Mode, "unclear answer keeps the gate")
	assert.Equal(t, "make it cheaper", sess.PendingUpdate)
}

func TestMidRunDiscussDoesNotMutate(t *testing.T) {
	client := &scriptedClient{mode: nlu.ModeDiscuss}
	d := newDispatcher(client, &fakeEngine{})
	sess := readySession()
	sess.HasStarted = true
	sess.Research = store.ResearchContext{Summary: "agents liked the pricing"}

	result := d.HandleTurn(context.Background(), sess, "how did the agents react?")

	assert.Equal(t, store.ModeNone, sess.Mode)
	assert.Equal(t, "meal kit delivery", sess.Slots.Idea)
	require.NotEmpty(t, result.Messages)
	assert.Contains(t, result.Messages[0].Text, "agents liked the pricing")
}

func TestExtractionTimeoutFallsBackAndNoticesOnce(t *testing.T) {
	client := &scriptedClient{
		extractErr: nlu.ErrTimeout,
		searchErr:  errors.New("search down"),
	}
	d := newDispatcher(client, &fakeEngine{})
	sess := store.NewSession("u", "en")

	result := d.HandleTurn(context.Background(), sess, "a tutoring platform")

	assert.Equal(t, "a tutoring platform", sess.Slots.Idea, "timeout echoes the turn into the empty idea")
	assert.True(t, sess.Research.Empty())
	assert.True(t, sess.ResearchNoticeShown)

	noticeCount := 0
	for _, m := range result.Messages {
		if m.Text == prompt.NewBuilder().Text("research_notice", "en") {
			noticeCount++
		}
	}
	assert.Equal(t, 1, noticeCount)

	// A later idea change with research still failing must not repeat the notice.
	client.extractErr = nil
	client.extracts = []*nlu.ExtractResult{{Idea: strptr("a tutoring platform for adults")}}
	sess.SetMode(store.ModeNone)
	result = d.HandleTurn(context.Background(), sess, "make it for adults")
	for _, m := range result.Messages {
		assert.NotEqual(t, prompt.NewBuilder().Text("research_notice", "en"), m.Text)
	}
}

func TestQuestionSurfacedVerbatim(t *testing.T) {
	client := &scriptedClient{
		extracts: []*nlu.ExtractResult{{Question: "Did you mean a mobile app or a website?"}},
	}
	d := newDispatcher(client, &fakeEngine{})
	sess := store.NewSession("u", "en")

	result := d.HandleTurn(context.Background(), sess, "something digital")

	require.NotEmpty(t, result.Messages)
	assert.Equal(t, "Did you mean a mobile app or a website?", result.Messages[len(result.Messages)-1].Text)
	assert.Equal(t, store.ModeNone, sess.Mode)
}

func TestMaturityPromptedOnlyOnce(t *testing.T) {
	d := newDispatcher(&scriptedClient{}, &fakeEngine{})
	sess := readySession()
	sess.MaturityPrompted = false

	result := d.Advance(sess)
	require.NotEmpty(t, result.Messages)
	require.NotNil(t, result.Messages[0].Prompt)
	assert.Equal(t, slots.FieldIdeaMaturity, result.Messages[0].Prompt.Field)
	assert.True(t, sess.MaturityPrompted)
	assert.Equal(t, store.ModeNone, sess.Mode)

	// The second advance moves on to review even with maturity still empty.
	result = d.Advance(sess)
	assert.Equal(t, store.ModePendingConfigReview, sess.Mode)
}

func TestAwaitedCityCompletesConfigIntoReview(t *testing.T) {
	city := "Alexandria"
	client := &scriptedClient{
		extracts: []*nlu.ExtractResult{{City: &city}},
	}
	d := newDispatcher(client, &fakeEngine{})
	sess := store.NewSession("u", "en")
	sess.Slots.SetExplicit(slots.FieldIdea, "meal kit delivery")
	sess.Slots.SetExplicit(slots.FieldCountry, "Egypt")
	sess.Slots.SetExplicit(slots.FieldCategory, "food")
	sess.Slots.SetExplicit(slots.FieldTargetAudience, []string{"families"})
	sess.Slots.SetExplicit(slots.FieldGoals, []string{"validate_demand"})
	sess.MaturityPrompted = true
	sess.SetMode(store.ModeWaitingForCity)

	result := d.HandleTurn(context.Background(), sess, "Alexandria")

	assert.Equal(t, "Alexandria", sess.Slots.City)
	assert.Equal(t, store.ModePendingConfigReview, sess.Mode, "last slot filled moves straight to review")
	require.NotEmpty(t, result.Messages)
	assert.Contains(t, result.Messages[len(result.Messages)-1].Text, "Alexandria")
}

func TestAwaitedCountryAdvancesToCity(t *testing.T) {
	client := &scriptedClient{extractErr: nlu.ErrTimeout, searchErr: errors.New("down")}
	d := newDispatcher(client, &fakeEngine{})
	sess := store.NewSession("u", "en")
	sess.Slots.SetExplicit(slots.FieldIdea, "an app")
	sess.SetMode(store.ModeWaitingForCountry)

	d.HandleTurn(context.Background(), sess, "Egypt")

	assert.Equal(t, "Egypt", sess.Slots.Country)
	assert.Equal(t, store.ModeWaitingForCity, sess.Mode, "city is the next missing required slot")
}

func TestUserTurnAppendedToTranscript(t *testing.T) {
	client := &scriptedClient{extractErr: nlu.ErrTimeout, searchErr: errors.New("down")}
	d := newDispatcher(client, &fakeEngine{})
	sess := store.NewSession("u", "en")

	d.HandleTurn(context.Background(), sess, "hello there")

	require.NotEmpty(t, sess.Transcript)
	assert.Equal(t, store.RoleUser, sess.Transcript[0].Role)
	assert.Equal(t, "hello there", sess.Transcript[0].Text)
}
