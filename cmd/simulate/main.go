package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"agent-sim-be/pkg/convo/dispatch"
	"agent-sim-be/pkg/convo/extract"
	"agent-sim-be/pkg/convo/intent"
	"agent-sim-be/pkg/convo/prompt"
	"agent-sim-be/pkg/convo/research"
	"agent-sim-be/pkg/convo/slots"
	"agent-sim-be/pkg/nlu"
	"agent-sim-be/pkg/simulation"
	"agent-sim-be/pkg/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// offlineClient fails every call so the pipeline runs purely on heuristic
// fallbacks. Useful for checking the conversation flow without any backend.
type offlineClient struct{}

func (offlineClient) Extract(ctx context.Context, turn string, current nlu.SlotContext) (*nlu.ExtractResult, error) {
	return nil, errors.New("offline")
}

func (offlineClient) DetectStartIntent(ctx context.Context, turn, shortContext string) (bool, error) {
	return false, errors.New("offline")
}

func (offlineClient) DetectMessageMode(ctx context.Context, turn, shortContext, locale string) (nlu.MessageMode, error) {
	return "", errors.New("offline")
}

func (offlineClient) SearchWeb(ctx context.Context, query, locale string, maxResults int) (*nlu.SearchResult, error) {
	return nil, errors.New("offline")
}

// fakeEngine acknowledges every start immediately.
type fakeEngine struct{}

func (fakeEngine) Start(ctx context.Context, cfg simulation.StartConfig) (*simulation.StartResult, error) {
	return &simulation.StartResult{
		SimulationID: uuid.NewString(),
		Status:       simulation.StatusRunning,
	}, nil
}

func (fakeEngine) Stop(ctx context.Context) error { return nil }

func main() {
	userColor := color.New(color.FgCyan, color.Bold)
	sysColor := color.New(color.FgGreen)
	eventColor := color.New(color.FgYellow)

	logger := log.New(os.Stderr, "", 0)
	client := offlineClient{}

	d := dispatch.NewDispatcher(
		extract.NewOrchestrator(client, time.Second, logger),
		intent.NewClassifier(client, time.Second, logger),
		research.NewMerger(client, time.Second, 5, logger),
		fakeEngine{},
		prompt.NewBuilder(),
		time.Second,
		logger,
	)

	sess := store.NewSession("cli", "en")
	fmt.Println("=== Offline Conversation Simulation (heuristic fallbacks only) ===")

	ctx := context.Background()
	show := func(result *dispatch.Result) {
		for _, m := range result.Messages {
			sysColor.Printf("system> %s\n", m.Text)
			if m.Prompt != nil {
				for _, it := range m.Prompt.Items {
					sysColor.Printf("  [%s] %s\n", it.Value, it.Label)
				}
			}
		}
		for _, e := range result.Events {
			eventColor.Printf("event> %s %s\n", e.Type, e.SimulationID)
		}
		fmt.Printf("(mode=%s missing=%v)\n", sess.Mode, sess.Slots.Missing())
	}
	turn := func(text string) {
		userColor.Printf("\nuser> %s\n", text)
		show(d.HandleTurn(ctx, sess, text))
	}
	pick := func(field slots.Field, value any) {
		userColor.Printf("\nuser picks %s = %v\n", field, value)
		sess.Slots.SetExplicit(field, value)
		show(d.Advance(sess))
	}

	turn("I want to test a grocery delivery app")
	turn("Egypt")
	turn("Cairo")
	pick(slots.FieldCategory, "food")
	pick(slots.FieldTargetAudience, []string{"families", "professionals"})
	pick(slots.FieldGoals, []string{"validate_demand"})
	turn("concept stage works")
	turn("yes")
}
