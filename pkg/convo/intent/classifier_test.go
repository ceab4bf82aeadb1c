package intent

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"agent-sim-be/pkg/nlu"
)

type fakeClient struct {
	start bool
	mode  nlu.MessageMode
	err   error
}

func (f *fakeClient) Extract(ctx context.Context, turn string, current nlu.SlotContext) (*nlu.ExtractResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) DetectStartIntent(ctx context.Context, turn, shortContext string) (bool, error) {
	return f.start, f.err
}

func (f *fakeClient) DetectMessageMode(ctx context.Context, turn, shortContext, locale string) (nlu.MessageMode, error) {
	return f.mode, f.err
}

func (f *fakeClient) SearchWeb(ctx context.Context, query, locale string, maxResults int) (*nlu.SearchResult, error) {
	return nil, errors.New("not used")
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestStartIntentUsesBackend(t *testing.T) {
	c := NewClassifier(&fakeClient{start: true}, time.Second, testLogger())
	if !c.StartIntent(context.Background(), "let us proceed with the simulation setup now", "") {
		t.Fatal("backend said start, classifier said no")
	}
}

func TestStartIntentHeuristicOnFailure(t *testing.T) {
	c := NewClassifier(&fakeClient{err: errors.New("down")}, time.Second, testLogger())

	tests := []struct {
		turn string
		want bool
	}{
		{turn: "yes", want: true},
		{turn: "ok go", want: true},
		{turn: "start it", want: true},
		{turn: "نعم", want: true},
		{turn: "يلا ابدأ", want: true},
		{turn: "no, not yet", want: false},
		{turn: "yes but first change the city to Alexandria please", want: false}, // too long for the heuristic
		{turn: "tell me more about the market", want: false},
	}
	for _, tt := range tests {
		if got := c.StartIntent(context.Background(), tt.turn, ""); got != tt.want {
			t.Errorf("StartIntent(%q) = %v, want %v", tt.turn, got, tt.want)
		}
	}
}

func TestMessageModeHeuristicOnFailure(t *testing.T) {
	c := NewClassifier(&fakeClient{err: errors.New("down")}, time.Second, testLogger())

	tests := []struct {
		turn string
		want nlu.MessageMode
	}{
		{turn: "how did the agents react?", want: nlu.ModeDiscuss},
		{turn: "ماذا حدث؟", want: nlu.ModeDiscuss},
		{turn: "make the price lower", want: nlu.ModeUpdate},
	}
	for _, tt := range tests {
		if got := c.MessageMode(context.Background(), tt.turn, "", "en"); got != tt.want {
			t.Errorf("MessageMode(%q) = %v, want %v", tt.turn, got, tt.want)
		}
	}
}

func TestAffirmativeNegative(t *testing.T) {
	tests := []struct {
		turn    string
		wantYes bool
		wantNo  bool
	}{
		{turn: "yes", wantYes: true},
		{turn: "Yes!", wantYes: true},
		{turn: "نعم", wantYes: true},
		{turn: "موافق", wantYes: true},
		{turn: "no", wantNo: true},
		{turn: "لا", wantNo: true},
		{turn: "cancel that", wantNo: true},
		{turn: "yes no maybe", wantNo: true}, // a negative anywhere wins
		{turn: "what do you mean"},
		{turn: ""},
	}
	for _, tt := range tests {
		if got := Affirmative(tt.turn); got != tt.wantYes {
			t.Errorf("Affirmative(%q) = %v, want %v", tt.turn, got, tt.wantYes)
		}
		if got := Negative(tt.turn); got != tt.wantNo {
			t.Errorf("Negative(%q) = %v, want %v", tt.turn, got, tt.wantNo)
		}
	}
}
