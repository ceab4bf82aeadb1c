package prompt

import (
	"strings"
	"testing"

	"agent-sim-be/pkg/convo/slots"
	"agent-sim-be/pkg/store"
)

func TestTextCoversBothLocales(t *testing.T) {
	b := NewBuilder()
	for key := range messages["en"] {
		if b.Text(key, "en") == "" {
			t.Errorf("missing english text for %q", key)
		}
		if b.Text(key, "ar") == "" {
			t.Errorf("missing arabic text for %q", key)
		}
	}
}

func TestTextFallsBackToEnglish(t *testing.T) {
	b := NewBuilder()
	if got := b.Text("greeting", "fr"); got != messages["en"]["greeting"] {
		t.Errorf("unknown locale should fall back to english, got %q", got)
	}
}

func TestOptionPromptKinds(t *testing.T) {
	b := NewBuilder()
	tests := []struct {
		field    slots.Field
		wantKind string
		minItems int
	}{
		{field: slots.FieldCategory, wantKind: store.PromptSingle, minItems: 10},
		{field: slots.FieldIdeaMaturity, wantKind: store.PromptSingle, minItems: 4},
		{field: slots.FieldTargetAudience, wantKind: store.PromptMulti, minItems: 8},
		{field: slots.FieldGoals, wantKind: store.PromptMulti, minItems: 6},
	}
	for _, tt := range tests {
		p := b.OptionPrompt(tt.field, "en")
		if p == nil {
			t.Fatalf("no prompt for %s", tt.field)
		}
		if p.Kind != tt.wantKind {
			t.Errorf("%s kind = %q, want %q", tt.field, p.Kind, tt.wantKind)
		}
		if len(p.Items) < tt.minItems {
			t.Errorf("%s items = %d, want at least %d", tt.field, len(p.Items), tt.minItems)
		}
	}

	if p := b.OptionPrompt(slots.FieldIdea, "en"); p != nil {
		t.Error("free-text fields must not get option prompts")
	}
}

func TestOptionPromptLocalizesLabels(t *testing.T) {
	b := NewBuilder()
	en := b.OptionPrompt(slots.FieldCategory, "en")
	ar := b.OptionPrompt(slots.FieldCategory, "ar")
	if en.Items[0].Label == ar.Items[0].Label {
		t.Errorf("labels identical across locales: %q", en.Items[0].Label)
	}
	if en.Items[0].Value != ar.Items[0].Value {
		t.Errorf("values must be locale independent: %q vs %q", en.Items[0].Value, ar.Items[0].Value)
	}
}

func TestSummaryListsFilledFields(t *testing.T) {
	b := NewBuilder()
	s := slots.New()
	s.SetExplicit(slots.FieldIdea, "meal kits")
	s.SetExplicit(slots.FieldCategory, "food")
	s.SetExplicit(slots.FieldCountry, "Egypt")
	s.SetExplicit(slots.FieldCity, "Cairo")
	s.SetExplicit(slots.FieldTargetAudience, []string{"families"})
	s.SetExplicit(slots.FieldGoals, []string{"validate_demand", "assess_risks"})

	got := b.Summary(s, "en")
	for _, want := range []string{"meal kits", "Food & Beverage", "Egypt", "Cairo", "Families", "Validate demand", "50/100"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Idea maturity") {
		t.Errorf("empty maturity should be omitted:\n%s", got)
	}
}

func TestLocationChoicesNumbered(t *testing.T) {
	b := NewBuilder()
	got := b.LocationChoices([]store.LocationChoice{
		{Country: "Egypt", City: "Alexandria"},
		{Country: "United States", City: "Alexandria"},
	}, "en")

	if !strings.Contains(got, "1. Alexandria, Egypt") || !strings.Contains(got, "2. Alexandria, United States") {
		t.Errorf("choices not numbered:\n%s", got)
	}
}

func TestDiscussUsesResearchWhenPresent(t *testing.T) {
	b := NewBuilder()
	withResearch := b.Discuss(store.ResearchContext{Summary: "crowded market"}, "en")
	if !strings.Contains(withResearch, "crowded market") {
		t.Errorf("research summary not surfaced: %q", withResearch)
	}
	without := b.Discuss(store.ResearchContext{}, "en")
	if strings.Contains(without, "crowded market") || without == "" {
		t.Errorf("fallback reply wrong: %q", without)
	}
}
