package extract

import (
	"context"
	"log"
	"strings"
	"time"

	"agent-sim-be/pkg/catalog"
	"agent-sim-be/pkg/convo/normalize"
	"agent-sim-be/pkg/convo/slots"
	"agent-sim-be/pkg/nlu"
	"agent-sim-be/pkg/store"
	"agent-sim-be/pkg/timeout"
)

// Outcome is the orchestrator's reconciled result. The proposal went
// through the normalizer; merging it into slot state is the dispatcher's
// job (callers own the state, the orchestrator never mutates it).
type Outcome struct {
	Proposal slots.Proposal
	// Question is an optional follow-up from the extraction backend,
	// surfaced verbatim.
	Question string
	// Locations is set when the backend offered more than one plausible
	// country/city pairing.
	Locations []store.LocationChoice
	// Fallback marks that the call timed out or failed and the heuristic
	// result below was used instead.
	Fallback bool
}

// Orchestrator issues bounded-timeout schema extraction calls and falls
// back to heuristics on timeout or transport error. It never returns an
// error: a failed extraction degrades, it does not break the turn.
type Orchestrator struct {
	client nlu.Client
	budget time.Duration
	logger *log.Logger
}

func NewOrchestrator(client nlu.Client, budget time.Duration, logger *log.Logger) *Orchestrator {
	return &Orchestrator{client: client, budget: budget, logger: logger}
}

// Run extracts configuration fields from a free-text turn, biased by the
// current slot state. On failure the raw turn is echoed as the idea when
// the idea is still empty; all other fields are left as currently held.
func (o *Orchestrator) Run(ctx context.Context, turn string, current *slots.State) *Outcome {
	result, err := timeout.Race(ctx, o.budget, func(c context.Context) (*nlu.ExtractResult, error) {
		return o.client.Extract(c, turn, snapshot(current))
	})
	if err != nil {
		o.logger.Printf("[EXTRACT] call failed, using heuristic fallback: %v", err)
		return o.fallback(turn, current)
	}

	out := &Outcome{
		Proposal: reconcile(result),
		Question: strings.TrimSpace(result.Question),
	}
	for _, l := range result.Locations {
		out.Locations = append(out.Locations, store.LocationChoice{Country: l.Country, City: l.City})
	}
	return out
}

// RunLocation extracts only the awaited location field(s). The fallback
// here treats the whole turn as the awaited value, which keeps short
// answers like "Alexandria" working with the backend unreachable.
func (o *Orchestrator) RunLocation(ctx context.Context, turn string, awaited slots.Field, current *slots.State) *Outcome {
	result, err := timeout.Race(ctx, o.budget, func(c context.Context) (*nlu.ExtractResult, error) {
		return o.client.Extract(c, turn, snapshot(current))
	})
	if err != nil {
		o.logger.Printf("[EXTRACT] location call failed, echoing turn as %s: %v", awaited, err)
		value := strings.TrimSpace(turn)
		out := &Outcome{Fallback: true}
		if value == "" {
			return out
		}
		switch awaited {
		case slots.FieldCountry:
			out.Proposal.Country = &value
		case slots.FieldCity:
			out.Proposal.City = &value
		}
		return out
	}

	// Keep only the location parts of the extraction; a waiting mode
	// narrows what this turn is allowed to mean.
	out := &Outcome{}
	if result.Country != nil {
		out.Proposal.Country = result.Country
	}
	if result.City != nil {
		out.Proposal.City = result.City
	}
	for _, l := range result.Locations {
		out.Locations = append(out.Locations, store.LocationChoice{Country: l.Country, City: l.City})
	}

	// Backend understood the turn but saw no location in it: fall back to
	// the raw turn for the awaited field rather than dropping the answer.
	if out.Proposal.Country == nil && out.Proposal.City == nil && len(out.Locations) == 0 {
		value := strings.TrimSpace(turn)
		if value != "" {
			switch awaited {
			case slots.FieldCountry:
				out.Proposal.Country = &value
			case slots.FieldCity:
				out.Proposal.City = &value
			}
		}
	}
	return out
}

func (o *Orchestrator) fallback(turn string, current *slots.State) *Outcome {
	out := &Outcome{Fallback: true}
	if strings.TrimSpace(current.Idea) == "" {
		idea := strings.TrimSpace(turn)
		if idea != "" {
			out.Proposal.Idea = &idea
		}
	}
	return out
}

// reconcile runs every extracted field through the normalizer. Unmatched
// enum values are dropped, never guessed.
func reconcile(r *nlu.ExtractResult) slots.Proposal {
	var p slots.Proposal

	if r.Idea != nil && strings.TrimSpace(*r.Idea) != "" {
		idea := strings.TrimSpace(*r.Idea)
		p.Idea = &idea
	}
	if r.Country != nil && strings.TrimSpace(*r.Country) != "" {
		country := strings.TrimSpace(*r.Country)
		p.Country = &country
	}
	if r.City != nil && strings.TrimSpace(*r.City) != "" {
		city := strings.TrimSpace(*r.City)
		p.City = &city
	}
	if r.Category != nil {
		if key, ok := normalize.Category(*r.Category); ok {
			p.Category = &key
		}
	}
	if len(r.TargetAudience) > 0 {
		p.TargetAudience = normalize.OptionList(r.TargetAudience, catalog.Audiences())
	}
	if len(r.Goals) > 0 {
		p.Goals = normalize.OptionList(r.Goals, catalog.Goals())
	}
	if r.RiskAppetite != nil {
		risk := normalize.Risk(*r.RiskAppetite)
		p.RiskAppetite = &risk
	}
	if r.IdeaMaturity != nil {
		if key, ok := normalize.Maturity(*r.IdeaMaturity); ok {
			p.IdeaMaturity = &key
		}
	}
	return p
}

func snapshot(s *slots.State) nlu.SlotContext {
	return nlu.SlotContext{
		Idea:           s.Idea,
		Category:       s.Category,
		TargetAudience: append([]string(nil), s.TargetAudience...),
		Country:        s.Country,
		City:           s.City,
		RiskAppetite:   s.RiskAppetite,
		IdeaMaturity:   s.IdeaMaturity,
		Goals:          append([]string(nil), s.Goals...),
	}
}
