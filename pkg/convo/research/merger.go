package research

import (
	"context"
	"log"
	"strings"
	"time"

	"agent-sim-be/pkg/nlu"
	"agent-sim-be/pkg/store"
	"agent-sim-be/pkg/timeout"
)

// siteBoost narrows the web search toward market-signal sources. Appended
// verbatim to every research query.
const siteBoost = "market size competitors site:crunchbase.com OR site:statista.com OR site:techcrunch.com"

// Result carries either a fresh research context or a failure marker. A
// failed run clears whatever context the session held before; stale research
// must never survive an idea change.
type Result struct {
	Context store.ResearchContext
	Failed  bool
}

// Merger runs one bounded web search per idea-bearing turn and condenses the
// response into a research context the dispatcher swaps in wholesale.
type Merger struct {
	client     nlu.Client
	budget     time.Duration
	maxResults int
	logger     *log.Logger
}

func NewMerger(client nlu.Client, budget time.Duration, maxResults int, logger *log.Logger) *Merger {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Merger{client: client, budget: budget, maxResults: maxResults, logger: logger}
}

// Run performs the search. Any error (timeout, transport, empty payload)
// yields Failed=true with an empty context; the caller decides whether the
// one-time notice is owed.
func (m *Merger) Run(ctx context.Context, ideaTurn, locale string) Result {
	query := strings.TrimSpace(ideaTurn) + " " + siteBoost

	res, err := timeout.Race(ctx, m.budget, func(cc context.Context) (*nlu.SearchResult, error) {
		return m.client.SearchWeb(cc, query, locale, m.maxResults)
	})
	if err != nil {
		m.logger.Printf("[RESEARCH] search failed, clearing context: %v", err)
		return Result{Failed: true}
	}
	if res == nil || (res.Answer == "" && len(res.Results) == 0) {
		m.logger.Printf("[RESEARCH] search returned nothing usable")
		return Result{Failed: true}
	}

	rc := store.ResearchContext{
		Summary:   res.Answer,
		FetchedAt: time.Now(),
	}
	var snippets []string
	for i, item := range res.Results {
		if i >= m.maxResults {
			break
		}
		rc.Sources = append(rc.Sources, store.SourceRef{
			Title:   item.Title,
			URL:     item.URL,
			Domain:  item.Domain,
			Snippet: item.Snippet,
		})
		if item.Snippet != "" {
			snippets = append(snippets, item.Snippet)
		}
	}
	if rc.Summary == "" {
		rc.Summary = strings.Join(snippets, " ")
	}
	if rc.Summary == "" {
		return Result{Failed: true}
	}
	return Result{Context: rc}
}
