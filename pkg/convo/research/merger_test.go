package research

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"agent-sim-be/pkg/nlu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	result *nlu.SearchResult
	err    error
	query  string
}

func (f *fakeClient) Extract(ctx context.Context, turn string, current nlu.SlotContext) (*nlu.ExtractResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) DetectStartIntent(ctx context.Context, turn, shortContext string) (bool, error) {
	return false, errors.New("not used")
}

func (f *fakeClient) DetectMessageMode(ctx context.Context, turn, shortContext, locale string) (nlu.MessageMode, error) {
	return "", errors.New("not used")
}

func (f *fakeClient) SearchWeb(ctx context.Context, query, locale string, maxResults int) (*nlu.SearchResult, error) {
	f.query = query
	return f.result, f.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestRunBuildsContextFromAnswer(t *testing.T) {
	client := &fakeClient{
		result: &nlu.SearchResult{
			Answer: "The market is crowded but growing.",
			Results: []nlu.SearchItem{
				{Title: "Report", URL: "https://example.com/r", Domain: "example.com", Snippet: "growth 12%"},
			},
		},
	}
	m := NewMerger(client, time.Second, 5, testLogger())

	res := m.Run(context.Background(), "meal kit delivery", "en")
	require.False(t, res.Failed)
	assert.Equal(t, "The market is crowded but growing.", res.Context.Summary)
	require.Len(t, res.Context.Sources, 1)
	assert.Equal(t, "example.com", res.Context.Sources[0].Domain)
	assert.Contains(t, client.query, "meal kit delivery")
	assert.Contains(t, client.query, "crunchbase.com")
}

func TestRunJoinsSnippetsWithoutAnswer(t *testing.T) {
	client := &fakeClient{
		result: &nlu.SearchResult{
			Results: []nlu.SearchItem{
				{Title: "A", URL: "https://a", Snippet: "first"},
				{Title: "B", URL: "https://b", Snippet: "second"},
			},
		},
	}
	m := NewMerger(client, time.Second, 5, testLogger())

	res := m.Run(context.Background(), "idea", "en")
	require.False(t, res.Failed)
	assert.Equal(t, "first second", res.Context.Summary)
}

func TestRunCapsSources(t *testing.T) {
	client := &fakeClient{
		result: &nlu.SearchResult{
			Answer: "ok",
			Results: []nlu.SearchItem{
				{URL: "1"}, {URL: "2"}, {URL: "3"},
			},
		},
	}
	m := NewMerger(client, time.Second, 2, testLogger())

	res := m.Run(context.Background(), "idea", "en")
	require.False(t, res.Failed)
	assert.Len(t, res.Context.Sources, 2)
}

func TestRunFailureClearsEverything(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{name: "transport error", client: &fakeClient{err: &nlu.TransportError{Op: "search"}}},
		{name: "empty result", client: &fakeClient{result: &nlu.SearchResult{}}},
		{name: "nil result", client: &fakeClient{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMerger(tt.client, time.Second, 5, testLogger())
			res := m.Run(context.Background(), "idea", "en")
			assert.True(t, res.Failed)
			assert.True(t, res.Context.Empty())
		})
	}
}
