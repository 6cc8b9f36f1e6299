package recommend

import (
	"context"
	"io"
	"log/slog"

	"github.com/vendormatch/recommender/internal/llm"
	"github.com/vendormatch/recommender/internal/vectorstore"
)

// mockLLM replays canned completions in order.
type mockLLM struct {
	responses []string
	err       error
	prompts   []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ llm.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

// mockStore serves canned matches and records the query it was asked.
type mockStore struct {
	matches   []vectorstore.Match
	err       error
	lastQuery string
	lastK     int
}

func (m *mockStore) EnsureCollection(context.Context, int) error { return nil }

func (m *mockStore) DeleteCollection(context.Context) error { return nil }

func (m *mockStore) Upsert(context.Context, []vectorstore.Document) error { return nil }

func (m *mockStore) Query(_ context.Context, text string, k int) ([]vectorstore.Match, error) {
	m.lastQuery = text
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

func (m *mockStore) ListIDs(context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

// quietLogger suppresses pipeline logging in tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestPipeline wires a pipeline with mocks and small defaults.
func newTestPipeline(llmClient llm.LLM, store vectorstore.Store, opts ...Option) *Pipeline {
	base := []Option{WithLogger(quietLogger())}
	return New(llmClient, store, append(base, opts...)...)
}
