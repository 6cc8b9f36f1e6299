package recommend

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vendormatch/recommender/internal/vectorstore"
)

func TestSimilarityFromDistance(t *testing.T) {
	if got := similarityFromDistance(0); got != 1.0 {
		t.Errorf("similarity at zero distance = %v, want 1.0", got)
	}

	// Strictly decreasing in distance, always within (0, 1].
	prev := math.Inf(1)
	for _, d := range []float64{0, 0.1, 0.5, 1, 2, 10, 1000} {
		s := similarityFromDistance(d)
		if s <= 0 || s > 1 {
			t.Errorf("similarity(%v) = %v outside (0,1]", d, s)
		}
		if s >= prev {
			t.Errorf("similarity(%v) = %v not decreasing (prev %v)", d, s, prev)
		}
		prev = s
	}

	// Negative distances are clamped rather than producing scores above 1.
	if got := similarityFromDistance(-0.5); got != 1.0 {
		t.Errorf("similarity(-0.5) = %v, want 1.0", got)
	}
}

func TestRetrieve_UsesOptimizedQueryAndPersistedIDs(t *testing.T) {
	store := &mockStore{matches: []vectorstore.Match{
		{DocID: "17", Distance: 0.5, Metadata: map[string]string{
			"company_name": "Acme Sprinklers Ltd",
			"services":     "fire sprinkler servicing",
			"city":         "Leeds",
		}},
		{DocID: "", Distance: 1.0, Metadata: map[string]string{}},
	}}

	p := newTestPipeline(&mockLLM{}, store, WithRetrievalTopK(5))
	st := p.retrieve(context.Background(), State{
		Query:  "service sprinklers",
		Intent: &ExtractedIntent{JobType: "fire protection", OptimizedQuery: "fire sprinkler servicing Leeds"},
	})

	if store.lastQuery != "fire sprinkler servicing Leeds" {
		t.Errorf("retrieval must use the optimized query, got %q", store.lastQuery)
	}
	if store.lastK != 5 {
		t.Errorf("lastK = %d, want 5", store.lastK)
	}
	if len(st.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(st.Candidates))
	}

	if st.Candidates[0].CandidateID != "17" {
		t.Errorf("expected persisted doc id, got %q", st.Candidates[0].CandidateID)
	}
	// Missing persisted id falls back to the retrieval position.
	if st.Candidates[1].CandidateID != "1" {
		t.Errorf("expected positional fallback id \"1\", got %q", st.Candidates[1].CandidateID)
	}

	if st.Candidates[0].CompanyName != "Acme Sprinklers Ltd" {
		t.Errorf("unexpected company %q", st.Candidates[0].CompanyName)
	}
	if st.Candidates[1].CompanyName != "Unknown" {
		t.Errorf("missing company name must default to Unknown, got %q", st.Candidates[1].CompanyName)
	}

	if got := st.Candidates[0].SimilarityScore; got != similarityFromDistance(0.5) {
		t.Errorf("similarity = %v", got)
	}
	if st.Candidates[0].SimilarityScore <= st.Candidates[1].SimilarityScore {
		t.Error("closer match must score higher")
	}
}

func TestRetrieve_FallsBackToRawQueryWithoutIntent(t *testing.T) {
	store := &mockStore{}
	p := newTestPipeline(&mockLLM{}, store)

	p.retrieve(context.Background(), State{Query: "emergency plumber"})

	if store.lastQuery != "emergency plumber" {
		t.Errorf("expected raw query, got %q", store.lastQuery)
	}
}

func TestRetrieve_StoreErrorIsFatalButHandled(t *testing.T) {
	store := &mockStore{err: errors.New("connect: connection refused")}
	p := newTestPipeline(&mockLLM{}, store)

	st := p.retrieve(context.Background(), State{
		Query:  "q",
		Intent: &ExtractedIntent{JobType: "x", OptimizedQuery: "q"},
	})

	if st.Candidates == nil || len(st.Candidates) != 0 {
		t.Errorf("expected empty candidate slice, got %v", st.Candidates)
	}
	if st.Err == "" {
		t.Error("expected a recorded error")
	}
}
