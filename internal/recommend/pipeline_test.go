package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/vendormatch/recommender/internal/vectorstore"
)

const extractionResponse = `{
	"job_type": "fire protection",
	"services_needed": ["fire sprinkler servicing"],
	"location": "Leeds",
	"urgency": "normal",
	"optimized_query": "fire sprinkler servicing warehouse"
}`

const rerankResponse = `{
	"user_need_analysis": "sprinkler servicing at a warehouse",
	"required_service_types": ["fire protection"],
	"rankings": [
		{"rank": 1, "candidate_id": "2", "relevance_score": 0.92, "reasoning": "direct match"},
		{"rank": 2, "candidate_id": "1", "relevance_score": 0.64, "reasoning": "partial match"}
	]
}`

func TestRun_FullFlow(t *testing.T) {
	llmMock := &mockLLM{responses: []string{extractionResponse, rerankResponse}}
	store := &mockStore{matches: []vectorstore.Match{
		{DocID: "1", Distance: 0.4, Metadata: map[string]string{"company_name": "General Maintenance Co"}},
		{DocID: "2", Distance: 0.6, Metadata: map[string]string{"company_name": "Leeds Fire Systems", "city": "Leeds"}},
	}}

	p := newTestPipeline(llmMock, store)
	st := p.Run(context.Background(), "Service our fire sprinkler system at a Leeds warehouse")

	// Extraction fed retrieval with the location-enhanced optimized query.
	if store.lastQuery != "fire sprinkler servicing warehouse Leeds" {
		t.Errorf("retrieval query = %q", store.lastQuery)
	}

	if len(st.Ranked) != 2 {
		t.Fatalf("expected 2 ranked vendors, got %d", len(st.Ranked))
	}
	if st.Ranked[0].CompanyName != "Leeds Fire Systems" {
		t.Errorf("unexpected top vendor %q", st.Ranked[0].CompanyName)
	}
	if st.Ranked[0].Rank != 1 || st.Ranked[1].Rank != 2 {
		t.Errorf("ranks not dense: %+v", st.Ranked)
	}
	if st.Err != "" {
		t.Errorf("unexpected error %q", st.Err)
	}

	// The state keeps the untouched original query throughout.
	if st.Query != "Service our fire sprinkler system at a Leeds warehouse" {
		t.Errorf("query mutated: %q", st.Query)
	}
}

func TestRun_PerRunTopK(t *testing.T) {
	matches := []vectorstore.Match{
		{DocID: "1", Distance: 0.4, Metadata: map[string]string{"company_name": "General Maintenance Co"}},
		{DocID: "2", Distance: 0.6, Metadata: map[string]string{"company_name": "Leeds Fire Systems"}},
	}

	llmMock := &mockLLM{responses: []string{extractionResponse, rerankResponse}}
	p := newTestPipeline(llmMock, &mockStore{matches: matches})

	st := p.Run(context.Background(), "q", WithTopK(1))
	if len(st.Ranked) != 1 {
		t.Fatalf("expected 1 ranked vendor, got %d", len(st.Ranked))
	}
	if st.Ranked[0].CandidateID != "2" || st.Ranked[0].Rank != 1 {
		t.Errorf("unexpected top vendor %+v", st.Ranked[0])
	}

	// A requested top_k above the configured maximum is capped to it.
	llmMock = &mockLLM{responses: []string{extractionResponse, rerankResponse}}
	p = newTestPipeline(llmMock, &mockStore{matches: matches}, WithRerankTopK(1))

	st = p.Run(context.Background(), "q", WithTopK(99))
	if len(st.Ranked) != 1 {
		t.Errorf("expected the configured cap of 1, got %d", len(st.Ranked))
	}
}

func TestRun_EarlierErrorSurvivesLaterSuccess(t *testing.T) {
	// Extraction output is garbage; retrieval and reranking then succeed.
	llmMock := &mockLLM{responses: []string{"not json at all", rerankResponse}}
	store := &mockStore{matches: []vectorstore.Match{
		{DocID: "1", Distance: 0.4, Metadata: map[string]string{"company_name": "A"}},
		{DocID: "2", Distance: 0.6, Metadata: map[string]string{"company_name": "B"}},
	}}

	p := newTestPipeline(llmMock, store)
	st := p.Run(context.Background(), "dig a hole")

	// Retrieval fell back to the raw query.
	if store.lastQuery != "dig a hole" {
		t.Errorf("retrieval query = %q", store.lastQuery)
	}
	if len(st.Ranked) != 2 {
		t.Fatalf("expected ranked vendors despite extraction failure, got %d", len(st.Ranked))
	}
	// The extraction degradation stays visible; later success does not clear it.
	if st.Err == "" {
		t.Error("expected the extraction error to be preserved")
	}
}

func TestRun_StoreUnavailable(t *testing.T) {
	llmMock := &mockLLM{responses: []string{extractionResponse}}
	store := &mockStore{err: errors.New("store gone")}

	p := newTestPipeline(llmMock, store)
	st := p.Run(context.Background(), "anything")

	if len(st.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(st.Candidates))
	}
	if st.Ranked == nil || len(st.Ranked) != 0 {
		t.Errorf("expected empty ranking, got %v", st.Ranked)
	}
	if st.Err == "" {
		t.Error("expected a recorded error")
	}
	// Only the extraction call happened; reranking must not call the model
	// with zero candidates.
	if len(llmMock.prompts) != 1 {
		t.Errorf("expected 1 model call, got %d", len(llmMock.prompts))
	}
}
