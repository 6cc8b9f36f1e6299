package recommend

import (
	"context"
	"sort"

	"github.com/vendormatch/recommender/internal/llm"
	"github.com/vendormatch/recommender/internal/structured"
)

// rerank orders the retrieved candidates against the user's original query
// with a reasoning model. The model is only trusted to echo candidate ids:
// every ranked entry is joined back to the full candidate record through an
// identity map built before the call, never through echoed descriptive fields.
// If the model's output cannot be parsed, the similarity ordering from
// retrieval is returned instead.
func (p *Pipeline) rerank(ctx context.Context, st State, topK int) State {
	if len(st.Candidates) == 0 {
		// Nothing to rank. This is a terminal non-error case: with a failed
		// retrieval the state already carries that error, and an empty but
		// healthy index legitimately matches nothing.
		st.Ranked = []RankedVendor{}
		return st
	}

	prompt := rerankingPrompt(st.Query, formatCandidates(st.Candidates), topK)

	// Identity map for joining the model's rankings back to real records.
	byID := make(map[string]Candidate, len(st.Candidates))
	for _, c := range st.Candidates {
		byID[c.CandidateID] = c
	}

	response, err := p.llm.Generate(ctx, prompt, llm.GenerateOptions{
		Model:       p.model,
		Temperature: 0,
	})
	if err != nil {
		p.logger.Warn("reranking model call failed", "error", err)
		return p.rerankFallback(st, topK)
	}

	var output rerankOutput
	if perr := structured.Unmarshal(response, &output); perr != nil {
		p.logger.Warn("reranking output unparseable",
			"kind", perr.Kind.String(),
			"error", perr.Err,
			"raw", truncate(response, 500),
		)
		return p.rerankFallback(st, topK)
	}

	p.logger.Info("rerank analysis",
		"user_need", output.UserNeedAnalysis,
		"required_services", output.RequiredServiceTypes,
	)

	ranked := make([]RankedVendor, 0, topK)
	for _, entry := range output.Rankings {
		if len(ranked) >= topK {
			break
		}

		candidate, ok := byID[entry.CandidateID.String()]
		if !ok {
			// The model referenced an id it was never given. Skipped, never
			// fabricated.
			p.logger.Warn("rerank entry references unknown candidate",
				"candidate_id", entry.CandidateID.String())
			continue
		}

		ranked = append(ranked, RankedVendor{
			// Ranks are reassigned densely from 1: skipped entries would
			// otherwise leave gaps in the model's own numbering.
			Rank:           len(ranked) + 1,
			Candidate:      candidate,
			RelevanceScore: clampUnit(entry.RelevanceScore),
			Reasoning:      entry.Reasoning,
		})
	}

	p.logger.Info("ranked vendors", "count", len(ranked))

	st.Ranked = ranked
	return st
}

// rerankFallback returns the candidates in retrieval-similarity order when the
// model's ranking cannot be used. Deterministic: same candidates in, same
// ordering and scores out.
func (p *Pipeline) rerankFallback(st State, topK int) State {
	sorted := make([]Candidate, len(st.Candidates))
	copy(sorted, st.Candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SimilarityScore > sorted[j].SimilarityScore
	})

	if len(sorted) > topK {
		sorted = sorted[:topK]
	}

	ranked := make([]RankedVendor, len(sorted))
	for i, c := range sorted {
		ranked[i] = RankedVendor{
			Rank:           i + 1,
			Candidate:      c,
			RelevanceScore: c.SimilarityScore,
			Reasoning:      "Ranked by semantic similarity (LLM reranking unavailable)",
		}
	}

	st.Ranked = ranked
	st.Err = "reranking failed, using similarity ordering"
	return st
}

// clampUnit clamps a score to [0,1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
