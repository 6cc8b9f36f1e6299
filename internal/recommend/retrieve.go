package recommend

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// retrieve fetches candidate vendors for the optimized query. A store failure
// is fatal for the run: candidates stay empty and the error is recorded, but
// the pipeline continues so the caller still receives a well-formed result.
func (p *Pipeline) retrieve(ctx context.Context, st State) State {
	query := st.Query
	if st.Intent != nil && st.Intent.OptimizedQuery != "" {
		query = st.Intent.OptimizedQuery
	}

	matches, err := p.store.Query(ctx, query, p.retrievalTopK)
	if err != nil {
		p.logger.Error("candidate retrieval failed", "error", err)
		st.Candidates = []Candidate{}
		st.Err = fmt.Sprintf("vendor search failed: %v", err)
		return st
	}

	candidates := make([]Candidate, 0, len(matches))
	for i, match := range matches {
		// Prefer the persisted document id; fall back to the retrieval
		// position. Positional ids are only meaningful within this run.
		candidateID := match.DocID
		if candidateID == "" {
			candidateID = strconv.Itoa(i)
		}

		c := Candidate{
			CandidateID:     candidateID,
			CompanyName:     metadataOr(match.Metadata, "company_name", "Unknown"),
			TradingName:     match.Metadata["trading_name"],
			Services:        match.Metadata["services"],
			Products:        match.Metadata["products"],
			Industry:        match.Metadata["industry"],
			About:           match.Metadata["about"],
			City:            match.Metadata["city"],
			Address:         match.Metadata["address"],
			Phone:           match.Metadata["phone"],
			Email:           match.Metadata["email"],
			Website:         match.Metadata["website"],
			Employees:       match.Metadata["employees"],
			Certifications:  match.Metadata["certifications"],
			SimilarityScore: similarityFromDistance(match.Distance),
		}
		candidates = append(candidates, c)
	}

	p.logger.Info("retrieved candidates", "query", query, "count", len(candidates))

	st.Candidates = candidates
	return st
}

// similarityFromDistance maps a raw distance to a similarity in (0,1], higher
// = better: 1/(1+d) is bounded, strictly decreasing in distance, exactly 1
// only at zero distance, and needs no known maximum distance. Rounded to four
// decimals for stable display and prompt rendering.
func similarityFromDistance(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return math.Round(10000/(1+distance)) / 10000
}

func metadataOr(metadata map[string]string, key, fallback string) string {
	if v := metadata[key]; v != "" {
		return v
	}
	return fallback
}
