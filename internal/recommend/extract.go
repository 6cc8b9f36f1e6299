package recommend

import (
	"context"
	"strings"

	"github.com/vendormatch/recommender/internal/llm"
	"github.com/vendormatch/recommender/internal/structured"
)

// extract turns the raw query into an ExtractedIntent. It never fails outward:
// any model or parse failure degrades to an intent whose optimized query is the
// untouched original, so retrieval always has something usable.
func (p *Pipeline) extract(ctx context.Context, st State) State {
	prompt := extractionPrompt(st.Query)

	response, err := p.llm.Generate(ctx, prompt, llm.GenerateOptions{
		Model:       p.model,
		Temperature: 0,
	})
	if err != nil {
		p.logger.Warn("extraction model call failed", "error", err)
		return extractFallback(st)
	}

	var intent ExtractedIntent
	if perr := structured.Unmarshal(response, &intent); perr != nil {
		p.logger.Warn("extraction output unparseable",
			"kind", perr.Kind.String(),
			"error", perr.Err,
			"raw", truncate(response, 300),
		)
		return extractFallback(st)
	}

	normalizeIntent(&intent)
	intent.OptimizedQuery = enhanceQueryWithLocation(intent.OptimizedQuery, intent.Location)

	p.logger.Info("extracted intent",
		"job_type", intent.JobType,
		"services", intent.ServicesNeeded,
		"location", intent.Location,
		"optimized_query", intent.OptimizedQuery,
	)

	st.Intent = &intent
	return st
}

// extractFallback produces the degraded intent used when structured
// understanding fails.
func extractFallback(st State) State {
	st.Intent = &ExtractedIntent{
		JobType:        "unknown",
		ServicesNeeded: []string{},
		Urgency:        UrgencyNormal,
		OptimizedQuery: st.Query,
	}
	st.Err = "extraction failed, using original query"
	return st
}

// normalizeIntent cleans up tolerated model sloppiness: a literal "null"
// location and out-of-vocabulary urgency values.
func normalizeIntent(intent *ExtractedIntent) {
	if strings.EqualFold(strings.TrimSpace(intent.Location), "null") {
		intent.Location = ""
	}
	switch intent.Urgency {
	case UrgencyUrgent, UrgencyNormal, UrgencyFlexible:
	default:
		intent.Urgency = UrgencyNormal
	}
	if intent.ServicesNeeded == nil {
		intent.ServicesNeeded = []string{}
	}
}

// enhanceQueryWithLocation appends the extracted location to the optimized
// query exactly once. Local vendors rank much higher in embedding search when
// the place name is present in the query text. The containment check is
// case-insensitive so re-applying the rule never double-appends.
func enhanceQueryWithLocation(optimizedQuery, location string) string {
	if location == "" {
		return optimizedQuery
	}
	if strings.Contains(strings.ToLower(optimizedQuery), strings.ToLower(location)) {
		return optimizedQuery
	}
	return optimizedQuery + " " + location
}

// truncate shortens s for log output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
