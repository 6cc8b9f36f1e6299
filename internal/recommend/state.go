// Package recommend implements the vendor recommendation pipeline: intent
// extraction, vector retrieval, and LLM reranking threaded through a single
// state record.
package recommend

import (
	"errors"
	"fmt"

	"github.com/vendormatch/recommender/internal/structured"
)

// Urgency levels recognized in extracted intent.
const (
	UrgencyUrgent   = "urgent"
	UrgencyNormal   = "normal"
	UrgencyFlexible = "flexible"
)

// ExtractedIntent is the structured understanding of a job request. It is
// produced once by the extract stage and read-only afterward.
type ExtractedIntent struct {
	JobType           string   `json:"job_type"`
	ServicesNeeded    []string `json:"services_needed"`
	Location          string   `json:"location,omitempty"`
	Urgency           string   `json:"urgency"`
	AdditionalContext string   `json:"additional_context,omitempty"`

	// OptimizedQuery is a keyword-dense reformulation used only for vector
	// retrieval. The rerank stage reasons about the original query instead.
	OptimizedQuery string `json:"optimized_query"`
}

// Validate implements structured.Record.
func (e *ExtractedIntent) Validate() error {
	if e.JobType == "" {
		return errors.New("job_type is required")
	}
	if e.OptimizedQuery == "" {
		return errors.New("optimized_query is required")
	}
	return nil
}

// Candidate is a vendor record returned by retrieval. CandidateID is stable
// for the duration of one pipeline run and is the only token the rerank stage
// may use to refer back to it. All descriptive fields are optional; empty
// means absent. SimilarityScore is in (0,1], higher = better.
type Candidate struct {
	CandidateID    string `json:"candidate_id"`
	CompanyName    string `json:"company_name"`
	TradingName    string `json:"trading_name,omitempty"`
	Services       string `json:"services,omitempty"`
	Products       string `json:"products,omitempty"`
	Industry       string `json:"industry,omitempty"`
	About          string `json:"about,omitempty"`
	City           string `json:"city,omitempty"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Website        string `json:"website,omitempty"`
	Employees      string `json:"employees,omitempty"`
	Certifications string `json:"certifications,omitempty"`

	SimilarityScore float64 `json:"similarity_score"`
}

// RankedVendor is a candidate with its final rank, relevance score, and the
// model's (or fallback's) justification.
type RankedVendor struct {
	Rank int `json:"rank"`
	Candidate
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// State is threaded through the pipeline stages. Each stage consumes the
// previous state and produces a new one with its own fields set. Err carries
// the most recent stage degradation for downstream visibility; a later
// successful stage does not clear it.
type State struct {
	Query      string
	Intent     *ExtractedIntent
	Candidates []Candidate
	Ranked     []RankedVendor
	Err        string
}

// rerankOutput is the schema of the reranking model's completion.
type rerankOutput struct {
	UserNeedAnalysis     string         `json:"user_need_analysis"`
	RequiredServiceTypes []string       `json:"required_service_types"`
	Rankings             []rankingEntry `json:"rankings"`
}

// rankingEntry is one ranked reference back into the candidate set.
// CandidateID tolerates numeric ids, which models emit unquoted.
type rankingEntry struct {
	Rank           int                   `json:"rank"`
	CandidateID    structured.FlexString `json:"candidate_id"`
	RelevanceScore float64               `json:"relevance_score"`
	Reasoning      string                `json:"reasoning"`
}

// Validate implements structured.Record.
func (o *rerankOutput) Validate() error {
	if o.Rankings == nil {
		return errors.New("rankings is required")
	}
	for i, r := range o.Rankings {
		if r.CandidateID == "" {
			return fmt.Errorf("rankings[%d]: candidate_id is required", i)
		}
	}
	return nil
}
