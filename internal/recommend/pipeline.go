package recommend

import (
	"context"
	"log/slog"

	"github.com/vendormatch/recommender/internal/llm"
	"github.com/vendormatch/recommender/internal/vectorstore"
)

const (
	// DefaultRetrievalTopK is how many candidates retrieval asks the store for.
	DefaultRetrievalTopK = 30

	// DefaultRerankTopK is how many vendors the rerank stage returns.
	DefaultRerankTopK = 10
)

// Pipeline runs the recommendation flow: Extract -> Retrieve -> Rerank. The
// stages execute strictly in sequence; each consumes the prior state and
// returns a new one. There are no retries and no stage skipping - a stage that
// cannot proceed produces an empty result and the remaining stages run on it.
type Pipeline struct {
	llm           llm.LLM
	store         vectorstore.Store
	logger        *slog.Logger
	model         string
	retrievalTopK int
	rerankTopK    int
}

// Option is a functional option for configuring a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithModel sets the completion model used by both LLM-backed stages.
func WithModel(model string) Option {
	return func(p *Pipeline) {
		p.model = model
	}
}

// WithRetrievalTopK sets how many candidates to retrieve.
func WithRetrievalTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.retrievalTopK = k
		}
	}
}

// WithRerankTopK sets how many ranked vendors to return.
func WithRerankTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.rerankTopK = k
		}
	}
}

// RunOption adjusts a single pipeline run.
type RunOption func(*runSettings)

type runSettings struct {
	topK int
}

// WithTopK limits how many ranked vendors the run returns. Zero and negative
// values keep the pipeline default; values above the configured rerank top-k
// are capped to it.
func WithTopK(k int) RunOption {
	return func(s *runSettings) {
		if k > 0 {
			s.topK = k
		}
	}
}

// New creates a recommendation pipeline.
func New(llmClient llm.LLM, store vectorstore.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		llm:           llmClient,
		store:         store,
		logger:        slog.Default(),
		retrievalTopK: DefaultRetrievalTopK,
		rerankTopK:    DefaultRerankTopK,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run executes the full pipeline for one query. It always returns a complete
// state: zero or more ranked vendors plus an optional human-readable error
// describing the most recent degradation. It never panics outward and never
// returns a partial state.
func (p *Pipeline) Run(ctx context.Context, query string, opts ...RunOption) State {
	settings := runSettings{topK: p.rerankTopK}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.topK > p.rerankTopK {
		settings.topK = p.rerankTopK
	}

	st := State{Query: query}

	st = p.extract(ctx, st)
	st = p.retrieve(ctx, st)
	st = p.rerank(ctx, st, settings.topK)

	return st
}
