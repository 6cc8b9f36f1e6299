package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vendormatch/recommender/internal/config"
	"github.com/vendormatch/recommender/internal/embedder"
	"github.com/vendormatch/recommender/internal/llm"
	"github.com/vendormatch/recommender/internal/recommend"
	"github.com/vendormatch/recommender/internal/vectorstore"
)

var rootCmd = &cobra.Command{
	Use:   "vendormatchd",
	Short: "Matches free-text job requests to ranked service vendors",
	Long: `vendormatchd indexes vendor profiles into a vector store and serves
recommendations through a three-stage pipeline: intent extraction,
semantic retrieval, and LLM reranking.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging configures the process-wide slog default from config.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// deps holds the wired external clients shared by the commands.
type deps struct {
	cfg      *config.Config
	embedder embedder.Embedder
	store    *vectorstore.QdrantStore
	llm      llm.LLM
}

// buildDeps loads config and connects the external services.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg)

	embed := embedder.NewOllamaEmbedder(embedder.OllamaConfig{
		BaseURL:   cfg.OllamaURL,
		Model:     cfg.OllamaEmbeddingModel,
		Dimension: cfg.EmbeddingDimension,
	})
	slog.Info("initialized Ollama embedder",
		"model", embed.ModelName(),
		"dimension", embed.Dimension(),
	)

	store, err := vectorstore.NewQdrantStore(ctx, cfg.QdrantGRPCURL, cfg.Collection, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	slog.Info("connected to Qdrant", "collection", cfg.Collection)

	llmClient := llm.NewOllamaClient(
		llm.WithBaseURL(cfg.OllamaURL),
		llm.WithModel(cfg.OllamaLLMModel),
	)
	slog.Info("initialized Ollama LLM", "model", cfg.OllamaLLMModel)

	return &deps{
		cfg:      cfg,
		embedder: embed,
		store:    store,
		llm:      llmClient,
	}, nil
}

// newPipeline builds the recommendation pipeline from wired deps.
func (d *deps) newPipeline() *recommend.Pipeline {
	return recommend.New(d.llm, d.store,
		recommend.WithModel(d.cfg.OllamaLLMModel),
		recommend.WithRetrievalTopK(d.cfg.RetrievalTopK),
		recommend.WithRerankTopK(d.cfg.RerankTopK),
	)
}

func (d *deps) close() {
	if err := d.store.Close(); err != nil {
		slog.Warn("failed to close qdrant client", "error", err)
	}
}
