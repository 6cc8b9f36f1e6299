// Package config loads configuration from environment variables and .env files.
package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the vendor recommender service
type Config struct {
	// Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Qdrant
	QdrantGRPCURL string `env:"QDRANT_GRPC_URL" envDefault:"localhost:6334"`
	Collection    string `env:"QDRANT_COLLECTION" envDefault:"vendors"`

	// Ollama
	OllamaURL            string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaEmbeddingModel string `env:"OLLAMA_EMBEDDING_MODEL" envDefault:"nomic-embed-text"`
	OllamaLLMModel       string `env:"OLLAMA_LLM_MODEL" envDefault:"llama3.2"`
	EmbeddingDimension   int    `env:"EMBEDDING_DIMENSION" envDefault:"768"`

	// Pipeline
	RetrievalTopK int `env:"RETRIEVAL_TOP_K" envDefault:"30"`
	RerankTopK    int `env:"RERANK_TOP_K" envDefault:"10"`

	// Indexing
	VendorDataPath string `env:"VENDOR_DATA_PATH" envDefault:"data/vendors.json"`
}

// Load loads configuration from .env file (if present) and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
