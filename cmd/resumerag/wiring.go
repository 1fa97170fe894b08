package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"resumerag/internal/chunker"
	"resumerag/internal/config"
	"resumerag/internal/domain"
	"resumerag/internal/embedding/hashing"
	"resumerag/internal/llm"
	"resumerag/internal/service"
	"resumerag/internal/summarizer"
	"resumerag/internal/vectorstore/memory"
	"resumerag/internal/vectorstore/qdrant"
)

// buildEngine assembles the engine from cfg. Environment lookups for
// secrets happen here and nowhere below.
func buildEngine(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*service.Engine, error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "hashing", "":
		emb = hashing.NewEmbedder(cfg.Embedder.Dimension)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	ch := chunker.NewWordChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)

	var st domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		q := cfg.VectorStore.Qdrant
		store, err := qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey(),
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		st = store
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	gen, err := llm.New(ctx, llmConfig(cfg.LLM), log)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	return service.NewEngine(ch, emb, st, sum, gen, log, service.Options{
		AutofillTopK:        cfg.Retrieval.AutofillTopK,
		HRTopK:              cfg.Retrieval.HRTopK,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
	}), nil
}

func llmConfig(c config.LLMConfig) llm.Config {
	baseURL := c.BaseURL
	// the default file points at Groq; other providers use their SDK default
	if c.Provider != llm.ProviderGroq && baseURL == llm.GroqBaseURL {
		baseURL = ""
	}
	temperature := c.Temperature
	return llm.Config{
		Provider:    c.Provider,
		Model:       c.ResolvedModel(),
		APIKey:      c.APIKey(),
		BaseURL:     baseURL,
		Timeout:     time.Duration(c.TimeoutSecs) * time.Second,
		MaxRetries:  c.MaxRetries,
		Temperature: &temperature,
	}
}
