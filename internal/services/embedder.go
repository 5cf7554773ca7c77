package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log"
	"strings"
)

// Asymmetric retrieval models (the BGE family) encode queries and passages
// differently: the query side needs this prefix, the passage side must not
// get it. The job text is the query; CV sections are passages.
const bgeQueryPrefix = "Represent this sentence: "

type EmbeddingService interface {
	// EmbedQuery embeds job-side text, applying the asymmetric-model
	// query prefix when the configured model requires one.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedPassage embeds CV-side text, never prefixed.
	EmbedPassage(ctx context.Context, text string) ([]float32, error)
}

type embeddingService struct {
	gemini GeminiService
	cache  VectorCacheService // nil disables caching
	model  string
}

func NewEmbeddingService(gemini GeminiService, cache VectorCacheService, model string) EmbeddingService {
	return &embeddingService{
		gemini: gemini,
		cache:  cache,
		model:  model,
	}
}

// EmbedQuery implements EmbeddingService.
func (e *embeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.needsQueryPrefix() {
		text = bgeQueryPrefix + text
	}
	return e.embed(ctx, text)
}

// EmbedPassage implements EmbeddingService.
func (e *embeddingService) EmbedPassage(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *embeddingService) needsQueryPrefix() bool {
	return strings.Contains(strings.ToLower(e.model), "bge")
}

func (e *embeddingService) embed(ctx context.Context, text string) ([]float32, error) {
	key := embeddingCacheKey(e.model, text)

	if e.cache != nil {
		vector, found, err := e.cache.Fetch(ctx, key)
		if err != nil {
			log.Printf("⚠️  Embedding cache lookup failed: %v\n", err)
		} else if found {
			return vector, nil
		}
	}

	vector, err := e.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, errEmbeddingUnavailable(err)
	}

	if e.cache != nil {
		if err := e.cache.Store(ctx, key, e.model, vector); err != nil {
			log.Printf("⚠️  Embedding cache store failed: %v\n", err)
		}
	}

	return vector, nil
}

func embeddingCacheKey(model, text string) uint64 {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return binary.BigEndian.Uint64(sum[:8])
}
