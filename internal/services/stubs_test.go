package services

import (
	"context"
	"fmt"
)

// geminiCall scripts one GenerateText outcome.
type geminiCall struct {
	response string
	err      error
}

// stubGemini plays back scripted responses and records every prompt it was
// sent. When the script runs out, the last entry repeats.
type stubGemini struct {
	script  []geminiCall
	calls   int
	prompts []string

	embeddings map[string][]float32
	embedErr   error
	embedTexts []string
}

func (s *stubGemini) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.calls++

	if len(s.script) == 0 {
		return "", fmt.Errorf("stubGemini: no scripted responses")
	}

	idx := s.calls - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	return s.script[idx].response, s.script[idx].err
}

func (s *stubGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		out, err := s.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (s *stubGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	s.embedTexts = append(s.embedTexts, text)
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if v, ok := s.embeddings[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

// stubEmbedder implements EmbeddingService with fixed vectors per passage
// text. The query side always returns queryVec.
type stubEmbedder struct {
	queryVec   []float32
	passages   map[string][]float32
	queryErr   error
	passageErr error

	queryTexts   []string
	passageTexts []string
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	s.queryTexts = append(s.queryTexts, text)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.queryVec, nil
}

func (s *stubEmbedder) EmbedPassage(_ context.Context, text string) ([]float32, error) {
	s.passageTexts = append(s.passageTexts, text)
	if s.passageErr != nil {
		return nil, s.passageErr
	}
	if v, ok := s.passages[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("stubEmbedder: no vector for passage %q", text)
}

// memoryCache implements VectorCacheService in memory.
type memoryCache struct {
	data     map[uint64][]float32
	fetchErr error
	storeErr error

	fetches int
	stores  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[uint64][]float32)}
}

func (m *memoryCache) InitCollection() error {
	return nil
}

func (m *memoryCache) Fetch(_ context.Context, key uint64) ([]float32, bool, error) {
	m.fetches++
	if m.fetchErr != nil {
		return nil, false, m.fetchErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Store(_ context.Context, key uint64, _ string, vector []float32) error {
	m.stores++
	if m.storeErr != nil {
		return m.storeErr
	}
	m.data[key] = vector
	return nil
}
