package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
)

// SimilarityScorer computes a symmetric semantic similarity score in
// [0,1] for a pair of texts. A nil score means the comparison failed
// (empty input or the model was unavailable), which callers must treat
// differently from a genuine 0.
type SimilarityScorer interface {
	Score(ctx context.Context, a, b string) (*float64, error)
}

// embedCacheLimit caps the per-scorer embedding cache. A batch embeds
// the requirements text once and each resume once, so the cache mainly
// exists to make the repeated requirements lookups free.
const embedCacheLimit = 512

// EmbeddingScorer scores text pairs by cosine similarity of their
// embeddings. The cache is mutex-guarded so a pipeline can call Score
// from concurrent goroutines against one shared model client.
type EmbeddingScorer struct {
	embedder Embedder

	mu    sync.Mutex
	cache map[string][]float32
}

func NewEmbeddingScorer(embedder Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{
		embedder: embedder,
		cache:    make(map[string][]float32),
	}
}

// Embed returns the embedding for a text, serving repeats from cache.
func (s *EmbeddingScorer) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	s.mu.Lock()
	if vec, ok := s.cache[text]; ok {
		s.mu.Unlock()
		return vec, nil
	}
	s.mu.Unlock()

	vec, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.cache) >= embedCacheLimit {
		s.cache = make(map[string][]float32)
	}
	s.cache[text] = vec
	s.mu.Unlock()

	return vec, nil
}

// Score implements SimilarityScorer.
func (s *EmbeddingScorer) Score(ctx context.Context, a, b string) (*float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return nil, fmt.Errorf("similarity comparison failed: empty input text")
	}

	vecA, err := s.Embed(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("similarity comparison failed: %w", err)
	}

	vecB, err := s.Embed(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("similarity comparison failed: %w", err)
	}

	score := CosineSimilarity(vecA, vecB)
	return &score, nil
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// clamped to [0,1]. Embeddings of unrelated texts can dip slightly
// negative; the scorer contract does not.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Min(1, math.Max(0, cos))
}
