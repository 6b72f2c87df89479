// Package embedding provides the process-wide sentence-embedding service used
// for semantic form-field matching. The model client is initialized lazily,
// exactly once; if initialization fails, every lookup degrades to a miss so a
// broken model can never crash a submission run.
package embedding

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/DharitG/jobs/internal/common/logger"
)

// Embedder is the client surface the service needs. langchaingo's
// embeddings.Embedder satisfies it; tests inject canned vectors.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Factory builds the underlying embedder on first use.
type Factory func(ctx context.Context) (Embedder, error)

// Service wraps an Embedder with once-only initialization. The zero teardown
// requirement is deliberate: model weights are immutable and shared.
type Service struct {
	once     sync.Once
	factory  Factory
	embedder Embedder
	logger   logger.Logger
}

func NewService(factory Factory, log logger.Logger) *Service {
	return &Service{factory: factory, logger: log}
}

// GoogleAIFactory builds an embedder backed by the Google AI embedding model
// through langchaingo.
func GoogleAIFactory(apiKey, model string) Factory {
	return func(ctx context.Context) (Embedder, error) {
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultEmbeddingModel(model),
		)
		if err != nil {
			return nil, err
		}
		return embeddings.NewEmbedder(llm)
	}
}

func (s *Service) init(ctx context.Context) {
	s.once.Do(func() {
		if s.factory == nil {
			return
		}
		embedder, err := s.factory(ctx)
		if err != nil {
			s.logger.Warn("embedding model failed to load; semantic resolution disabled", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		s.embedder = embedder
	})
}

// Embed returns the embedding for one text, or ok=false when the model is
// unavailable or the text is blank.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	s.init(ctx)
	if s.embedder == nil {
		return nil, false
	}
	vec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		s.logger.Warn("embedding query failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	return vec, true
}

// EmbedAll embeds a batch of candidate labels. Blank entries come back as nil
// vectors so indices stay aligned with the caller's candidate list.
func (s *Service) EmbedAll(ctx context.Context, texts []string) ([][]float32, bool) {
	s.init(ctx)
	if s.embedder == nil {
		return nil, false
	}

	nonBlank := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) != "" {
			nonBlank = append(nonBlank, t)
			positions = append(positions, i)
		}
	}
	if len(nonBlank) == 0 {
		return make([][]float32, len(texts)), true
	}

	vecs, err := s.embedder.EmbedDocuments(ctx, nonBlank)
	if err != nil {
		s.logger.Warn("embedding batch failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	if len(vecs) != len(nonBlank) {
		return nil, false
	}

	out := make([][]float32, len(texts))
	for i, pos := range positions {
		out[pos] = vecs[i]
	}
	return out, true
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty or zero-length.
func Cosine(a, b []float32) float64 {
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
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
