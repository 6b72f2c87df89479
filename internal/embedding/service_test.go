package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DharitG/jobs/internal/common/logger"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}

func TestService_FactoryFailureDegradesToMiss(t *testing.T) {
	factoryCalls := 0
	svc := NewService(func(context.Context) (Embedder, error) {
		factoryCalls++
		return nil, errors.New("weights missing")
	}, logger.NewTestLogger(t))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		vec, ok := svc.Embed(ctx, "Resume")
		assert.Nil(t, vec)
		assert.False(t, ok)
	}
	// lazy init happens exactly once even after failure
	assert.Equal(t, 1, factoryCalls)
}

func TestService_NilFactoryNeverPanics(t *testing.T) {
	svc := NewService(nil, logger.NewTestLogger(t))
	_, ok := svc.Embed(context.Background(), "Email")
	assert.False(t, ok)
	_, ok = svc.EmbedAll(context.Background(), []string{"Email"})
	assert.False(t, ok)
}

func TestService_EmbedAllAlignsBlankEntries(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{
		"First Name": {1, 0},
		"Email":      {0, 1},
	}}
	svc := NewService(func(context.Context) (Embedder, error) { return stub, nil }, logger.NewTestLogger(t))

	vecs, ok := svc.EmbedAll(context.Background(), []string{"First Name", "", "Email"})
	require.True(t, ok)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Nil(t, vecs[1])
	assert.Equal(t, []float32{0, 1}, vecs[2])
}

func TestService_BlankQueryIsMissWithoutInit(t *testing.T) {
	factoryCalls := 0
	svc := NewService(func(context.Context) (Embedder, error) {
		factoryCalls++
		return &stubEmbedder{}, nil
	}, logger.NewTestLogger(t))

	_, ok := svc.Embed(context.Background(), "   ")
	assert.False(t, ok)
	assert.Equal(t, 0, factoryCalls)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"empty", nil, nil, 0.0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine_Magnitude(t *testing.T) {
	// similarity is scale-invariant
	a := []float32{3, 4}
	b := []float32{6, 8}
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)

	theta := 0.6
	c := []float32{float32(theta), float32(math.Sqrt(1 - theta*theta))}
	assert.InDelta(t, 0.6, Cosine([]float32{1, 0}, c), 1e-6)
}
