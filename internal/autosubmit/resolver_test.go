package autosubmit

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/embedding"
)

func stubEmbeddingService(t *testing.T, vectors map[string][]float32) *embedding.Service {
	t.Helper()
	stub := &stubVectors{vectors: vectors}
	return embedding.NewService(func(ctx context.Context) (embedding.Embedder, error) {
		return stub, nil
	}, logger.NewTestLogger(t))
}

func deadEmbeddingService(t *testing.T) *embedding.Service {
	t.Helper()
	return embedding.NewService(nil, logger.NewTestLogger(t))
}

// vectorAt builds a unit vector whose cosine similarity against {1,0,0} is
// exactly cos.
func vectorAt(cos float64) []float32 {
	sin := math.Sqrt(1 - cos*cos)
	return []float32{float32(cos), float32(sin), 0}
}

func TestResolveStaticSelectorWins(t *testing.T) {
	page := newFakePage()
	want := &fakeElement{visible: true}
	page.visible["#first_name"] = want

	r := NewResolver(
		&SelectorConfig{Selectors: map[string]string{"first_name": "#first_name"}},
		deadEmbeddingService(t),
		logger.NewTestLogger(t),
		time.Second,
	)

	got := r.Resolve(context.Background(), page, "first_name", "First Name", KindText)
	assert.Same(t, want, got)
}

func TestResolveSemanticFallback(t *testing.T) {
	target := []float32{1, 0, 0}

	tests := []struct {
		name    string
		bestVec []float32
		wantHit bool
	}{
		{"below threshold", vectorAt(0.55), false},
		// {3,4,0} against {1,0,0} is exactly 3/5: the threshold is inclusive.
		{"at threshold", []float32{3, 4, 0}, true},
		{"above threshold", vectorAt(0.7), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage()
			best := &fakeElement{visible: true, labelText: "Email Address"}
			other := &fakeElement{visible: true, labelText: "Phone Number"}
			page.queries[kindSelectors[KindText]] = []Element{other, best}

			svc := stubEmbeddingService(t, map[string][]float32{
				"Email":         target,
				"Email Address": tt.bestVec,
				"Phone Number":  vectorAt(0.1),
			})
			r := NewResolver(&SelectorConfig{}, svc, logger.NewTestLogger(t), time.Second)

			got := r.Resolve(context.Background(), page, "email", "Email", KindText)
			if tt.wantHit {
				assert.Same(t, best, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestResolveSemanticTieBreaksInDOMOrder(t *testing.T) {
	first := &fakeElement{visible: true, labelText: "Name"}
	second := &fakeElement{visible: true, labelText: "Name"}
	page := newFakePage()
	page.queries[kindSelectors[KindText]] = []Element{first, second}

	svc := stubEmbeddingService(t, map[string][]float32{
		"Full Name": {1, 0, 0},
		"Name":      {1, 0, 0},
	})
	r := NewResolver(&SelectorConfig{}, svc, logger.NewTestLogger(t), time.Second)

	got := r.Resolve(context.Background(), page, "name", "Full Name", KindText)
	assert.Same(t, first, got)
}

func TestResolveSkipsInvisibleCandidates(t *testing.T) {
	hidden := &fakeElement{visible: false, labelText: "Email Address"}
	page := newFakePage()
	page.queries[kindSelectors[KindText]] = []Element{hidden}

	svc := stubEmbeddingService(t, map[string][]float32{
		"Email":         {1, 0, 0},
		"Email Address": {1, 0, 0},
	})
	r := NewResolver(&SelectorConfig{}, svc, logger.NewTestLogger(t), time.Second)

	assert.Nil(t, r.Resolve(context.Background(), page, "email", "Email", KindText))
}

func TestResolveEmbedderUnavailableIsMiss(t *testing.T) {
	page := newFakePage()
	page.queries[kindSelectors[KindText]] = []Element{
		&fakeElement{visible: true, labelText: "Email Address"},
	}

	r := NewResolver(&SelectorConfig{}, deadEmbeddingService(t), logger.NewTestLogger(t), time.Second)
	assert.Nil(t, r.Resolve(context.Background(), page, "email", "Email", KindText))
}

func TestDeriveLabelPriority(t *testing.T) {
	t.Run("label for wins over everything", func(t *testing.T) {
		page := newFakePage()
		page.texts[`label[for="email"]`] = " Email Address "
		el := &fakeElement{id: "email", labelText: "Ancestor", placeholder: "you@example.com"}
		assert.Equal(t, "Email Address", deriveLabel(page, el))
	})

	t.Run("aria-labelledby joins referenced texts", func(t *testing.T) {
		page := newFakePage()
		page.texts["#lbl-a"] = "Work"
		page.texts["#lbl-b"] = "Email"
		el := &fakeElement{ariaLabelledBy: "lbl-a lbl-b", placeholder: "fallback"}
		assert.Equal(t, "Work Email", deriveLabel(page, el))
	})

	t.Run("ancestor label beats placeholder", func(t *testing.T) {
		el := &fakeElement{labelText: "Phone Number", placeholder: "555-0100"}
		assert.Equal(t, "Phone Number", deriveLabel(newFakePage(), el))
	})

	t.Run("placeholder is last resort", func(t *testing.T) {
		el := &fakeElement{placeholder: "Your name"}
		assert.Equal(t, "Your name", deriveLabel(newFakePage(), el))
	})

	t.Run("no signal yields empty", func(t *testing.T) {
		require.Empty(t, deriveLabel(newFakePage(), &fakeElement{}))
	})
}

func TestResolveUnknownKind(t *testing.T) {
	r := NewResolver(&SelectorConfig{}, deadEmbeddingService(t), logger.NewTestLogger(t), time.Second)
	assert.Nil(t, r.Resolve(context.Background(), newFakePage(), "x", "X", ElementKind("bogus")))
}
