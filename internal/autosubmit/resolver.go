package autosubmit

import (
	"context"
	"strings"
	"time"

	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/common/metrics"
	"github.com/DharitG/jobs/internal/embedding"
)

// SimilarityThreshold is the inclusive cosine-similarity floor for a semantic
// match: a best candidate at exactly 0.6 resolves.
const SimilarityThreshold = 0.6

// ElementKind selects which DOM elements are candidates for semantic
// resolution.
type ElementKind string

const (
	KindText   ElementKind = "text"
	KindFile   ElementKind = "file"
	KindSelect ElementKind = "select"
	KindButton ElementKind = "button"
)

var kindSelectors = map[ElementKind]string{
	KindText:   "input:not([type=hidden]):not([type=file]):not([type=submit]):not([type=checkbox]):not([type=radio]), textarea",
	KindFile:   "input[type=file]",
	KindSelect: "select",
	KindButton: "button, input[type=submit], a[role=button]",
}

// Resolver locates a form element for a logical field: static selector first,
// then semantic label matching. ATS vendors churn their markup constantly, so
// a stale selector degrades into a similarity search instead of a hard miss.
type Resolver struct {
	selectors  *SelectorConfig
	embeddings *embedding.Service
	logger     logger.Logger
	staticWait time.Duration
}

func NewResolver(selectors *SelectorConfig, embeddings *embedding.Service, log logger.Logger, staticWait time.Duration) *Resolver {
	if staticWait <= 0 {
		staticWait = 5 * time.Second
	}
	return &Resolver{
		selectors:  selectors,
		embeddings: embeddings,
		logger:     log,
		staticWait: staticWait,
	}
}

// Resolve returns the element for a logical field, or nil when neither tier
// finds one. Unresolved is a normal outcome, not an error; the caller decides
// whether the field was required.
func (r *Resolver) Resolve(ctx context.Context, page Page, fieldKey, humanLabel string, kind ElementKind) Element {
	if sel, ok := r.selectors.Selector(fieldKey); ok {
		el, err := page.WaitForVisible(sel, r.staticWait)
		if err == nil && el != nil {
			return el
		}
		r.logger.Debug("static selector missed, falling back to semantic match", map[string]interface{}{
			"field":    fieldKey,
			"selector": sel,
		})
	}

	el := r.resolveSemantic(ctx, page, humanLabel, kind)
	outcome := "miss"
	if el != nil {
		outcome = "hit"
	}
	metrics.ResolverFallbacks.WithLabelValues(fieldKey, outcome).Inc()
	return el
}

func (r *Resolver) resolveSemantic(ctx context.Context, page Page, humanLabel string, kind ElementKind) Element {
	selector, ok := kindSelectors[kind]
	if !ok {
		return nil
	}

	all, err := page.QueryAll(selector)
	if err != nil {
		r.logger.Debug("candidate enumeration failed", map[string]interface{}{"error": err.Error()})
		return nil
	}

	candidates := make([]Element, 0, len(all))
	labels := make([]string, 0, len(all))
	for _, el := range all {
		if !el.IsVisible() {
			continue
		}
		candidates = append(candidates, el)
		labels = append(labels, deriveLabel(page, el))
	}
	if len(candidates) == 0 {
		return nil
	}

	target, ok := r.embeddings.Embed(ctx, humanLabel)
	if !ok {
		return nil
	}
	vectors, ok := r.embeddings.EmbedAll(ctx, labels)
	if !ok {
		return nil
	}

	// Strict argmax; DOM order breaks ties.
	bestIdx := -1
	bestScore := 0.0
	for i, vec := range vectors {
		if vec == nil {
			continue
		}
		score := embedding.Cosine(target, vec)
		if bestIdx == -1 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	if bestIdx == -1 || bestScore < SimilarityThreshold {
		return nil
	}

	r.logger.Debug("semantic match", map[string]interface{}{
		"label":      humanLabel,
		"matched":    labels[bestIdx],
		"similarity": bestScore,
	})
	return candidates[bestIdx]
}

// deriveLabel extracts the human-readable label associated with an element,
// trying label[for], aria-labelledby, an ancestor label, then the
// placeholder.
func deriveLabel(page Page, el Element) string {
	if id, _ := el.GetAttribute("id"); strings.TrimSpace(id) != "" {
		if text, _ := page.TextOf(`label[for="` + id + `"]`); strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}

	if ref, _ := el.GetAttribute("aria-labelledby"); strings.TrimSpace(ref) != "" {
		var parts []string
		for _, id := range strings.Fields(ref) {
			if text, _ := page.TextOf("#" + id); strings.TrimSpace(text) != "" {
				parts = append(parts, strings.TrimSpace(text))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}

	if text, _ := el.ClosestLabelText(); strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}

	placeholder, _ := el.GetAttribute("placeholder")
	return strings.TrimSpace(placeholder)
}
