package autosubmit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/DharitG/jobs/internal/common/logger"
)

// Humanizer injects randomized delays, scrolls and cursor paths before real
// interactions to blunt behavioral bot-detection heuristics. Everything here
// is advisory: an error inside the humanizer is swallowed and logged, never
// surfaced to the caller.
type Humanizer struct {
	mu       sync.Mutex
	rng      *rand.Rand
	logger   logger.Logger
	minDelay time.Duration
	maxDelay time.Duration
}

func NewHumanizer(log logger.Logger, minDelay, maxDelay time.Duration) *Humanizer {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Humanizer{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   log,
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

func (h *Humanizer) intn(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 {
		return 0
	}
	return h.rng.Intn(n)
}

func (h *Humanizer) float64() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64()
}

// BeforeInteraction pauses for a randomized interval and nudges the scroll
// position. It always completes.
func (h *Humanizer) BeforeInteraction(ctx context.Context, page Page) {
	defer h.absorb("before-interaction")

	h.sleep(ctx, h.delay())

	if page != nil {
		if err := page.Scroll(float64(h.intn(240) - 80)); err != nil {
			h.logger.Debug("scroll jitter failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Approach walks the cursor toward the element's bounding box in a few jagged
// steps before the real interaction.
func (h *Humanizer) Approach(ctx context.Context, page Page, target Element) {
	defer h.absorb("approach")

	if page == nil || target == nil {
		return
	}
	box, err := target.BoundingBox()
	if err != nil || box == nil {
		return
	}

	destX := box.X + box.Width/2
	destY := box.Y + box.Height/2
	steps := 3 + h.intn(4)
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		jitterX := (h.float64() - 0.5) * 12
		jitterY := (h.float64() - 0.5) * 12
		if i == steps {
			jitterX, jitterY = 0, 0
		}
		if err := page.MoveMouse(destX*frac+jitterX, destY*frac+jitterY); err != nil {
			h.logger.Debug("cursor path step failed", map[string]interface{}{"error": err.Error()})
			return
		}
		h.sleep(ctx, time.Duration(10+h.intn(30))*time.Millisecond)
	}
}

// ClickOffset picks a randomized in-bounds click position, keeping a margin
// from the element's border.
func (h *Humanizer) ClickOffset(box *Box) (float64, float64) {
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return 0, 0
	}
	marginX := box.Width * 0.2
	marginY := box.Height * 0.2
	x := marginX + h.float64()*(box.Width-2*marginX)
	y := marginY + h.float64()*(box.Height-2*marginY)
	return x, y
}

func (h *Humanizer) delay() time.Duration {
	span := h.maxDelay - h.minDelay
	if span <= 0 {
		return h.minDelay
	}
	return h.minDelay + time.Duration(h.intn(int(span)))
}

func (h *Humanizer) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (h *Humanizer) absorb(op string) {
	if r := recover(); r != nil {
		h.logger.Warn("humanization step panicked", map[string]interface{}{
			"op":    op,
			"panic": r,
		})
	}
}
