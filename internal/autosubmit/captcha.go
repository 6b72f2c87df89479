package autosubmit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/common/metrics"

	httpclient "github.com/DharitG/jobs/internal/common/http"
)

// captchaVendors maps iframe-source fragments to vendor names.
var captchaVendors = map[string]string{
	"google.com/recaptcha":      "recaptcha",
	"recaptcha.net":             "recaptcha",
	"hcaptcha.com":              "hcaptcha",
	"challenges.cloudflare.com": "turnstile",
	"arkoselabs.com":            "arkose",
	"funcaptcha.com":            "arkose",
}

// Solver is one tier of the pluggable CAPTCHA-solving policy. Implementations
// return true when the challenge has been cleared.
type Solver interface {
	Solve(ctx context.Context, page Page, vendor string) (bool, error)
}

// CaptchaGate inspects the page for a challenge and runs the configured
// solver chain. No challenge means clear to proceed.
type CaptchaGate struct {
	solvers []Solver
	logger  logger.Logger
}

func NewCaptchaGate(log logger.Logger, solvers ...Solver) *CaptchaGate {
	return &CaptchaGate{solvers: solvers, logger: log}
}

// Clear returns (true, "") when no challenge blocks the page, either because
// none was detected or because a solver handled it. On a block it returns the
// detected vendor for diagnostics.
func (g *CaptchaGate) Clear(ctx context.Context, page Page) (bool, string) {
	vendor := g.detect(page)
	if vendor == "" {
		return true, ""
	}

	metrics.CaptchaDetected.WithLabelValues(vendor).Inc()
	g.logger.Info("captcha challenge detected", map[string]interface{}{"vendor": vendor})

	for _, solver := range g.solvers {
		solved, err := solver.Solve(ctx, page, vendor)
		if err != nil {
			g.logger.Warn("captcha solver errored, trying next tier", map[string]interface{}{
				"vendor": vendor,
				"error":  err.Error(),
			})
			continue
		}
		if solved {
			return true, ""
		}
	}
	return false, vendor
}

func (g *CaptchaGate) detect(page Page) string {
	frames, err := page.QueryAll("iframe")
	if err != nil {
		g.logger.Debug("iframe scan failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	for _, frame := range frames {
		src, _ := frame.GetAttribute("src")
		if src == "" {
			continue
		}
		lower := strings.ToLower(src)
		for fragment, vendor := range captchaVendors {
			if strings.Contains(lower, fragment) {
				return vendor
			}
		}
	}
	return ""
}

// EscalationSolver is the human-in-the-loop tier: it posts the challenge to
// an operator queue endpoint and reports whatever the queue decides within
// the request timeout.
type EscalationSolver struct {
	client   *httpclient.Client
	endpoint string
}

func NewEscalationSolver(client *httpclient.Client, endpoint string) *EscalationSolver {
	return &EscalationSolver{client: client, endpoint: endpoint}
}

func (s *EscalationSolver) Solve(ctx context.Context, page Page, vendor string) (bool, error) {
	payload, err := json.Marshal(map[string]string{
		"vendor":  vendor,
		"pageUrl": page.URL(),
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.DoWithContext(ctx, req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("escalation queue returned %d", resp.StatusCode)
	}

	var body struct {
		Solved bool `json:"solved"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Solved, nil
}
