package autosubmit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/common/metrics"
	"github.com/DharitG/jobs/internal/common/observability"

	apperrors "github.com/DharitG/jobs/internal/common/errors"
)

// SubmitterOptions tunes run behavior; zero values get sane defaults.
type SubmitterOptions struct {
	NavigationTimeout time.Duration
	PostLoginSettle   time.Duration
	RandSeed          int64 // 0 means time-seeded
}

// AutoSubmitter executes the submission state machine. One Run owns one
// browser session end to end and always returns exactly one TaskResult.
type AutoSubmitter struct {
	registry *Registry
	launcher Launcher
	captcha  *CaptchaGate
	obs      *observability.Observability
	logger   logger.Logger

	navTimeout time.Duration
	settle     time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewAutoSubmitter(registry *Registry, launcher Launcher, captcha *CaptchaGate, obs *observability.Observability, log logger.Logger, opts SubmitterOptions) *AutoSubmitter {
	navTimeout := opts.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if captcha == nil {
		captcha = NewCaptchaGate(log)
	}
	return &AutoSubmitter{
		registry:   registry,
		launcher:   launcher,
		captcha:    captcha,
		obs:        obs,
		logger:     log,
		navTimeout: navTimeout,
		settle:     opts.PostLoginSettle,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Run drives one task through the state machine. It never panics outward and
// never returns nil: panics surface as an EXECUTION_ERROR result with
// whatever artifacts the page still yields.
func (s *AutoSubmitter) Run(ctx context.Context, task *JobApplicationTask) (result *TaskResult) {
	start := time.Now()
	log := s.logger.WithFields(map[string]interface{}{"applicationId": task.ApplicationID})

	var page Page
	var session Session
	site := "unknown"

	defer func() {
		if r := recover(); r != nil {
			log.Error("submission run panicked", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			result = &TaskResult{
				Success: false,
				State:   StateExecutionError,
				Message: "unexpected error during submission run",
				Err:     apperrors.NewExecutionError(r).Error(),
			}
			captureArtifacts(page, result, log)
		}
		if session != nil {
			if err := session.Close(); err != nil {
				log.Warn("browser session close failed", map[string]interface{}{"error": err.Error()})
			}
		}
		if site != "unknown" {
			result.Site = site
		}
		metrics.SubmissionsTotal.WithLabelValues(site, string(result.State)).Inc()
		metrics.SubmissionDuration.WithLabelValues(site).Observe(time.Since(start).Seconds())
		if s.obs != nil {
			s.obs.RecordRun(ctx, site, string(result.State))
			s.obs.RecordRunDuration(ctx, time.Since(start), site)
		}
	}()

	// INIT: validate the descriptor and draw this run's fingerprint.
	if err := task.Validate(); err != nil {
		return s.fail(StateInit, nil, apperrors.NewInvalidTaskError(err.Error()), log)
	}
	profile := s.drawProfile()

	// DETECT_SITE: pure registry lookup, no browser yet. Unknown hosts never
	// cost a launch.
	adapter := s.registry.Detect(task.JobURL)
	if adapter == nil {
		return s.fail(StateDetectSite, nil, apperrors.NewUnsupportedSiteError(task.JobURL), log)
	}
	site = adapter.Name()
	log = log.WithFields(map[string]interface{}{"site": site})

	// NAVIGATE: acquire the browser and load the posting.
	if err := ctx.Err(); err != nil {
		return s.fail(StateNavigate, nil, apperrors.NewNavigationError(task.JobURL, err), log)
	}
	var err error
	session, err = s.launcher.Launch(ctx, profile)
	if err != nil {
		return s.fail(StateNavigate, nil, apperrors.NewNavigationError(task.JobURL, err), log)
	}
	page = session.Page()
	if err := page.Goto(task.JobURL, s.navTimeout); err != nil {
		return s.fail(StateNavigate, page, apperrors.NewNavigationError(task.JobURL, err), log)
	}
	log.Info("job page loaded", map[string]interface{}{"url": page.URL()})

	// LOGIN: no-op for open boards, credentialed for gated tenants.
	if err := s.guard(ctx); err != nil {
		return s.fail(StateLogin, page, err, log)
	}
	if err := adapter.Login(ctx, page, task); err != nil {
		return s.fail(StateLogin, page, err, log)
	}
	s.sleep(ctx, s.settle)

	// FORM_FILL
	if err := s.guard(ctx); err != nil {
		return s.fail(StateFormFill, page, err, log)
	}
	if err := adapter.FillForm(ctx, page, task); err != nil {
		return s.fail(StateFormFill, page, err, log)
	}

	// CAPTCHA: clear or escalate before the submit click.
	if err := s.guard(ctx); err != nil {
		return s.fail(StateCaptcha, page, err, log)
	}
	if cleared, vendor := s.captcha.Clear(ctx, page); !cleared {
		return s.fail(StateCaptcha, page, apperrors.NewCaptchaBlockedError(site, vendor), log)
	}

	// SUBMIT
	if err := s.guard(ctx); err != nil {
		return s.fail(StateSubmit, page, err, log)
	}
	if err := adapter.Submit(ctx, page); err != nil {
		return s.fail(StateSubmit, page, err, log)
	}

	// VERIFY: require explicit confirmation; silence is failure.
	if err := s.guard(ctx); err != nil {
		return s.fail(StateVerify, page, err, log)
	}
	if err := adapter.Verify(ctx, page); err != nil {
		return s.fail(StateVerify, page, err, log)
	}

	log.Info("application submitted and confirmed", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
	})
	return &TaskResult{
		Success: true,
		State:   StateVerifySuccess,
		Message: fmt.Sprintf("application submitted via %s", site),
	}
}

// guard maps context cancellation into the current state's failure.
func (s *AutoSubmitter) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewExecutionError(err)
	}
	return nil
}

// fail builds the terminal failure result for state, attaching page artifacts
// when a page exists.
func (s *AutoSubmitter) fail(state State, page Page, cause error, log logger.Logger) *TaskResult {
	log.WithError(cause).Error("submission run failed", map[string]interface{}{"state": string(state)})
	result := &TaskResult{
		Success: false,
		State:   state.Failed(),
		Message: fmt.Sprintf("submission failed during %s", state),
		Err:     cause.Error(),
	}
	captureArtifacts(page, result, log)
	return result
}

func (s *AutoSubmitter) sleep(ctx context.Context, d time.Duration) {
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

func (s *AutoSubmitter) drawProfile() FingerprintProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return randomProfile(s.rng)
}
