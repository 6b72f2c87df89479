// internal/workers/application/submit-application/handler.go
package submitapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/DharitG/jobs/internal/artifacts"
	"github.com/DharitG/jobs/internal/autosubmit"
	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/common/metrics"
	"github.com/DharitG/jobs/internal/common/validation"
	"github.com/DharitG/jobs/internal/diagnostics"
	"github.com/DharitG/jobs/internal/notify"
	"github.com/DharitG/jobs/internal/quota"
)

const (
	TaskType = "submit-application"
)

var (
	ErrQuotaExceeded = errors.New("QUOTA_EXCEEDED")
	ErrInvalidTask   = errors.New("INVALID_TASK")
)

// Runner is the submission engine surface the handler drives. Production
// wires *autosubmit.AutoSubmitter; tests inject canned results.
type Runner interface {
	Run(ctx context.Context, task *autosubmit.JobApplicationTask) *autosubmit.TaskResult
}

// TierLookup resolves a user's subscription tier.
type TierLookup interface {
	Tier(ctx context.Context, userID string) (quota.Tier, error)
}

type Handler struct {
	config   *Config
	runner   Runner
	tiers    TierLookup
	gate     *quota.Gate
	db       *sql.DB
	store    artifacts.Store
	indexer  *diagnostics.Indexer
	notifier *notify.Notifier
	logger   logger.Logger
}

func NewHandler(config *Config, runner Runner, tiers TierLookup, gate *quota.Gate, db *sql.DB,
	store artifacts.Store, indexer *diagnostics.Indexer, notifier *notify.Notifier, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		runner:   runner,
		tiers:    tiers,
		gate:     gate,
		db:       db,
		store:    store,
		indexer:  indexer,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	raw := []byte(job.Variables)
	if err := validation.ValidateTask(raw); err != nil {
		h.failJob(client, job, "INVALID_TASK", err.Error())
		return
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "SUBMISSION_FAILED"
		if errors.Is(err, ErrQuotaExceeded) {
			errorCode = "QUOTA_EXCEEDED"
		} else if errors.Is(err, ErrInvalidTask) {
			errorCode = "INVALID_TASK"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// Admission happens before anything expensive: a denied task never
	// launches a browser.
	tier, err := h.tiers.Tier(ctx, input.UserID)
	if err != nil {
		// fail closed, same as an unavailable usage count
		h.logger.WithError(err).Warn("tier lookup failed, denying admission", map[string]interface{}{
			"userId": input.UserID,
		})
		metrics.QuotaDenied.Inc()
		return nil, fmt.Errorf("%w: tier unavailable for user %s", ErrQuotaExceeded, input.UserID)
	}

	user := quota.User{ID: input.UserID, Tier: tier}
	remaining := h.gate.Remaining(ctx, user)
	if remaining <= 0 {
		metrics.QuotaDenied.Inc()
		return nil, fmt.Errorf("%w: monthly allowance exhausted for user %s", ErrQuotaExceeded, input.UserID)
	}

	h.setStatus(ctx, input.ApplicationID, "applying", false)

	task := &autosubmit.JobApplicationTask{
		ApplicationID:    input.ApplicationID,
		JobURL:           input.JobURL,
		ResumeFilePath:   input.ResumeFilePath,
		ApplicantProfile: input.ApplicantProfile,
		Credentials:      input.Credentials,
	}

	start := time.Now()
	result := h.runner.Run(ctx, task)

	artifactKeys := h.uploadArtifacts(ctx, input.ApplicationID, result)

	if result.Success {
		h.setStatus(ctx, input.ApplicationID, "applied", true)
	} else {
		h.setStatus(ctx, input.ApplicationID, "error", false)
	}

	h.indexer.IndexRecord(ctx, diagnostics.SubmissionRecord{
		ApplicationID: input.ApplicationID,
		UserID:        input.UserID,
		Site:          result.Site,
		State:         string(result.State),
		Success:       result.Success,
		Message:       result.Message,
		Error:         result.Err,
		ArtifactKeys:  artifactKeys,
		DurationMs:    time.Since(start).Milliseconds(),
	})

	h.notifier.SubmissionOutcome(ctx, notify.Outcome{
		UserEmail: input.UserEmail,
		UserID:    input.UserID,
		JobURL:    input.JobURL,
		Site:      result.Site,
		Success:   result.Success,
		Message:   result.Message,
	})

	h.logger.Info("submission run finished", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"state":         string(result.State),
		"success":       result.Success,
		"durationMs":    time.Since(start).Milliseconds(),
	})

	// The run itself completing is a successful job, whatever the outcome;
	// the workflow branches on Output.Success downstream.
	return &Output{
		Success:      result.Success,
		State:        string(result.State),
		Message:      result.Message,
		Site:         result.Site,
		ArtifactKeys: artifactKeys,
		Remaining:    remaining - boolToInt(result.Success),
	}, nil
}

// uploadArtifacts persists any failure snapshots the run captured. Upload
// problems are logged, never fatal.
func (h *Handler) uploadArtifacts(ctx context.Context, applicationID int, result *autosubmit.TaskResult) []string {
	if h.store == nil || !h.config.ArtifactsEnabled {
		return nil
	}

	var keys []string
	if result.HTML != "" {
		key := artifacts.KeyFor(applicationID, "page", "html")
		if loc, err := h.store.Save(ctx, key, "text/html", []byte(result.HTML)); err != nil {
			h.logger.WithError(err).Warn("artifact upload failed", map[string]interface{}{"key": key})
		} else {
			keys = append(keys, loc)
		}
	}
	if len(result.Screenshot) > 0 {
		key := artifacts.KeyFor(applicationID, "screenshot", "png")
		if loc, err := h.store.Save(ctx, key, "image/png", result.Screenshot); err != nil {
			h.logger.WithError(err).Warn("artifact upload failed", map[string]interface{}{"key": key})
		} else {
			keys = append(keys, loc)
		}
	}
	return keys
}

// setStatus records an application status transition. The submission outcome
// is authoritative even if the write fails; the row catches up on retry.
func (h *Handler) setStatus(ctx context.Context, applicationID int, status string, applied bool) {
	if h.db == nil {
		return
	}

	var err error
	if applied {
		_, err = h.db.ExecContext(ctx, `
			UPDATE applications
			SET status = $1, applied_at = NOW(), updated_at = NOW()
			WHERE id = $2`, status, applicationID)
	} else {
		_, err = h.db.ExecContext(ctx, `
			UPDATE applications
			SET status = $1, updated_at = NOW()
			WHERE id = $2`, status, applicationID)
	}
	if err != nil {
		h.logger.WithError(err).Warn("application status update failed", map[string]interface{}{
			"applicationId": applicationID,
			"status":        status,
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
