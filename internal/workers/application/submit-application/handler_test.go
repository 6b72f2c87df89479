// internal/workers/application/submit-application/handler_test.go
package submitapplication

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DharitG/jobs/internal/autosubmit"
	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/quota"
)

type stubRunner struct {
	result *autosubmit.TaskResult
	calls  int
	task   *autosubmit.JobApplicationTask
}

func (r *stubRunner) Run(ctx context.Context, task *autosubmit.JobApplicationTask) *autosubmit.TaskResult {
	r.calls++
	r.task = task
	return r.result
}

type stubTiers struct {
	tier quota.Tier
	err  error
}

func (s *stubTiers) Tier(ctx context.Context, userID string) (quota.Tier, error) {
	return s.tier, s.err
}

type stubStore struct {
	saved map[string][]byte
	err   error
}

func (s *stubStore) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[key] = data
	return "stored/" + key, nil
}

func createTestInput() *Input {
	return &Input{
		ApplicationID:  42,
		UserID:         "user-001",
		UserEmail:      "ada@example.com",
		JobURL:         "https://boards.greenhouse.io/acme/jobs/1",
		ResumeFilePath: "/data/resumes/ada.pdf",
		ApplicantProfile: map[string]string{
			"firstName": "Ada",
			"lastName":  "Lovelace",
			"email":     "ada@example.com",
		},
	}
}

func fixedUsage(used int, err error) quota.UsageFunc {
	return func(ctx context.Context, userID string) (int, error) {
		return used, err
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE applications").
		WithArgs("applying", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE applications").
		WithArgs("applied", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	runner := &stubRunner{result: &autosubmit.TaskResult{
		Success: true,
		State:   autosubmit.StateVerifySuccess,
		Site:    "greenhouse",
		Message: "application submitted via greenhouse",
	}}

	log := logger.NewTestLogger(t)
	gate := quota.NewGate(quota.FreeMonthlyLimit, fixedUsage(10, nil), log)
	handler := NewHandler(LoadConfig(), runner, &stubTiers{tier: quota.TierFree}, gate, db, nil, nil, nil, log)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, "VERIFY_SUCCESS", output.State)
	assert.Equal(t, "greenhouse", output.Site)
	assert.Equal(t, 39, output.Remaining)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 42, runner.task.ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QuotaExhausted(t *testing.T) {
	runner := &stubRunner{}
	log := logger.NewTestLogger(t)
	gate := quota.NewGate(quota.FreeMonthlyLimit, fixedUsage(50, nil), log)
	handler := NewHandler(LoadConfig(), runner, &stubTiers{tier: quota.TierFree}, gate, nil, nil, nil, nil, log)

	_, err := handler.Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	// the engine must never start for a denied task
	assert.Zero(t, runner.calls)
}

func TestHandler_Execute_TierLookupFailsClosed(t *testing.T) {
	runner := &stubRunner{}
	log := logger.NewTestLogger(t)
	gate := quota.NewGate(quota.FreeMonthlyLimit, fixedUsage(0, nil), log)
	handler := NewHandler(LoadConfig(), runner,
		&stubTiers{err: fmt.Errorf("redis and postgres both down")}, gate, nil, nil, nil, nil, log)

	_, err := handler.Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Zero(t, runner.calls)
}

func TestHandler_Execute_PaidTierSkipsUsage(t *testing.T) {
	runner := &stubRunner{result: &autosubmit.TaskResult{
		Success: true,
		State:   autosubmit.StateVerifySuccess,
		Site:    "lever",
	}}
	log := logger.NewTestLogger(t)
	usage := func(ctx context.Context, userID string) (int, error) {
		t.Fatal("usage lookup must not run for paid tiers")
		return 0, nil
	}
	gate := quota.NewGate(quota.FreeMonthlyLimit, usage, log)
	handler := NewHandler(LoadConfig(), runner, &stubTiers{tier: quota.TierElite}, gate, nil, nil, nil, nil, log)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, quota.UnlimitedSentinel-1, output.Remaining)
}

func TestHandler_Execute_FailedRunUploadsArtifacts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE applications").
		WithArgs("applying", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE applications").
		WithArgs("error", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	runner := &stubRunner{result: &autosubmit.TaskResult{
		Success:    false,
		State:      autosubmit.State("FORM_FILL_FAILED"),
		Site:       "greenhouse",
		Message:    "submission failed during FORM_FILL",
		Err:        "Required application field could not be filled",
		HTML:       "<html><body>broken form</body></html>",
		Screenshot: []byte{0x89, 0x50, 0x4e, 0x47},
	}}
	store := &stubStore{}

	log := logger.NewTestLogger(t)
	gate := quota.NewGate(quota.FreeMonthlyLimit, fixedUsage(0, nil), log)
	handler := NewHandler(LoadConfig(), runner, &stubTiers{tier: quota.TierFree}, gate, db, store, nil, nil, log)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.False(t, output.Success)
	assert.Equal(t, "FORM_FILL_FAILED", output.State)
	assert.Len(t, output.ArtifactKeys, 2)
	assert.Len(t, store.saved, 2)
	// a failed run does not consume allowance
	assert.Equal(t, 50, output.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ArtifactUploadFailureIsNonFatal(t *testing.T) {
	runner := &stubRunner{result: &autosubmit.TaskResult{
		Success: false,
		State:   autosubmit.State("VERIFY_FAILED"),
		HTML:    "<html></html>",
	}}
	store := &stubStore{err: fmt.Errorf("bucket gone")}

	log := logger.NewTestLogger(t)
	gate := quota.NewGate(quota.FreeMonthlyLimit, fixedUsage(0, nil), log)
	handler := NewHandler(LoadConfig(), runner, &stubTiers{tier: quota.TierFree}, gate, nil, store, nil, nil, log)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Empty(t, output.ArtifactKeys)
}
