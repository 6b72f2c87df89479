// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DharitG/jobs/internal/common/logger"
)

func createTestInput() *Input {
	return &Input{
		UserID:   "user-001",
		JobURL:   "https://boards.greenhouse.io/acme/jobs/123",
		JobTitle: "Software Engineer",
		Company:  "Acme",
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-001", "https://boards.greenhouse.io/acme/jobs/123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs("user-001", "https://boards.greenhouse.io/acme/jobs/123", "Software Engineer", "Acme", "pending", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, 42, output.ApplicationID)
	assert.Equal(t, "pending", output.ApplicationStatus)

	createdAt, err := time.Parse(time.RFC3339, output.CreatedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), createdAt, time.Minute)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-001", "https://boards.greenhouse.io/acme/jobs/123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	h := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), createTestInput())

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO applications`).
		WillReturnError(assert.AnError)

	h := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), createTestInput())

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
}

func TestHandler_Execute_AuditLogFailureIsNonFatal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO applications`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(assert.AnError)

	h := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, 7, output.ApplicationID)
}

func TestHandler_Execute_MissingFields(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	tests := []struct {
		name  string
		input *Input
	}{
		{"missing userId", &Input{JobURL: "https://example.com/job"}},
		{"missing jobUrl", &Input{UserID: "user-001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := h.Execute(context.Background(), tt.input)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
