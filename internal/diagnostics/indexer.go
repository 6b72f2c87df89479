// Package diagnostics ships submission run records to Elasticsearch so
// failures can be searched by site, state and error code.
package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/DharitG/jobs/internal/common/logger"
)

const defaultIndex = "submission-runs"

// SubmissionRecord is the document indexed per completed run.
type SubmissionRecord struct {
	ApplicationID int       `json:"applicationId"`
	UserID        string    `json:"userId"`
	Site          string    `json:"site"`
	State         string    `json:"state"`
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	Error         string    `json:"error,omitempty"`
	ArtifactKeys  []string  `json:"artifactKeys,omitempty"`
	DurationMs    int64     `json:"durationMs"`
	Timestamp     time.Time `json:"timestamp"`
}

// Indexer writes run records. Indexing is best-effort observability: an
// unreachable cluster logs a warning and the submission outcome stands.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = defaultIndex
	}
	return &Indexer{client: client, index: index, logger: log}
}

// IndexRecord indexes one run record.
func (i *Indexer) IndexRecord(ctx context.Context, record SubmissionRecord) {
	if i == nil || i.client == nil {
		return
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(record)
	if err != nil {
		i.logger.WithError(err).Warn("marshal submission record failed", nil)
		return
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(fmt.Sprintf("%d-%d", record.ApplicationID, record.Timestamp.UnixNano())),
	)
	if err != nil {
		i.logger.WithError(err).Warn("index submission record failed", map[string]interface{}{
			"applicationId": record.ApplicationID,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Warn("elasticsearch rejected submission record", map[string]interface{}{
			"applicationId": record.ApplicationID,
			"status":        res.Status(),
		})
	}
}
