// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"github.com/DharitG/jobs/internal/common/config"
)

// StartWorker opens a job worker for the given task type. The returned worker
// polls until closed; callers close the Zeebe client on shutdown which stops
// all workers opened from it.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler func(worker.JobClient, entities.Job), log *zap.Logger) worker.JobWorker {
	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return jw
}
