package autosubmit

import (
	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/common/metrics"
)

// captureArtifacts snapshots the page HTML and a screenshot for diagnosis.
// Capture is best-effort: a dead page must never mask the failure that led
// here, so errors are logged and counted, not returned.
func captureArtifacts(page Page, result *TaskResult, log logger.Logger) {
	if page == nil || result == nil {
		return
	}

	html, err := page.Content()
	if err != nil {
		metrics.ArtifactCaptureFailures.Inc()
		log.Warn("html capture failed", map[string]interface{}{"error": err.Error()})
	} else {
		result.HTML = html
	}

	shot, err := page.Screenshot()
	if err != nil {
		metrics.ArtifactCaptureFailures.Inc()
		log.Warn("screenshot capture failed", map[string]interface{}{"error": err.Error()})
	} else {
		result.Screenshot = shot
	}
}
