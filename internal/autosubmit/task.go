// Package autosubmit drives a real browser against a third-party hiring site
// to fill and submit a job application on the applicant's behalf. One Run call
// owns one browser end to end and always produces exactly one TaskResult.
package autosubmit

import (
	"fmt"
	"net/url"
	"strings"
)

// Well-known applicant-profile keys. Adapters join one or more of these into
// a field value; unknown keys are passed through untouched.
const (
	ProfileFirstName = "firstName"
	ProfileLastName  = "lastName"
	ProfileEmail     = "email"
	ProfilePhone     = "phone"
	ProfileLinkedIn  = "linkedInUrl"
	ProfileCompany   = "currentCompany"
)

// JobApplicationTask is the fully-resolved task descriptor handed to the
// engine by the task queue. It is never mutated by a run.
type JobApplicationTask struct {
	ApplicationID    int               `json:"applicationId"`
	JobURL           string            `json:"jobUrl"`
	ResumeFilePath   string            `json:"resumeFilePath"`
	ApplicantProfile map[string]string `json:"applicantProfile"`
	Credentials      map[string]string `json:"credentials,omitempty"`
}

// Validate checks the descriptor fields the engine cannot run without.
func (t *JobApplicationTask) Validate() error {
	if t.ApplicationID <= 0 {
		return fmt.Errorf("applicationId must be positive, got %d", t.ApplicationID)
	}
	if strings.TrimSpace(t.JobURL) == "" {
		return fmt.Errorf("jobUrl is required")
	}
	if _, err := url.Parse(t.JobURL); err != nil {
		return fmt.Errorf("jobUrl is not a valid URL: %w", err)
	}
	if strings.TrimSpace(t.ResumeFilePath) == "" {
		return fmt.Errorf("resumeFilePath is required")
	}
	if len(t.ApplicantProfile) == 0 {
		return fmt.Errorf("applicantProfile is empty")
	}
	return nil
}

// Profile returns the trimmed profile value for a key, "" when absent.
func (t *JobApplicationTask) Profile(key string) string {
	return strings.TrimSpace(t.ApplicantProfile[key])
}

// TaskResult is the single terminal outcome of a run. Ownership transfers to
// the invoker, which persists it against the Application record and uploads
// any attached artifacts.
type TaskResult struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	State      State                  `json:"state"`
	Site       string                 `json:"site,omitempty"`
	HTML       string                 `json:"html,omitempty"`
	Screenshot []byte                 `json:"screenshot,omitempty"`
	HARTrace   map[string]interface{} `json:"harTrace,omitempty"`
	Err        string                 `json:"error,omitempty"`
}
