// internal/workers/application/submit-application/models.go
package submitapplication

type Input struct {
	ApplicationID    int               `json:"applicationId"`
	UserID           string            `json:"userId"`
	UserEmail        string            `json:"userEmail,omitempty"`
	JobURL           string            `json:"jobUrl"`
	ResumeFilePath   string            `json:"resumeFilePath"`
	ApplicantProfile map[string]string `json:"applicantProfile"`
	Credentials      map[string]string `json:"credentials,omitempty"`
}

type Output struct {
	Success      bool     `json:"success"`
	State        string   `json:"state"`
	Message      string   `json:"message"`
	Site         string   `json:"site,omitempty"`
	ArtifactKeys []string `json:"artifactKeys,omitempty"`
	Remaining    int      `json:"remaining"`
}
