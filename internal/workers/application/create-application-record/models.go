// internal/workers/application/create-application-record/models.go
package createapplicationrecord

type Input struct {
	UserID   string `json:"userId"`
	JobURL   string `json:"jobUrl"`
	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
}

type Output struct {
	ApplicationID     int    `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
