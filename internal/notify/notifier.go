// Package notify tells the applicant how their automated submission ended,
// by email (SES) and an optional SNS topic for in-app push fan-out.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/DharitG/jobs/internal/common/logger"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Outcome is what the applicant gets told about one run.
type Outcome struct {
	UserEmail string
	UserID    string
	JobURL    string
	Site      string
	Success   bool
	Message   string
}

// Notifier delivers outcome notifications. Delivery is best-effort: the
// submission result is already persisted by the time this runs.
type Notifier struct {
	ses      sesAPI
	sns      snsAPI
	sender   string
	topicARN string
	logger   logger.Logger
}

func New(ctx context.Context, region, sender, topicARN string, log logger.Logger) (*Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Notifier{
		ses:      ses.NewFromConfig(cfg),
		sns:      sns.NewFromConfig(cfg),
		sender:   sender,
		topicARN: topicARN,
		logger:   log,
	}, nil
}

// SubmissionOutcome sends the outcome email and publishes the push event.
// Either channel failing logs a warning; neither blocks the other.
func (n *Notifier) SubmissionOutcome(ctx context.Context, outcome Outcome) {
	if n == nil {
		return
	}
	n.sendEmail(ctx, outcome)
	n.publish(ctx, outcome)
}

func (n *Notifier) sendEmail(ctx context.Context, outcome Outcome) {
	if n.ses == nil || outcome.UserEmail == "" {
		return
	}

	subject := fmt.Sprintf("Your application on %s was submitted", outcome.Site)
	body := fmt.Sprintf("Good news! We submitted your application:\n\n%s\n", outcome.JobURL)
	if !outcome.Success {
		subject = fmt.Sprintf("We couldn't submit your application on %s", outcome.Site)
		body = fmt.Sprintf("We hit a problem applying to:\n\n%s\n\n%s\nYou may want to apply manually.\n",
			outcome.JobURL, outcome.Message)
	}

	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.sender),
		Destination: &sestypes.Destination{ToAddresses: []string{outcome.UserEmail}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		n.logger.WithError(err).Warn("outcome email failed", map[string]interface{}{
			"userId": outcome.UserID,
		})
	}
}

func (n *Notifier) publish(ctx context.Context, outcome Outcome) {
	if n.sns == nil || n.topicARN == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"userId":  outcome.UserID,
		"jobUrl":  outcome.JobURL,
		"site":    outcome.Site,
		"success": outcome.Success,
		"message": outcome.Message,
	})
	if err != nil {
		return
	}

	_, err = n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		n.logger.WithError(err).Warn("outcome publish failed", map[string]interface{}{
			"userId": outcome.UserID,
		})
	}
}
