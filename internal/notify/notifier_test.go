package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DharitG/jobs/internal/common/logger"
)

type stubSES struct {
	input *ses.SendEmailInput
	err   error
}

func (s *stubSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	s.input = params
	return &ses.SendEmailOutput{}, s.err
}

type stubSNS struct {
	input *sns.PublishInput
	err   error
}

func (s *stubSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	s.input = params
	return &sns.PublishOutput{}, s.err
}

func testNotifier(t *testing.T, sesStub *stubSES, snsStub *stubSNS) *Notifier {
	t.Helper()
	return &Notifier{
		ses:      sesStub,
		sns:      snsStub,
		sender:   "noreply@example.com",
		topicARN: "arn:aws:sns:us-east-1:1:submissions",
		logger:   logger.NewTestLogger(t),
	}
}

func TestSubmissionOutcomeSuccess(t *testing.T) {
	sesStub := &stubSES{}
	snsStub := &stubSNS{}
	n := testNotifier(t, sesStub, snsStub)

	n.SubmissionOutcome(context.Background(), Outcome{
		UserEmail: "ada@example.com",
		UserID:    "u1",
		JobURL:    "https://boards.greenhouse.io/acme/jobs/1",
		Site:      "greenhouse",
		Success:   true,
	})

	require.NotNil(t, sesStub.input)
	assert.Equal(t, []string{"ada@example.com"}, sesStub.input.Destination.ToAddresses)
	assert.Contains(t, *sesStub.input.Message.Subject.Data, "was submitted")

	require.NotNil(t, snsStub.input)
	assert.Contains(t, *snsStub.input.Message, `"success":true`)
}

func TestSubmissionOutcomeFailureMentionsManualApply(t *testing.T) {
	sesStub := &stubSES{}
	n := testNotifier(t, sesStub, &stubSNS{})

	n.SubmissionOutcome(context.Background(), Outcome{
		UserEmail: "ada@example.com",
		JobURL:    "https://jobs.lever.co/acme/x",
		Site:      "lever",
		Success:   false,
		Message:   "submission could not be confirmed",
	})

	require.NotNil(t, sesStub.input)
	assert.Contains(t, *sesStub.input.Message.Subject.Data, "couldn't submit")
	assert.Contains(t, *sesStub.input.Message.Body.Text.Data, "apply manually")
}

// One channel failing must not stop the other.
func TestSubmissionOutcomeChannelIndependence(t *testing.T) {
	sesStub := &stubSES{err: fmt.Errorf("ses throttled")}
	snsStub := &stubSNS{}
	n := testNotifier(t, sesStub, snsStub)

	n.SubmissionOutcome(context.Background(), Outcome{
		UserEmail: "ada@example.com",
		Site:      "indeed",
	})
	assert.NotNil(t, snsStub.input)
}

func TestSubmissionOutcomeNilNotifier(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.SubmissionOutcome(context.Background(), Outcome{})
	})
}

func TestSubmissionOutcomeNoEmailAddress(t *testing.T) {
	sesStub := &stubSES{}
	n := testNotifier(t, sesStub, &stubSNS{})

	n.SubmissionOutcome(context.Background(), Outcome{UserID: "u1"})
	assert.Nil(t, sesStub.input)
}
