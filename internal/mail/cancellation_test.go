package mail

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
)

type fakeMailer struct {
	sent []Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func cancellationJob(t *testing.T, payload model.CancellationMailPayload) *messaging.Job {
	t.Helper()
	job, err := messaging.NewJob(model.JobCancellationMail, payload, time.Now())
	require.NoError(t, err)
	return job
}

func TestCancellationHandler_Handle(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewCancellationHandler(mailer, time.UTC, logger.Nop())

	job := cancellationJob(t, model.CancellationMailPayload{
		AppointmentID: uuid.New(),
		Date:          time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC),
		ProviderName:  "Dr. Silva",
		ProviderEmail: "silva@example.com",
		UserName:      "Ana <script>",
	})

	require.NoError(t, h.Handle(context.Background(), job))
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "silva@example.com", msg.To)
	assert.Equal(t, "Dr. Silva", msg.ToName)
	assert.Equal(t, "Appointment cancelled", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello, Dr. Silva")
	assert.Contains(t, msg.HTML, "Wednesday, January 10 at 14:00")
	assert.Contains(t, msg.HTML, "Ana &lt;script&gt;")
}

func TestCancellationHandler_MalformedPayloadIsPermanent(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewCancellationHandler(mailer, time.UTC, logger.Nop())
	job := &messaging.Job{ID: "1", Key: model.JobCancellationMail, Payload: json.RawMessage(`"oops"`)}

	err := h.Handle(context.Background(), job)

	var permanent *backoff.PermanentError
	assert.ErrorAs(t, err, &permanent)
	assert.Empty(t, mailer.sent)
}

func TestCancellationHandler_MissingRecipientIsPermanent(t *testing.T) {
	h := NewCancellationHandler(&fakeMailer{}, time.UTC, logger.Nop())

	err := h.Handle(context.Background(), cancellationJob(t, model.CancellationMailPayload{ProviderName: "x"}))

	var permanent *backoff.PermanentError
	assert.ErrorAs(t, err, &permanent)
}

func TestCancellationHandler_SendErrorIsRetryable(t *testing.T) {
	h := NewCancellationHandler(&fakeMailer{err: errors.New("smtp down")}, time.UTC, logger.Nop())

	err := h.Handle(context.Background(), cancellationJob(t, model.CancellationMailPayload{ProviderEmail: "a@b.c"}))

	require.Error(t, err)
	var permanent *backoff.PermanentError
	assert.False(t, errors.As(err, &permanent))
}

func TestRenderCancellation_Location(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)

	body, err := RenderCancellation(model.CancellationMailPayload{
		Date: time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC),
	}, loc)

	require.NoError(t, err)
	assert.Contains(t, body, "at 14:00")
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "localhost", Port: 1025, From: "noreply@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, Message{To: "a@b.c"}), context.Canceled)
}
