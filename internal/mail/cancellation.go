package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
)

const (
	cancellationSubject = "Appointment cancelled"
	dateLayout          = "Monday, January 2 at 15:04"
)

var cancellationTemplate = template.Must(template.New("cancellation").Parse(`<div style="font-family: Arial, Helvetica, sans-serif; font-size: 16px; line-height: 1.6; color: #222;">
  <strong>Hello, {{.ProviderName}}</strong>
  <p>An appointment has been cancelled.</p>
  <p>
    <strong>Client: </strong> {{.UserName}}<br />
    <strong>Date: </strong> {{.Date}}<br />
  </p>
</div>
`))

// CancellationHandler mails the provider when a client cancels.
type CancellationHandler struct {
	mailer   Mailer
	location *time.Location
	logger   *logger.Logger
}

// NewCancellationHandler renders dates in loc.
func NewCancellationHandler(mailer Mailer, loc *time.Location, logger *logger.Logger) *CancellationHandler {
	return &CancellationHandler{mailer: mailer, location: loc, logger: logger}
}

func (h *CancellationHandler) Handle(ctx context.Context, job *messaging.Job) error {
	var payload model.CancellationMailPayload
	if err := job.Decode(&payload); err != nil {
		return backoff.Permanent(fmt.Errorf("invalid cancellation payload: %w", err))
	}
	if payload.ProviderEmail == "" {
		return backoff.Permanent(fmt.Errorf("cancellation job %s has no recipient", job.ID))
	}

	body, err := RenderCancellation(payload, h.location)
	if err != nil {
		return backoff.Permanent(err)
	}

	if err := h.mailer.Send(ctx, Message{
		To:      payload.ProviderEmail,
		ToName:  payload.ProviderName,
		Subject: cancellationSubject,
		HTML:    body,
	}); err != nil {
		return err
	}

	h.logger.Info("cancellation mail sent",
		"appointment_id", payload.AppointmentID.String(),
		"to", payload.ProviderEmail)
	return nil
}

type cancellationView struct {
	ProviderName string
	UserName     string
	Date         string
}

// RenderCancellation builds the HTML body. Values are escaped.
func RenderCancellation(payload model.CancellationMailPayload, loc *time.Location) (string, error) {
	view := cancellationView{
		ProviderName: payload.ProviderName,
		UserName:     payload.UserName,
		Date:         payload.Date.In(loc).Format(dateLayout),
	}

	var buf bytes.Buffer
	if err := cancellationTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render cancellation mail: %w", err)
	}
	return buf.String(), nil
}

var _ messaging.Handler = (*CancellationHandler)(nil)
