package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a booking of one provider slot by a client. It is never
// deleted; cancellation sets CancelledAt.
type Appointment struct {
	Base
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	ProviderID  uuid.UUID  `db:"provider_id" json:"provider_id"`
	Date        time.Time  `db:"date" json:"date"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at"`
}

// Active reports whether the appointment still holds its slot.
func (a *Appointment) Active() bool {
	return a.CancelledAt == nil
}

// UserSummary is the public part of a user joined into listings.
type UserSummary struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email,omitempty"`
	AvatarPath *string   `db:"avatar_path" json:"-"`
	AvatarURL  string    `db:"-" json:"avatar_url,omitempty"`
}

// AppointmentWithProvider is a row of the client's own appointment list.
type AppointmentWithProvider struct {
	Appointment
	Provider   UserSummary `db:"provider" json:"provider"`
	Past       bool        `db:"-" json:"past"`
	Cancelable bool        `db:"-" json:"cancelable"`
}

// AppointmentWithClient is a row of a provider's daily schedule.
type AppointmentWithClient struct {
	Appointment
	User UserSummary `db:"client" json:"user"`
}

// CreateAppointmentRequest is the body of POST /appointments. Date accepts
// epoch milliseconds, RFC3339 or a naive local timestamp.
type CreateAppointmentRequest struct {
	ProviderID string `json:"provider_id" binding:"required,uuid"`
	Date       string `json:"date" binding:"required"`
}

// CreateAppointmentInput is the parsed form handed to the scheduler.
type CreateAppointmentInput struct {
	ProviderID uuid.UUID
	Date       time.Time
}

// Job keys
const (
	JobCancellationMail = "cancellation_mail"
)

// CancellationMailPayload carries everything the worker needs to tell a
// provider that a client cancelled.
type CancellationMailPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Date          time.Time `json:"date"`
	ProviderName  string    `json:"provider_name"`
	ProviderEmail string    `json:"provider_email"`
	UserName      string    `json:"user_name"`
}
