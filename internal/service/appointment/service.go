package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	"github.com/jwalitptl/booking-api/pkg/clock"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// DateLayout renders appointment dates in provider notifications.
const DateLayout = "Monday, January 2 at 15:04"

type Config struct {
	Location       *time.Location
	PageSize       int
	Policy         CancellationPolicy
	EnqueueTimeout time.Duration
	FilesBaseURL   string
}

type Service struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	dispatcher   notification.Dispatcher
	queue        messaging.Queue
	clock        clock.Clock
	config       Config
	logger       *logger.Logger
	metrics      *metrics.Metrics

	pending sync.WaitGroup
}

func NewService(
	appointments repository.AppointmentRepository,
	users repository.UserRepository,
	dispatcher notification.Dispatcher,
	queue messaging.Queue,
	clk clock.Clock,
	config Config,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.PageSize <= 0 {
		config.PageSize = 20
	}
	if config.EnqueueTimeout <= 0 {
		config.EnqueueTimeout = 5 * time.Second
	}

	return &Service{
		appointments: appointments,
		users:        users,
		dispatcher:   dispatcher,
		queue:        queue,
		clock:        clk,
		config:       config,
		logger:       logger,
		metrics:      metrics,
	}
}

// Create books the provider slot containing in.Date for userID. Checks run
// in a fixed order and the first failing one decides the error.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in model.CreateAppointmentInput) (*model.Appointment, error) {
	if in.ProviderID == uuid.Nil || in.Date.IsZero() {
		return nil, s.reject(apperrors.Validation("provider_id and date are required"))
	}

	if userID == in.ProviderID {
		return nil, s.reject(apperrors.SelfBooking())
	}

	provider, err := s.users.FindProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, s.fail("failed to load provider", err)
	}
	if provider == nil {
		return nil, s.reject(apperrors.NotAProvider("you can only create appointments with providers"))
	}

	hourStart := clock.StartOfHour(in.Date.In(s.config.Location))
	if !hourStart.After(s.clock.Now()) {
		return nil, s.reject(apperrors.PastDate())
	}

	existing, err := s.appointments.FindActive(ctx, in.ProviderID, hourStart)
	if err != nil {
		return nil, s.fail("failed to check slot", err)
	}
	if existing != nil {
		return nil, s.reject(apperrors.SlotUnavailable())
	}

	appt := &model.Appointment{
		Base:       model.Base{ID: uuid.New()},
		UserID:     userID,
		ProviderID: in.ProviderID,
		Date:       hourStart,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost the race to a concurrent booking of the same slot.
			return nil, s.reject(apperrors.SlotUnavailable())
		}
		return nil, s.fail("failed to create appointment", err)
	}

	s.metrics.AppointmentsCreated.Inc()
	s.logger.Info("Appointment created",
		"appointment_id", appt.ID.String(),
		"provider_id", appt.ProviderID.String(),
		"date", appt.Date.Format(time.RFC3339))

	s.notifyCreated(ctx, appt)

	return appt, nil
}

func (s *Service) notifyCreated(ctx context.Context, appt *model.Appointment) {
	clientName := "a client"
	if user, err := s.users.Get(ctx, appt.UserID); err != nil {
		s.logger.Error(err, "Failed to load client for notification", "user_id", appt.UserID.String())
	} else if user != nil {
		clientName = user.Name
	}

	message := fmt.Sprintf("New appointment with %s for %s", clientName, s.FormatDate(appt.Date))
	if err := s.dispatcher.NotifyCreated(ctx, appt.ProviderID, message); err != nil {
		s.metrics.NotificationFailures.Inc()
		s.logger.Error(err, "Failed to notify provider", "appointment_id", appt.ID.String())
	}
}

// FormatDate renders t in the business location, e.g. "Wednesday, January 10 at 14:00".
func (s *Service) FormatDate(t time.Time) string {
	return t.In(s.config.Location).Format(DateLayout)
}

// ListForUser returns one page of the user's active appointments, soonest
// first. Pages start at 1.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, page int) ([]*model.AppointmentWithProvider, error) {
	if page < 1 {
		page = 1
	}

	appts, err := s.appointments.ListActiveForUser(ctx, userID, model.Pagination{Page: page, PageSize: s.config.PageSize})
	if err != nil {
		return nil, s.fail("failed to list appointments", err)
	}

	now := s.clock.Now()
	for _, a := range appts {
		a.Past = a.Date.Before(now)
		a.Cancelable = s.config.Policy.Allows(a.Date, now)
		if a.Provider.AvatarPath != nil {
			a.Provider.AvatarURL = model.FileURL(s.config.FilesBaseURL, *a.Provider.AvatarPath)
		}
	}
	if appts == nil {
		appts = []*model.AppointmentWithProvider{}
	}
	return appts, nil
}

// Get loads an appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, s.fail("failed to load appointment", err)
	}
	if appt == nil {
		return nil, apperrors.NotFound("appointment")
	}
	return appt, nil
}

// Cancel cancels the requester's own appointment while the cancellation
// window is open and queues the provider email. The email never blocks or
// undoes the cancellation.
func (s *Service) Cancel(ctx context.Context, requesterID, appointmentID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, s.fail("failed to load appointment", err)
	}
	if appt == nil {
		return nil, s.reject(apperrors.NotFound("appointment"))
	}

	if appt.UserID != requesterID {
		return nil, s.reject(apperrors.Permission("you don't have permission to cancel this appointment"))
	}

	if !appt.Active() {
		return nil, s.reject(apperrors.Validation("appointment already cancelled"))
	}

	now := s.clock.Now()
	if !s.config.Policy.Allows(appt.Date, now) {
		return nil, s.reject(apperrors.CancellationWindow(s.config.Policy.WindowHours))
	}

	appt.CancelledAt = &now
	if err := s.appointments.Update(ctx, appt); err != nil {
		appt.CancelledAt = nil
		if errors.Is(err, repository.ErrNotModified) {
			return nil, s.reject(apperrors.Validation("appointment already cancelled"))
		}
		return nil, s.fail("failed to cancel appointment", err)
	}

	s.metrics.AppointmentsCancelled.Inc()
	s.logger.Info("Appointment cancelled", "appointment_id", appt.ID.String())

	s.enqueueCancellation(*appt)

	return appt, nil
}

func (s *Service) enqueueCancellation(appt model.Appointment) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.EnqueueTimeout)
		defer cancel()

		if err := s.submitCancellation(ctx, &appt); err != nil {
			s.metrics.EnqueueFailures.Inc()
			s.logger.Error(err, "Failed to queue cancellation mail", "appointment_id", appt.ID.String())
		}
	}()
}

func (s *Service) submitCancellation(ctx context.Context, appt *model.Appointment) error {
	provider, err := s.users.Get(ctx, appt.ProviderID)
	if err != nil {
		return fmt.Errorf("failed to load provider: %w", err)
	}
	if provider == nil {
		return fmt.Errorf("provider %s not found", appt.ProviderID)
	}

	user, err := s.users.Get(ctx, appt.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s not found", appt.UserID)
	}

	return s.queue.Enqueue(ctx, model.JobCancellationMail, model.CancellationMailPayload{
		AppointmentID: appt.ID,
		Date:          appt.Date,
		ProviderName:  provider.Name,
		ProviderEmail: provider.Email,
		UserName:      user.Name,
	})
}

// Wait blocks until queued background submissions have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) reject(err *apperrors.AppError) error {
	s.metrics.AppointmentsRejected.WithLabelValues(string(err.Kind)).Inc()
	s.logger.Debug("Appointment request rejected", "code", string(err.Kind), "reason", err.Message)
	return err
}

func (s *Service) fail(msg string, err error) error {
	s.logger.Error(err, msg)
	return apperrors.Infrastructure(msg, err)
}
