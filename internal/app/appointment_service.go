package app

import (
	"context"
	"log/slog"
	"time"

	"pettech-backend/internal/errs"
	"pettech-backend/internal/model"
)

type AppointmentStore interface {
	Record(ctx context.Context, appt *model.Appointment) (string, error)
}

// AppointmentPublisher announces committed bookings to downstream consumers.
type AppointmentPublisher interface {
	Publish(ctx context.Context, event model.AppointmentBooked) error
}

type AppointmentService struct {
	appointments AppointmentStore
	publisher    AppointmentPublisher
	logger       *slog.Logger
	now          func() time.Time
}

// BookAppointmentInput requires every key to be present; values may be empty.
type BookAppointmentInput struct {
	AppointmentID *string `json:"appointment_id" validate:"required"`
	Name          *string `json:"name" validate:"required"`
	Email         *string `json:"email" validate:"required"`
	Mobile        *string `json:"mobile" validate:"required"`
	Date          *string `json:"date" validate:"required"`
	Time          *string `json:"time" validate:"required"`
	Message       *string `json:"message" validate:"required"`
}

// NewAppointmentService wires the store; publisher may be nil.
func NewAppointmentService(appointments AppointmentStore, publisher AppointmentPublisher, logger *slog.Logger) *AppointmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentService{
		appointments: appointments,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Book records the appointment and returns the caller-supplied id.
func (s *AppointmentService) Book(ctx context.Context, input BookAppointmentInput) (string, error) {
	if err := Validate(input); err != nil {
		return "", err
	}

	appt := &model.Appointment{
		AppointmentID: *input.AppointmentID,
		Name:          *input.Name,
		Email:         *input.Email,
		Mobile:        *input.Mobile,
		Date:          *input.Date,
		Time:          *input.Time,
		Message:       *input.Message,
	}
	id, err := s.appointments.Record(ctx, appt)
	if err != nil {
		return "", err
	}

	if s.publisher != nil {
		event := model.AppointmentBooked{
			AppointmentID: id,
			Name:          appt.Name,
			Email:         appt.Email,
			Mobile:        appt.Mobile,
			Date:          appt.Date,
			Time:          appt.Time,
			BookedAt:      s.now().UTC(),
		}
		// The row is committed; a lost event must not fail the booking.
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish appointment event failed",
				"appointment_id", id,
				"err", errs.Loggable(err),
			)
		}
	}
	return id, nil
}
