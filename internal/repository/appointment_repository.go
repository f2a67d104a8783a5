package repository

import (
	"context"

	"gorm.io/gorm"

	"pettech-backend/internal/model"
)

type AppointmentRepository struct {
	gateway
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{gateway{db: db}}
}

// Record inserts the appointment and echoes back the caller-supplied id.
func (r *AppointmentRepository) Record(ctx context.Context, appt *model.Appointment) (string, error) {
	err := r.withTx(ctx, "insert appointment", func(tx *gorm.DB) error {
		return tx.Create(appt).Error
	})
	if err != nil {
		return "", err
	}
	return appt.AppointmentID, nil
}
