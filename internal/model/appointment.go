package model

import "time"

// Appointment is a booking request. AppointmentID is supplied by the caller;
// its uniqueness is expected of callers and not enforced by the schema.
type Appointment struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	AppointmentID string    `gorm:"size:64;not null;index" json:"appointment_id"`
	Name          string    `gorm:"size:128;not null" json:"name"`
	Email         string    `gorm:"size:255;not null" json:"email"`
	Mobile        string    `gorm:"size:32;not null" json:"mobile"`
	Date          string    `gorm:"size:32;not null" json:"date"`
	Time          string    `gorm:"size:32;not null" json:"time"`
	Message       string    `gorm:"type:text" json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// AppointmentBooked is the event published after an appointment commits.
type AppointmentBooked struct {
	AppointmentID string    `json:"appointment_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	BookedAt      time.Time `json:"booked_at"`
}
