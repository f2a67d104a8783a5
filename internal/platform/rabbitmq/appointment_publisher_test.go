package rabbitmq

import (
	"testing"
	"time"

	"pettech-backend/internal/model"
)

func TestAppointmentEventCodec(t *testing.T) {
	in := model.AppointmentBooked{
		AppointmentID: "APT-1",
		Name:          "Ana",
		Email:         "ana@pets.test",
		Date:          "2026-10-20",
		Time:          "09:00",
		BookedAt:      time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC),
	}
	body, err := EncodeAppointmentBooked(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeAppointmentBooked(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.BookedAt.Equal(in.BookedAt) {
		t.Fatalf("booked_at = %v, want %v", out.BookedAt, in.BookedAt)
	}
	out.BookedAt = in.BookedAt
	if out != in {
		t.Fatalf("decoded %+v, want %+v", out, in)
	}
}

func TestDecodeAppointmentBooked_Rejects(t *testing.T) {
	for _, body := range []string{`{`, `{"name":"Ana"}`} {
		if _, err := DecodeAppointmentBooked([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}
