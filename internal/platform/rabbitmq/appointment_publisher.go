package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"pettech-backend/internal/model"
)

type AppointmentPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewAppointmentPublisher(conn *amqp.Connection, queueName string) *AppointmentPublisher {
	return &AppointmentPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *AppointmentPublisher) Publish(ctx context.Context, event model.AppointmentBooked) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := EncodeAppointmentBooked(event)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "appointment.booked",
			MessageId:    event.AppointmentID,
			Timestamp:    event.BookedAt,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish appointment event failed: %w", err)
	}
	return nil
}

func EncodeAppointmentBooked(event model.AppointmentBooked) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal appointment event failed: %w", err)
	}
	return payload, nil
}

// DecodeAppointmentBooked rejects payloads without an appointment id.
func DecodeAppointmentBooked(body []byte) (model.AppointmentBooked, error) {
	var event model.AppointmentBooked
	if err := json.Unmarshal(body, &event); err != nil {
		return model.AppointmentBooked{}, fmt.Errorf("unmarshal appointment event failed: %w", err)
	}
	if event.AppointmentID == "" {
		return model.AppointmentBooked{}, fmt.Errorf("appointment event without appointment_id")
	}
	return event, nil
}
