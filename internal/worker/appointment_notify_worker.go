package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"pettech-backend/internal/errs"
	"pettech-backend/internal/model"
	"pettech-backend/internal/platform/rabbitmq"
)

// Notifier delivers a booking confirmation to the clinic or the owner.
type Notifier interface {
	Notify(ctx context.Context, event model.AppointmentBooked) error
}

// LogNotifier writes each booking as a structured log line.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, event model.AppointmentBooked) error {
	n.Logger.InfoContext(ctx, "appointment booked",
		"appointment_id", event.AppointmentID,
		"name", event.Name,
		"date", event.Date,
		"time", event.Time,
	)
	return nil
}

type AppointmentNotifyWorker struct {
	conn      *amqp.Connection
	notifier  Notifier
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAppointmentNotifyWorker(conn *amqp.Connection, notifier Notifier, queueName string, logger *slog.Logger) *AppointmentNotifyWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentNotifyWorker{
		conn:      conn,
		notifier:  notifier,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *AppointmentNotifyWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Error("appointment notify failed", "err", errs.Loggable(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *AppointmentNotifyWorker) handle(ctx context.Context, body []byte) error {
	event, err := rabbitmq.DecodeAppointmentBooked(body)
	if err != nil {
		return err
	}
	if err := w.notifier.Notify(ctx, event); err != nil {
		return errs.Wrapf(err, "notify appointment %s", event.AppointmentID)
	}
	return nil
}

func (w *AppointmentNotifyWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
