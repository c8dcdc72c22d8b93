package in_amqp

import (
	"context"
	"encoding/json"

	out "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/booking/domain"
	"tidywork/internal/shared/logger"
	"tidywork/internal/shared/mq"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// pushPayload — формат сообщения из booking_topic.
type pushPayload struct {
	Type    string         `json:"type"` // insert | update
	Booking domain.Booking `json:"booking"`
}

// PushConsumer слушает персональную очередь воркера и превращает сообщения
// в типизированный поток BookingEvent. Реализует out.PushStream;
// перезапускается созданием нового консьюмера.
type PushConsumer struct {
	events chan out.BookingEvent
	cancel context.CancelFunc
	log    *logger.Logger
}

// Subscribe начинает чтение очереди воркера.
func Subscribe(ctx context.Context, conn *mq.RabbitMQ, workerID string, log *logger.Logger) (*PushConsumer, error) {
	consumeCtx, cancel := context.WithCancel(ctx)
	c := &PushConsumer{
		events: make(chan out.BookingEvent, 64),
		cancel: cancel,
		log:    log,
	}

	queue := mq.WorkerQueue(workerID)
	err := conn.Consume(consumeCtx, queue, "worker-agent-"+workerID, func(msg amqp091.Delivery) {
		c.handle(consumeCtx, msg)
	})
	if err != nil {
		cancel()
		return nil, err
	}

	log.Info(logger.Entry{
		Action:   "push_channel_subscribed",
		Message:  "listening for booking events",
		WorkerID: workerID,
		Additional: map[string]any{
			"queue": queue,
		},
	})
	return c, nil
}

func (c *PushConsumer) handle(ctx context.Context, msg amqp091.Delivery) {
	var payload pushPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.log.Error(logger.Entry{
			Action:  "push_event_unmarshal_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		_ = msg.Nack(false, false) // dead letter queue
		return
	}

	if payload.Booking.ID == "" {
		c.log.Warn(logger.Entry{
			Action:  "push_event_invalid",
			Message: "booking id missing",
		})
		_ = msg.Nack(false, false)
		return
	}

	kind := out.EventUpdate
	if payload.Type == "insert" {
		kind = out.EventInsert
	}

	select {
	case <-ctx.Done():
		_ = msg.Nack(false, true) // requeue: подписка закрывается
		return
	case c.events <- out.BookingEvent{Kind: kind, Booking: payload.Booking}:
		_ = msg.Ack(false)
	}
}

func (c *PushConsumer) Events() <-chan out.BookingEvent {
	return c.events
}

func (c *PushConsumer) Close() error {
	c.cancel()
	return nil
}
