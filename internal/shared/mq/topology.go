package mq

import (
	"fmt"

	"tidywork/internal/shared/logger"
)

const (
	// BookingExchange — topic exchange, через который бэкенд рассылает
	// изменения бронирований, а агент публикует presence-события.
	BookingExchange = "booking_topic"

	// RoutingKeyOffered — новые офферы, общие для всех воркеров.
	RoutingKeyOffered = "booking.offered"
)

// RoutingKeyUpdates — обновления бронирований конкретного воркера.
func RoutingKeyUpdates(workerID string) string {
	return "booking.update." + workerID
}

// RoutingKeyPresence — смена online/offline статуса воркера.
func RoutingKeyPresence(workerID string) string {
	return "worker.status_changed." + workerID
}

// WorkerQueue — имя персональной очереди воркера.
func WorkerQueue(workerID string) string {
	return "worker." + workerID + ".bookings"
}

// SetupTopology создает exchange и персональную очередь воркера (идемпотентно).
func SetupTopology(mq *RabbitMQ, workerID string, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	if err := ch.ExchangeDeclare(
		BookingExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		return fmt.Errorf("declare %s: %w", BookingExchange, err)
	}

	queue := WorkerQueue(workerID)
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	// Очередь получает и общий пул офферов, и адресные обновления.
	for _, rk := range []string{RoutingKeyOffered, RoutingKeyUpdates(workerID)} {
		if err := ch.QueueBind(queue, rk, BookingExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", queue, rk, err)
		}
	}

	log.Info(logger.Entry{
		Action:   "topology_setup_complete",
		Message:  "exchange and worker queue created",
		WorkerID: workerID,
		Additional: map[string]any{
			"queue": queue,
		},
	})

	return nil
}
