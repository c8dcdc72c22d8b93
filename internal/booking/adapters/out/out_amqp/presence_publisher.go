package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tidywork/internal/shared/logger"
	"tidywork/internal/shared/mq"
)

// PresencePublisher публикует смену online/offline статуса воркера
// в booking_topic.
type PresencePublisher struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

func NewPresencePublisher(conn *mq.RabbitMQ, log *logger.Logger) *PresencePublisher {
	return &PresencePublisher{mq: conn, log: log}
}

func (p *PresencePublisher) PublishStatus(ctx context.Context, workerID string, online bool) error {
	body, err := json.Marshal(map[string]any{
		"type":      "worker_status_changed",
		"worker_id": workerID,
		"online":    online,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal presence event: %w", err)
	}

	rk := mq.RoutingKeyPresence(workerID)
	if err := p.mq.Publish(ctx, mq.BookingExchange, rk, body); err != nil {
		return fmt.Errorf("publish presence event: %w", err)
	}

	p.log.Info(logger.Entry{
		Action:   "presence_published",
		Message:  "worker status event published",
		WorkerID: workerID,
		Additional: map[string]any{
			"online":      online,
			"routing_key": rk,
		},
	})
	return nil
}
