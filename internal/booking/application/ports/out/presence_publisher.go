package out

import "context"

// PresencePublisher уведомляет бэкенд о смене online/offline статуса воркера.
type PresencePublisher interface {
	PublishStatus(ctx context.Context, workerID string, online bool) error
}
