package usecase

import (
	"context"

	"tidywork/internal/shared/logger"
)

// ToggleOnline переключает online-флаг профиля и публикует presence-событие.
// Профиль не транзакционен: неудачная публикация логируется, флаг остается.
func (a *Actions) ToggleOnline(ctx context.Context) (bool, error) {
	next := !a.store.Profile().Online
	a.store.SetOnline(next)

	if a.presence != nil {
		if err := a.presence.PublishStatus(ctx, a.workerID, next); err != nil {
			a.log.Warn(logger.Entry{
				Action:   "presence_publish_failed",
				Message:  err.Error(),
				WorkerID: a.workerID,
			})
		}
	}

	a.log.Info(logger.Entry{
		Action:   "worker_status_toggled",
		Message:  "online flag changed",
		WorkerID: a.workerID,
		Additional: map[string]any{
			"online": next,
		},
	})
	return next, nil
}
