package usecase

import (
	"context"
	"fmt"

	"tidywork/internal/booking/domain"
	"tidywork/internal/shared/logger"
)

// FetchAll — начальная bulk-загрузка трех разделов. Дальше стор живет на
// push-событиях через реконсилер; поллинга нет. Загруженные бронирования
// вливаются через Merge, так что уже примененные push-события не затираются
// более старым ответом списка.
func (a *Actions) FetchAll(ctx context.Context) error {
	offered, err := a.remote.ListOffered(ctx, a.workerID)
	if err != nil {
		return fmt.Errorf("list offered: %w", err)
	}
	active, err := a.remote.ListActive(ctx, a.workerID)
	if err != nil {
		return fmt.Errorf("list active: %w", err)
	}
	history, err := a.remote.ListHistory(ctx, a.workerID)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	merge := func(list []domain.Booking) {
		for i := range list {
			a.store.Merge(&list[i])
		}
	}
	merge(offered)
	merge(active)
	merge(history)

	a.log.Info(logger.Entry{
		Action:   "bookings_loaded",
		Message:  "initial bulk load complete",
		WorkerID: a.workerID,
		Additional: map[string]any{
			"offered": len(offered),
			"active":  len(active),
			"history": len(history),
		},
	})
	return nil
}
