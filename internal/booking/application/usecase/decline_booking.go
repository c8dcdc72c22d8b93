package usecase

import (
	"context"
	"errors"
	"fmt"

	"tidywork/internal/booking/domain"
	"tidywork/internal/shared/logger"
)

// Decline — отказ от оффера. Оффер оптимистично убирается из пула; при
// сетевой ошибке возвращается обратно. Бизнес-отказ сервера (оффер уже
// не существует или забран) оставляет пул без оффера — это и есть цель.
func (a *Actions) Decline(ctx context.Context, bookingID string) error {
	if err := a.store.BeginMutation(bookingID); err != nil {
		return err
	}
	defer a.store.EndMutation(bookingID)

	snap, ok := a.store.DropOffered(bookingID)
	if !ok {
		return domain.ErrBookingNotFound
	}

	err := a.remote.DeclineJob(ctx, bookingID, a.workerID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrTimeout):
		reinserted := a.store.ReinsertOffered(snap)
		a.log.Error(logger.Entry{
			Action:    "decline_failed",
			Message:   err.Error(),
			Error:     &logger.ErrObj{Msg: err.Error()},
			BookingID: bookingID,
			Additional: map[string]any{
				"reinserted": reinserted,
			},
		})
		return fmt.Errorf("decline job: %w", err)
	default:
		// Сервер уже не знает оффер за нами — локальное удаление корректно.
		a.log.Warn(logger.Entry{
			Action:    "decline_remote_rejected",
			Message:   err.Error(),
			BookingID: bookingID,
		})
	}

	a.log.Info(logger.Entry{
		Action:    "booking_declined",
		Message:   "offer removed from pool",
		BookingID: bookingID,
		WorkerID:  a.workerID,
	})
	return nil
}
