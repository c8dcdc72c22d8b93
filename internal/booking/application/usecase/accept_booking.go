package usecase

import (
	"context"
	"errors"
	"fmt"

	out "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/booking/domain"
	"tidywork/internal/shared/logger"
)

// Accept — клейм оффера (offered → accepted). Это гонка между клиентами:
// удаленный вызов — условная запись, успешная только пока cleaner_id на
// сервере не задан. Проигрыш гонки удаляет оффер из локального пула целиком
// и возвращает отдельный отказ "job no longer available".
func (a *Actions) Accept(ctx context.Context, bookingID string) error {
	if err := a.store.BeginMutation(bookingID); err != nil {
		return err
	}
	defer a.store.EndMutation(bookingID)

	snap, ok := a.store.Get(bookingID)
	if !ok {
		return domain.ErrBookingNotFound
	}

	// Идемпотентность: повторный accept уже принятого нами бронирования —
	// no-op успех, а не дублирующая мутация. Проверка идет внутри in-flight
	// окна: пока первый accept в полете, второй получает отказ, а не ложный
	// успех по неподтвержденному optimistic-состоянию.
	if snap.Status == domain.StatusAccepted && snap.OwnedBy(a.workerID) {
		a.log.Debug(logger.Entry{
			Action:    "accept_noop",
			Message:   "booking already accepted by this worker",
			BookingID: bookingID,
		})
		return nil
	}

	next, err := domain.AttemptTransition(snap, domain.StatusAccepted, a.workerID, a.store.LastServerVersion(bookingID))
	if err != nil {
		a.log.Warn(logger.Entry{
			Action:    "accept_rejected",
			Message:   err.Error(),
			BookingID: bookingID,
			Additional: map[string]any{
				"from": string(snap.Status),
			},
		})
		return err
	}

	a.store.ApplyOptimistic(next, nil)
	a.record(ctx, bookingID, snap.Status, domain.StatusAccepted, out.OutcomeApplied, next.Version)

	version, rerr := a.remote.AcceptJob(ctx, bookingID, a.workerID)
	if rerr != nil {
		if errors.Is(rerr, domain.ErrConflict) {
			// Гонка проиграна: оффер уже у другого воркера. Не откат статуса,
			// а полное удаление из пула офферов.
			a.store.Discard(bookingID, next.Version)
			a.record(ctx, bookingID, domain.StatusAccepted, snap.Status, out.OutcomeRolledBack, snap.Version)
			a.log.Info(logger.Entry{
				Action:    "claim_race_lost",
				Message:   "offer already claimed by another worker",
				BookingID: bookingID,
				WorkerID:  a.workerID,
			})
			return domain.ErrJobUnavailable
		}

		restored := a.store.Restore(snap, next.Version, nil)
		outcome := out.OutcomeRolledBack
		if !restored {
			outcome = out.OutcomeSuperseded
		}
		a.record(ctx, bookingID, domain.StatusAccepted, snap.Status, outcome, snap.Version)
		a.log.Error(logger.Entry{
			Action:    "accept_failed",
			Message:   rerr.Error(),
			Error:     &logger.ErrObj{Msg: rerr.Error()},
			BookingID: bookingID,
			Additional: map[string]any{
				"restored": restored,
			},
		})
		return fmt.Errorf("accept job: %w", rerr)
	}

	a.store.ConfirmVersion(bookingID, version)
	a.log.Info(logger.Entry{
		Action:    "booking_accepted",
		Message:   "offer claimed",
		BookingID: bookingID,
		WorkerID:  a.workerID,
		Additional: map[string]any{
			"version": version,
		},
	})
	return nil
}
