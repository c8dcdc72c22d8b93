package usecase

import (
	"context"
	"errors"
	"fmt"

	out "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/booking/domain"
	"tidywork/internal/booking/store"
	"tidywork/internal/shared/logger"
)

// executeTransition — оптимистичный исполнитель мутаций для переходов статуса
// уже назначенного бронирования:
//
//  1. снапшот текущего состояния (для отката);
//  2. чистый движок переходов — отказ возвращается сразу, без мутации стора
//     и без удаленного вызова;
//  3. синхронный optimistic apply в стор (с переносом между разделами и,
//     для завершения, атомарным начислением выплаты в профиль);
//  4. удаленный вызов;
//  5. успех: фиксация серверной версии; отказ: откат к снапшоту, если
//     реконсилер не переписал состояние более новым серверным.
//
// Мутации одного бронирования сериализуются per-id флагом in-flight.
func (a *Actions) executeTransition(ctx context.Context, bookingID string, target domain.Status) error {
	if err := a.store.BeginMutation(bookingID); err != nil {
		return err
	}
	defer a.store.EndMutation(bookingID)

	snap, ok := a.store.Get(bookingID)
	if !ok {
		return domain.ErrBookingNotFound
	}

	next, err := domain.AttemptTransition(snap, target, a.workerID, a.store.LastServerVersion(bookingID))
	if errors.Is(err, domain.ErrStaleState) {
		// Локальная копия отстала от реконсилированного состояния:
		// перечитываем с сервера и пробуем еще раз от свежего состояния.
		snap, err = a.refetch(ctx, bookingID)
		if err != nil {
			return err
		}
		next, err = domain.AttemptTransition(snap, target, a.workerID, a.store.LastServerVersion(bookingID))
	}
	if err != nil {
		a.log.Warn(logger.Entry{
			Action:    "transition_rejected",
			Message:   err.Error(),
			BookingID: bookingID,
			Additional: map[string]any{
				"from":   string(snap.Status),
				"target": string(target),
			},
		})
		return err
	}

	delta := deltaFor(snap, target)
	a.store.ApplyOptimistic(next, delta)
	a.record(ctx, bookingID, snap.Status, target, out.OutcomeApplied, next.Version)

	// Трекинг стартует вместе с оптимистичным применением: к моменту ответа
	// сервера воркер уже едет.
	trackingStarted := false
	if snap.Status == domain.StatusAccepted && target == domain.StatusOnTheWay {
		if terr := a.tracker.Start(ctx, bookingID, a.workerID); terr != nil {
			a.log.Warn(logger.Entry{
				Action:    "tracking_unavailable",
				Message:   terr.Error(),
				BookingID: bookingID,
			})
		} else {
			trackingStarted = true
		}
	}

	version, rerr := a.remote.AdvanceStatus(ctx, bookingID, a.workerID, target)
	if rerr != nil {
		if trackingStarted {
			// Переход не подтвержден — трекинг тоже откатывается.
			_ = a.tracker.StopFor(bookingID)
		}
		restored := a.store.Restore(snap, next.Version, delta)
		outcome := out.OutcomeRolledBack
		if !restored {
			outcome = out.OutcomeSuperseded
		}
		a.record(ctx, bookingID, target, snap.Status, outcome, snap.Version)
		a.log.Error(logger.Entry{
			Action:    "advance_status_failed",
			Message:   rerr.Error(),
			Error:     &logger.ErrObj{Msg: rerr.Error()},
			BookingID: bookingID,
			Additional: map[string]any{
				"target":   string(target),
				"restored": restored,
			},
		})
		return fmt.Errorf("advance to %s: %w", target, rerr)
	}

	a.store.ConfirmVersion(bookingID, version)

	// Остановка трекинга — только по подтвержденному завершению или отмене,
	// и только сессии этого бронирования, чтобы ретраи не гасили чужую.
	if target.Terminal() {
		if terr := a.tracker.StopFor(bookingID); terr != nil {
			a.log.Warn(logger.Entry{
				Action:    "tracking_stop_failed",
				Message:   terr.Error(),
				BookingID: bookingID,
			})
		}
	}

	a.log.Info(logger.Entry{
		Action:    "status_advanced",
		Message:   fmt.Sprintf("booking is now %s", target),
		BookingID: bookingID,
		WorkerID:  a.workerID,
		Additional: map[string]any{
			"version": version,
		},
	})
	return nil
}

// refetch перечитывает авторитетное состояние и вливает его в стор.
func (a *Actions) refetch(ctx context.Context, bookingID string) (*domain.Booking, error) {
	fresh, err := a.remote.GetJob(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("refetch stale booking: %w", err)
	}
	a.store.Merge(fresh)
	b, ok := a.store.Get(bookingID)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}

// deltaFor — изменение профиля, применяемое атомарно с переходом.
func deltaFor(snap *domain.Booking, target domain.Status) *store.EarningsDelta {
	switch target {
	case domain.StatusCompleted:
		d := store.EarningsDelta{Payout: snap.WorkerPayout, Completed: 1}
		if snap.Tip != nil {
			d.Tip = *snap.Tip
		}
		return &d
	case domain.StatusCancelled:
		if snap.CleanerID == nil {
			return nil
		}
		return &store.EarningsDelta{Cancelled: 1}
	default:
		return nil
	}
}
