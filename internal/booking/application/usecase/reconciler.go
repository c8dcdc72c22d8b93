package usecase

import (
	"context"
	"time"

	out "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/booking/store"
	"tidywork/internal/shared/logger"
)

// Reconciler вливает push-события в стор. Сервер авторитетен: более новая
// версия переписывает локальное состояние, включая базу незавершенной
// оптимистичной мутации (ее удаленный вызов тогда завершится stale-state и
// уйдет в refetch-then-retry). Дубликаты и события, пришедшие не по порядку,
// отбрасываются сравнением версий в Merge.
type Reconciler struct {
	store   *store.Store
	stream  out.PushStream
	tracker out.Tracker
	journal out.Journal
	log     *logger.Logger
}

func NewReconciler(st *store.Store, stream out.PushStream, tracker out.Tracker, journal out.Journal, log *logger.Logger) *Reconciler {
	return &Reconciler{
		store:   st,
		stream:  stream,
		tracker: tracker,
		journal: journal,
		log:     log,
	}
}

// Run читает поток до отмены контекста или закрытия потока.
func (r *Reconciler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-r.stream.Events():
			if !ok {
				r.log.Info(logger.Entry{
					Action:  "push_stream_closed",
					Message: "reconciliation stream ended",
				})
				return
			}
			r.apply(ctx, ev)
		}
	}
}

func (r *Reconciler) apply(ctx context.Context, ev out.BookingEvent) {
	b := ev.Booking
	outcome := r.store.Merge(&b)

	switch outcome {
	case store.MergeIgnored:
		r.log.Debug(logger.Entry{
			Action:    "push_event_ignored",
			Message:   "incoming version not newer than local",
			BookingID: b.ID,
			Additional: map[string]any{
				"version": b.Version,
			},
		})
		return
	case store.MergeInserted:
		r.log.Info(logger.Entry{
			Action:    "push_event_inserted",
			Message:   "new booking from push channel",
			BookingID: b.ID,
			Additional: map[string]any{
				"kind":    string(ev.Kind),
				"status":  string(b.Status),
				"version": b.Version,
			},
		})
	case store.MergeUpdated:
		r.log.Info(logger.Entry{
			Action:    "push_event_applied",
			Message:   "server state merged over local",
			BookingID: b.ID,
			Additional: map[string]any{
				"kind":    string(ev.Kind),
				"status":  string(b.Status),
				"version": b.Version,
			},
		})
	}

	// Серверное завершение или отмена гасит активную сессию трекинга этого
	// бронирования: кадры по мертвой работе не нужны никому.
	if b.Status.Terminal() && r.tracker != nil {
		if err := r.tracker.StopFor(b.ID); err != nil {
			r.log.Warn(logger.Entry{
				Action:    "tracking_stop_failed",
				Message:   err.Error(),
				BookingID: b.ID,
			})
		}
	}

	if r.journal != nil {
		err := r.journal.Record(ctx, out.TransitionRecord{
			BookingID: b.ID,
			ToStatus:  b.Status,
			ActorID:   "server",
			Outcome:   out.OutcomeReconciled,
			Version:   b.Version,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			r.log.Warn(logger.Entry{
				Action:    "journal_record_failed",
				Message:   err.Error(),
				BookingID: b.ID,
			})
		}
	}
}
