package usecase

import (
	"context"
	"time"

	in "tidywork/internal/booking/application/ports/in"
	out "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/booking/domain"
	"tidywork/internal/booking/store"
	"tidywork/internal/shared/logger"
)

// Actions реализует поверхность действий над стором бронирований.
// Мутирующие действия проходят через оптимистичный исполнитель (executor.go).
type Actions struct {
	store    *store.Store
	remote   out.RemoteBookingService
	tracker  out.Tracker
	journal  out.Journal
	presence out.PresencePublisher
	log      *logger.Logger
	workerID string
}

var _ in.BookingActions = (*Actions)(nil)

func NewActions(
	st *store.Store,
	remote out.RemoteBookingService,
	tracker out.Tracker,
	journal out.Journal,
	presence out.PresencePublisher,
	log *logger.Logger,
	workerID string,
) *Actions {
	return &Actions{
		store:    st,
		remote:   remote,
		tracker:  tracker,
		journal:  journal,
		presence: presence,
		log:      log,
		workerID: workerID,
	}
}

// record пишет в журнал переходов, если он включен.
func (a *Actions) record(ctx context.Context, bookingID string, from, to domain.Status, outcome string, version int64) {
	if a.journal == nil {
		return
	}
	err := a.journal.Record(ctx, out.TransitionRecord{
		BookingID:  bookingID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    a.workerID,
		Outcome:    outcome,
		Version:    version,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		// Журнал не участвует в консистентности стора.
		a.log.Warn(logger.Entry{
			Action:    "journal_record_failed",
			Message:   err.Error(),
			BookingID: bookingID,
		})
	}
}
