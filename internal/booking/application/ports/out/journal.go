package out

import (
	"context"
	"time"

	"tidywork/internal/booking/domain"
)

// Исходы перехода, фиксируемые в журнале.
const (
	OutcomeApplied    = "applied"
	OutcomeRolledBack = "rolled_back"
	OutcomeReconciled = "reconciled"
	OutcomeSuperseded = "superseded" // откат пропущен: сервер прислал более новое состояние
)

// TransitionRecord — запись аудит-журнала о переходе статуса.
type TransitionRecord struct {
	BookingID  string
	FromStatus domain.Status
	ToStatus   domain.Status
	ActorID    string
	Outcome    string
	Version    int64
	CreatedAt  time.Time
}

// Journal — опциональный аудит-журнал переходов.
type Journal interface {
	Record(ctx context.Context, rec TransitionRecord) error
	Close()
}
