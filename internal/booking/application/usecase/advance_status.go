package usecase

import (
	"context"

	"tidywork/internal/booking/domain"
)

// Advance продвигает активное бронирование к следующему статусу
// (или отменяет его). Клейм идет через Accept, не сюда.
func (a *Actions) Advance(ctx context.Context, bookingID string, target domain.Status) error {
	if target == domain.StatusAccepted {
		return domain.ErrInvalidTransition
	}
	return a.executeTransition(ctx, bookingID, target)
}
