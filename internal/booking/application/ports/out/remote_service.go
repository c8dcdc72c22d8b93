package out

import (
	"context"

	"tidywork/internal/booking/domain"
)

// RemoteBookingService — тонкий интерфейс к удаленному стору бронирований.
// Все мутации возвращают новую авторитетную версию либо типизированный отказ
// (domain.ErrConflict, ErrNotFound, ErrForbidden, ErrNetwork, ErrTimeout).
type RemoteBookingService interface {
	ListOffered(ctx context.Context, workerID string) ([]domain.Booking, error)
	ListActive(ctx context.Context, workerID string) ([]domain.Booking, error)
	ListHistory(ctx context.Context, workerID string) ([]domain.Booking, error)

	// GetJob используется в refetch-then-retry пути при stale-state.
	GetJob(ctx context.Context, jobID string) (*domain.Booking, error)

	// AcceptJob — условная запись: успешна только если cleaner_id на сервере
	// еще не задан. Проигранная гонка возвращает domain.ErrConflict.
	AcceptJob(ctx context.Context, jobID, workerID string) (int64, error)

	DeclineJob(ctx context.Context, jobID, workerID string) error

	AdvanceStatus(ctx context.Context, jobID, workerID string, target domain.Status) (int64, error)
}
