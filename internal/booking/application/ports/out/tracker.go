package out

import "context"

// Tracker — координатор трекинга локации. Запускается/останавливается как
// побочный эффект конкретных переходов; best-effort: отказ Start не блокирует
// переход статуса.
type Tracker interface {
	Start(ctx context.Context, bookingID, workerID string) error

	// StopFor закрывает сессию, только если она открыта для этого бронирования.
	// Без активной сессии или для другого бронирования — no-op.
	StopFor(bookingID string) error
}
