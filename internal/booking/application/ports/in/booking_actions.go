package in

import (
	"context"

	"tidywork/internal/booking/domain"
)

// BookingActions — поверхность действий, которую потребляет транспорт.
// Каждое мутирующее действие разрешается либо в успех, либо в типизированный
// отказ из internal/booking/domain (отображаемый пользователю), либо в
// фатальную ошибку.
type BookingActions interface {
	// FetchAll выполняет начальную bulk-загрузку трех разделов.
	// Инкрементальные обновления дальше приходят через push-канал, не поллингом.
	FetchAll(ctx context.Context) error

	Accept(ctx context.Context, bookingID string) error
	Decline(ctx context.Context, bookingID string) error
	Advance(ctx context.Context, bookingID string, target domain.Status) error

	// ToggleOnline переключает online-флаг профиля и возвращает новое значение.
	ToggleOnline(ctx context.Context) (bool, error)
}
