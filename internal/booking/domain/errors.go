package domain

import "errors"

var (
	// ErrInvalidTransition возвращается когда целевой статус недостижим из текущего
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotOwner возвращается когда актор не является назначенным клинером
	ErrNotOwner = errors.New("actor is not the assigned cleaner")

	// ErrStaleState возвращается когда локальная копия отстала от известной серверной версии
	ErrStaleState = errors.New("local booking state is stale, refetch required")

	// ErrBookingNotFound возвращается когда бронирование не найдено в сторе
	ErrBookingNotFound = errors.New("booking not found")

	// ErrMutationInFlight возвращается при попытке второй мутации того же бронирования
	ErrMutationInFlight = errors.New("mutation already in flight for this booking")

	// ErrJobUnavailable возвращается когда оффер уже забрал другой воркер
	ErrJobUnavailable = errors.New("job no longer available")

	// ErrConflict возвращается при конфликте условной записи на сервере
	ErrConflict = errors.New("remote state conflict")

	// ErrNotFound возвращается когда сервер не знает бронирование
	ErrNotFound = errors.New("booking not found on server")

	// ErrForbidden возвращается когда сервер отклонил операцию по правам
	ErrForbidden = errors.New("operation forbidden")

	// ErrNetwork возвращается при сетевой ошибке удаленного вызова
	ErrNetwork = errors.New("network error")

	// ErrTimeout возвращается при превышении таймаута удаленного вызова
	ErrTimeout = errors.New("remote call timed out")

	// ErrTrackingUnavailable не фатальна: переход выполняется, трекинг логируется
	ErrTrackingUnavailable = errors.New("location tracking unavailable")
)
