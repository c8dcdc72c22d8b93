package out

import "tidywork/internal/booking/domain"

// EventKind — класс push-события.
type EventKind string

const (
	EventInsert EventKind = "insert" // новый оффер
	EventUpdate EventKind = "update" // обновление бронирования этого воркера
)

// BookingEvent — типизированное версионированное событие из push-канала.
type BookingEvent struct {
	Kind    EventKind
	Booking domain.Booking
}

// PushStream — ленивый неограниченный поток событий бронирований, скоуп —
// аутентифицированный воркер. Перезапускается повторной подпиской.
type PushStream interface {
	Events() <-chan BookingEvent
	Close() error
}
