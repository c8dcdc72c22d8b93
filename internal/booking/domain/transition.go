package domain

import "time"

// allowedTransitions кодирует граф жизненного цикла как таблицу.
// cancelled достижим из любого нетерминального статуса.
var allowedTransitions = map[Status][]Status{
	StatusOffered:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusOnTheWay, StatusCancelled},
	StatusOnTheWay:   {StatusArrived, StatusCancelled},
	StatusArrived:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition проверяет достижимость target из from за один шаг.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// AttemptTransition — чистый движок переходов. Валидирует запрошенный переход
// и возвращает новый снапшот бронирования либо типизированный отказ.
// Никакого I/O: побочные эффекты (удаленные вызовы, трекинг) компонуются
// вокруг движка исполнителем оптимистичных мутаций.
//
// lastServerVersion — последняя известная серверная версия этого бронирования
// (0, если сервер еще не подтверждал состояние).
func AttemptTransition(b *Booking, target Status, actorID string, lastServerVersion int64) (*Booking, error) {
	if b.Version < lastServerVersion {
		return nil, ErrStaleState
	}

	if !CanTransition(b.Status, target) {
		return nil, ErrInvalidTransition
	}

	claim := b.Status == StatusOffered && target == StatusAccepted
	if claim {
		// Первичный клейм: бронирование должно быть никому не назначено.
		if b.CleanerID != nil {
			return nil, ErrNotOwner
		}
	} else if !b.OwnedBy(actorID) {
		return nil, ErrNotOwner
	}

	next := b.Clone()
	next.Status = target
	if claim {
		id := actorID
		next.CleanerID = &id
	}
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	return next, nil
}
