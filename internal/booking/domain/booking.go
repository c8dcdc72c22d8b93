package domain

import "time"

// Status — статус бронирования в жизненном цикле.
type Status string

const (
	StatusOffered    Status = "offered"
	StatusAccepted   Status = "accepted"
	StatusOnTheWay   Status = "on_the_way"
	StatusArrived    Status = "arrived"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Partition — один из трех разделов стора. Принадлежность разделу —
// чистая функция от статуса.
type Partition string

const (
	PartitionOffered Partition = "offered"
	PartitionActive  Partition = "active"
	PartitionHistory Partition = "history"
)

func (s Status) Partition() Partition {
	switch s {
	case StatusOffered:
		return PartitionOffered
	case StatusCompleted, StatusCancelled:
		return PartitionHistory
	default:
		return PartitionActive
	}
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Booking представляет основную сущность — заказ на уборку.
type Booking struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customer_id"`
	CleanerID  *string `json:"cleaner_id,omitempty"` // не задан пока offered
	Status     Status  `json:"status"`

	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`

	TotalPrice   float64  `json:"total_price"`
	WorkerPayout float64  `json:"worker_payout"`
	Tip          *float64 `json:"tip,omitempty"`

	IsInstant      bool   `json:"is_instant"`
	SpecialRequest string `json:"special_request,omitempty"`

	// Version — монотонный счетчик для упорядочивания конфликтующих
	// обновлений (локальный optimistic против серверного push).
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone возвращает независимую копию (снапшот для отката).
func (b *Booking) Clone() *Booking {
	c := *b
	if b.CleanerID != nil {
		id := *b.CleanerID
		c.CleanerID = &id
	}
	if b.Tip != nil {
		t := *b.Tip
		c.Tip = &t
	}
	return &c
}

// OwnedBy проверяет, назначено ли бронирование этому воркеру.
func (b *Booking) OwnedBy(workerID string) bool {
	return b.CleanerID != nil && *b.CleanerID == workerID
}
