package domain

// WorkerProfile — профиль аутентифицированного воркера. Мутируется
// завершенными бронированиями и явными переключениями; не транзакционен.
type WorkerProfile struct {
	WorkerID            string  `json:"worker_id"`
	Online              bool    `json:"online"`
	TotalEarnings       float64 `json:"total_earnings"`
	TotalTips           float64 `json:"total_tips"`
	CompletedBookings   int     `json:"completed_bookings"`
	CancelledBookings   int     `json:"cancelled_bookings"`
	ProfileCompleteness float64 `json:"profile_completeness"` // 0.0 .. 1.0
}

// Conversation — счетчик непрочитанных, привязанный 1:1 к собеседнику.
type Conversation struct {
	CounterpartID string `json:"counterpart_id"`
	Unread        int    `json:"unread"`
}
