package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tidywork/internal/booking/domain"
	"tidywork/internal/shared/config"
	"tidywork/internal/shared/logger"

	"github.com/gorilla/websocket"
)

// Source отдает текущие координаты воркера. Сам алгоритм сэмплинга GPS —
// забота платформы; координатору нужна только функция чтения.
type Source func() (lat, lng float64)

// frame — кадр трекинга, уходящий на бэкенд.
type frame struct {
	Type      string  `json:"type"` // location_update
	BookingID string  `json:"booking_id"`
	WorkerID  string  `json:"worker_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

// WSTracker держит не более одной сессии трекинга: websocket-подключение к
// бэкенду и горутину, шлющую кадры с интервалом из конфигурации.
type WSTracker struct {
	url      string
	interval time.Duration
	source   Source
	log      *logger.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	current string // booking id активной сессии
}

func NewWSTracker(cfg config.TrackingConfig, source Source, log *logger.Logger) *WSTracker {
	return &WSTracker{
		url:      cfg.URL,
		interval: cfg.Interval,
		source:   source,
		log:      log,
	}
}

// Start открывает сессию трекинга для бронирования. Повторный Start для того
// же бронирования — no-op; для другого — прежняя сессия закрывается.
func (t *WSTracker) Start(ctx context.Context, bookingID, workerID string) error {
	t.mu.Lock()
	if t.conn != nil && t.current == bookingID {
		t.mu.Unlock()
		return nil
	}
	t.stopLocked()

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, t.url, nil)
	cancel()
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("%w: dial %s: %s", domain.ErrTrackingUnavailable, t.url, err)
	}

	sessionCtx, sessionCancel := context.WithCancel(context.Background())
	t.conn = conn
	t.cancel = sessionCancel
	t.current = bookingID
	t.mu.Unlock()

	t.log.Info(logger.Entry{
		Action:    "tracking_started",
		Message:   "location tracking session opened",
		BookingID: bookingID,
		WorkerID:  workerID,
	})

	go t.run(sessionCtx, conn, bookingID, workerID)
	return nil
}

func (t *WSTracker) run(ctx context.Context, conn *websocket.Conn, bookingID, workerID string) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var lat, lng float64
			if t.source != nil {
				lat, lng = t.source()
			}
			f := frame{
				Type:      "location_update",
				BookingID: bookingID,
				WorkerID:  workerID,
				Latitude:  lat,
				Longitude: lng,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
			if err := conn.WriteJSON(f); err != nil {
				t.log.Warn(logger.Entry{
					Action:    "tracking_frame_failed",
					Message:   err.Error(),
					BookingID: bookingID,
				})
				return
			}
		}
	}
}

// StopFor закрывает сессию этого бронирования. Сессия другого бронирования
// (или ее отсутствие) не трогается.
func (t *WSTracker) StopFor(bookingID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil || t.current != bookingID {
		return nil
	}
	t.stopLocked()
	t.log.Info(logger.Entry{
		Action:    "tracking_stopped",
		Message:   "location tracking session closed",
		BookingID: bookingID,
	})
	return nil
}

func (t *WSTracker) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.conn != nil {
		_ = t.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = t.conn.Close()
		t.conn = nil
	}
	t.current = ""
}
