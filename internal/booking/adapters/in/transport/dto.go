package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"tidywork/internal/booking/domain"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ErrorResponse — единый формат ошибок API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ActionResponse — ответ успешного мутирующего действия
type ActionResponse struct {
	BookingID string `json:"booking_id,omitempty"`
	Status    string `json:"status"` // applied
	Message   string `json:"message,omitempty"`
}

// AdvanceRequest — запрос на продвижение статуса
type AdvanceRequest struct {
	Target string `json:"target"`
}

// ToggleOnlineResponse — ответ на переключение online-флага
type ToggleOnlineResponse struct {
	Online bool `json:"online"`
}

// SnapshotResponse — три раздела стора плюс профиль
type SnapshotResponse struct {
	Offered []domain.Booking     `json:"offered"`
	Active  []domain.Booking     `json:"active"`
	History []domain.Booking     `json:"history"`
	Profile domain.WorkerProfile `json:"profile"`
}

func readJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
	defer func() { _, _ = io.Copy(io.Discard, body) }()
	return json.NewDecoder(body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writeJSON(w, v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
