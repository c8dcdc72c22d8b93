package transport

import (
	"net/http"

	"tidywork/internal/shared/auth"
	"tidywork/internal/shared/logger"
)

// NewRouter собирает HTTP поверхность агента. Health — без аутентификации,
// остальное за JWT middleware с ролью WORKER и проверкой worker id.
func NewRouter(h *Handler, jwtService *auth.JWTService, workerID string, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /bookings", h.Snapshot)
	protected.HandleFunc("POST /bookings/refresh", h.Refresh)
	protected.HandleFunc("POST /bookings/{booking_id}/accept", h.Accept)
	protected.HandleFunc("POST /bookings/{booking_id}/decline", h.Decline)
	protected.HandleFunc("POST /bookings/{booking_id}/advance", h.Advance)
	protected.HandleFunc("POST /worker/toggle-online", h.ToggleOnline)

	mux.Handle("/", JWTMiddleware(jwtService, workerID, log)(protected))

	log.Info(logger.Entry{
		Action:  "routes_registered",
		Message: "agent HTTP surface ready",
	})
	return mux
}
