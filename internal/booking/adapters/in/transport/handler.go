package transport

import (
	"errors"
	"net/http"

	in "tidywork/internal/booking/application/ports/in"
	"tidywork/internal/booking/domain"
	"tidywork/internal/booking/store"
	"tidywork/internal/shared/logger"
)

type Handler struct {
	actions in.BookingActions
	store   *store.Store
	log     *logger.Logger
}

func NewHandler(actions in.BookingActions, st *store.Store, log *logger.Logger) *Handler {
	return &Handler{
		actions: actions,
		store:   st,
		log:     log,
	}
}

// Health — liveness probe
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"worker-agent"}`))
}

// Snapshot — GET /bookings
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	offered, active, history := h.store.Snapshot()
	respondJSON(w, http.StatusOK, SnapshotResponse{
		Offered: offered,
		Active:  active,
		History: history,
		Profile: h.store.Profile(),
	})
}

// Refresh — POST /bookings/refresh, повторная bulk-загрузка
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.actions.FetchAll(r.Context()); err != nil {
		h.respondRejection(w, "refresh_failed", "", err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResponse{Status: "applied"})
}

// Accept — POST /bookings/{booking_id}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("booking_id")
	if err := h.actions.Accept(r.Context(), bookingID); err != nil {
		h.respondRejection(w, "accept_rejected", bookingID, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResponse{
		BookingID: bookingID,
		Status:    "applied",
		Message:   "booking accepted",
	})
}

// Decline — POST /bookings/{booking_id}/decline
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("booking_id")
	if err := h.actions.Decline(r.Context(), bookingID); err != nil {
		h.respondRejection(w, "decline_rejected", bookingID, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResponse{
		BookingID: bookingID,
		Status:    "applied",
		Message:   "offer declined",
	})
}

// Advance — POST /bookings/{booking_id}/advance
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("booking_id")

	var req AdvanceRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target := domain.Status(req.Target)

	if err := h.actions.Advance(r.Context(), bookingID, target); err != nil {
		h.respondRejection(w, "advance_rejected", bookingID, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResponse{
		BookingID: bookingID,
		Status:    "applied",
		Message:   "status advanced to " + req.Target,
	})
}

// ToggleOnline — POST /worker/toggle-online
func (h *Handler) ToggleOnline(w http.ResponseWriter, r *http.Request) {
	online, err := h.actions.ToggleOnline(r.Context())
	if err != nil {
		h.respondRejection(w, "toggle_online_failed", "", err)
		return
	}
	respondJSON(w, http.StatusOK, ToggleOnlineResponse{Online: online})
}

// respondRejection переводит типизированный отказ в HTTP статус и
// отображаемое сообщение. Любое действие разрешается либо в успех, либо
// в читаемую причину отказа.
func (h *Handler) respondRejection(w http.ResponseWriter, action, bookingID string, err error) {
	status, message := rejectionStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(logger.Entry{
			Action:    action,
			Message:   err.Error(),
			Error:     &logger.ErrObj{Msg: err.Error()},
			BookingID: bookingID,
		})
	} else {
		h.log.Warn(logger.Entry{
			Action:    action,
			Message:   err.Error(),
			BookingID: bookingID,
		})
	}
	respondError(w, status, message)
}

func rejectionStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrJobUnavailable):
		return http.StatusGone, "job is no longer available"
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "booking not found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "status transition not allowed"
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "booking is assigned to another worker"
	case errors.Is(err, domain.ErrMutationInFlight):
		return http.StatusConflict, "previous action for this booking is still in progress"
	case errors.Is(err, domain.ErrStaleState):
		return http.StatusConflict, "local state is stale, please retry"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "remote state conflict, please retry"
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, "backend timed out, change was rolled back"
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway, "backend unreachable, change was rolled back"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
