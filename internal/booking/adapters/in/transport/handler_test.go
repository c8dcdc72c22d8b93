package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tidywork/internal/booking/domain"
	"tidywork/internal/booking/store"
	"tidywork/internal/shared/auth"
	"tidywork/internal/shared/config"
	"tidywork/internal/shared/logger"

	"github.com/stretchr/testify/require"
)

// fakeActions возвращает заранее заданные отказы.
type fakeActions struct {
	acceptErr  error
	declineErr error
	advanceErr error
	fetchErr   error
	online     bool
}

func (f *fakeActions) FetchAll(context.Context) error        { return f.fetchErr }
func (f *fakeActions) Accept(context.Context, string) error  { return f.acceptErr }
func (f *fakeActions) Decline(context.Context, string) error { return f.declineErr }
func (f *fakeActions) Advance(context.Context, string, domain.Status) error {
	return f.advanceErr
}

func (f *fakeActions) ToggleOnline(context.Context) (bool, error) {
	f.online = !f.online
	return f.online, nil
}

func testServer(t *testing.T, actions *fakeActions, st *store.Store) (*httptest.Server, string) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test_secret", ExpiryMinutes: 5})
	log := logger.NewTestLogger(io.Discard)

	h := NewHandler(actions, st, log)
	srv := httptest.NewServer(NewRouter(h, jwtService, "w1", log))
	t.Cleanup(srv.Close)

	token, err := jwtService.GenerateToken("w1", "WORKER")
	require.NoError(t, err)
	return srv, token
}

func doPost(t *testing.T, url, token string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthOpenWithoutToken(t *testing.T) {
	srv, _ := testServer(t, &fakeActions{}, store.NewStore("w1"))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := testServer(t, &fakeActions{}, store.NewStore("w1"))

	resp, err := http.Get(srv.URL + "/bookings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCustomerRoleRejected(t *testing.T) {
	srv, _ := testServer(t, &fakeActions{}, store.NewStore("w1"))

	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test_secret", ExpiryMinutes: 5})
	token, err := jwtService.GenerateToken("c1", "CUSTOMER")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestForeignWorkerTokenRejected(t *testing.T) {
	srv, _ := testServer(t, &fakeActions{}, store.NewStore("w1"))

	// валидный WORKER токен, но выписанный для другого воркера
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test_secret", ExpiryMinutes: 5})
	token, err := jwtService.GenerateToken("w2", "WORKER")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMiddlewareInjectsWorkerID(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test_secret", ExpiryMinutes: 5})
	log := logger.NewTestLogger(io.Discard)

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetWorkerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	wrapped := JWTMiddleware(jwtService, "w1", log)(next)

	token, err := jwtService.GenerateToken("w1", "WORKER")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "w1", got)
}

func TestSnapshotReturnsPartitionsAndProfile(t *testing.T) {
	st := store.NewStore("w1")
	worker := "w1"
	st.Merge(&domain.Booking{ID: "b1", Status: domain.StatusOffered, Version: 1})
	st.Merge(&domain.Booking{ID: "b2", Status: domain.StatusAccepted, CleanerID: &worker, Version: 2})
	srv, token := testServer(t, &fakeActions{}, st)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap SnapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Len(t, snap.Offered, 1)
	require.Len(t, snap.Active, 1)
	require.Empty(t, snap.History)
	require.Equal(t, "w1", snap.Profile.WorkerID)
}

func TestAcceptSuccess(t *testing.T) {
	srv, token := testServer(t, &fakeActions{}, store.NewStore("w1"))

	resp := doPost(t, srv.URL+"/bookings/b1/accept", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ActionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "b1", body.BookingID)
	require.Equal(t, "applied", body.Status)
}

// Каждый типизированный отказ разрешается в свой HTTP статус.
func TestRejectionStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"job unavailable", domain.ErrJobUnavailable, http.StatusGone},
		{"not found", domain.ErrBookingNotFound, http.StatusNotFound},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"not owner", domain.ErrNotOwner, http.StatusForbidden},
		{"mutation in flight", domain.ErrMutationInFlight, http.StatusConflict},
		{"stale state", domain.ErrStaleState, http.StatusConflict},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout},
		{"network", domain.ErrNetwork, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, token := testServer(t, &fakeActions{acceptErr: tc.err}, store.NewStore("w1"))

			resp := doPost(t, srv.URL+"/bookings/b1/accept", token, nil)
			require.Equal(t, tc.want, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.NotEmpty(t, body.Message)
		})
	}
}

func TestAdvanceParsesTarget(t *testing.T) {
	srv, token := testServer(t, &fakeActions{}, store.NewStore("w1"))

	body, _ := json.Marshal(AdvanceRequest{Target: "on_the_way"})
	resp := doPost(t, srv.URL+"/bookings/b1/advance", token, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdvanceRejectsMalformedBody(t *testing.T) {
	srv, token := testServer(t, &fakeActions{}, store.NewStore("w1"))

	resp := doPost(t, srv.URL+"/bookings/b1/advance", token, []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleOnline(t *testing.T) {
	srv, token := testServer(t, &fakeActions{}, store.NewStore("w1"))

	resp := doPost(t, srv.URL+"/worker/toggle-online", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ToggleOnlineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Online)
}
