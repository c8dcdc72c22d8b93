package remoteapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tidywork/internal/booking/domain"
	"tidywork/internal/shared/config"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newClient(config.RemoteConfig{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	}, "test-token")
}

func TestListOffered(t *testing.T) {
	var gotPath, gotAuth string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]domain.Booking{
			{ID: "b1", Status: domain.StatusOffered, Version: 1},
			{ID: "b2", Status: domain.StatusOffered, Version: 3},
		})
	}))

	bookings, err := c.ListOffered(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	require.Equal(t, "/api/workers/w1/bookings/offered", gotPath)
	require.Equal(t, "Bearer test-token", gotAuth)
}

func TestAcceptJobReturnsVersion(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/jobs/b1/accept", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "w1", body["worker_id"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mutationAnswer{Version: 7})
	}))

	version, err := c.AcceptJob(context.Background(), "b1", "w1")
	require.NoError(t, err)
	require.Equal(t, int64(7), version)
}

func TestAdvanceStatusSendsTarget(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/jobs/b1/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "on_the_way", body["target"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mutationAnswer{Version: 4})
	}))

	version, err := c.AdvanceStatus(context.Background(), "b1", "w1", domain.StatusOnTheWay)
	require.NoError(t, err)
	require.Equal(t, int64(4), version)
}

// Маппинг HTTP статусов на типизированные отказы домена.
func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"conflict is claim race", http.StatusConflict, domain.ErrConflict},
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"forbidden", http.StatusForbidden, domain.ErrForbidden},
		{"unauthorized maps to forbidden", http.StatusUnauthorized, domain.ErrForbidden},
		{"server error is network", http.StatusInternalServerError, domain.ErrNetwork},
		{"bad gateway is network", http.StatusBadGateway, domain.ErrNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(errorAnswer{Message: "rejected"})
			}))

			_, err := c.AcceptJob(context.Background(), "b1", "w1")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTimeoutMapsToErrTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)

	c := newClient(config.RemoteConfig{
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	}, "")

	_, err := c.AcceptJob(context.Background(), "b1", "w1")
	require.ErrorIs(t, err, domain.ErrTimeout)
}

func TestConnectionRefusedMapsToErrNetwork(t *testing.T) {
	c := newClient(config.RemoteConfig{
		// закрытый порт
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	}, "")

	_, err := c.AcceptJob(context.Background(), "b1", "w1")
	require.ErrorIs(t, err, domain.ErrNetwork)
}

func TestGetJob(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/jobs/b1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.Booking{ID: "b1", Status: domain.StatusAccepted, Version: 2})
	}))

	b, err := c.GetJob(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, "b1", b.ID)
	require.Equal(t, int64(2), b.Version)
}
