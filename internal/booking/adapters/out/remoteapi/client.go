package remoteapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	out "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/booking/domain"
	"tidywork/internal/shared/config"
	"tidywork/internal/shared/logger"

	"github.com/go-resty/resty/v2"
)

// New выбирает реализацию Remote Booking Service. Единственное место, где
// проверяется DemoMode: всё выше этой границы работает с одним интерфейсом.
func New(cfg config.Config, log *logger.Logger) out.RemoteBookingService {
	if cfg.DemoMode {
		log.Warn(logger.Entry{
			Action:  "demo_mode_enabled",
			Message: "remote booking service is an in-memory demo",
		})
		return newDemoService(cfg.Worker.ID)
	}
	return newClient(cfg.Remote, cfg.Worker.Token)
}

// JSON ответ мутирующих вызовов
type mutationAnswer struct {
	Version int64 `json:"version"`
}

type errorAnswer struct {
	Message string `json:"message"`
}

type client struct {
	http *resty.Client
}

func newClient(cfg config.RemoteConfig, token string) *client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &client{http: c}
}

func (c *client) ListOffered(ctx context.Context, workerID string) ([]domain.Booking, error) {
	return c.list(ctx, "/api/workers/"+workerID+"/bookings/offered")
}

func (c *client) ListActive(ctx context.Context, workerID string) ([]domain.Booking, error) {
	return c.list(ctx, "/api/workers/"+workerID+"/bookings/active")
}

func (c *client) ListHistory(ctx context.Context, workerID string) ([]domain.Booking, error) {
	return c.list(ctx, "/api/workers/"+workerID+"/bookings/history")
}

func (c *client) list(ctx context.Context, path string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&bookings).
		Get(path)
	if err != nil {
		return nil, transportError(err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *client) GetJob(ctx context.Context, jobID string) (*domain.Booking, error) {
	var b domain.Booking
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&b).
		Get("/api/jobs/" + jobID)
	if err != nil {
		return nil, transportError(err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *client) AcceptJob(ctx context.Context, jobID, workerID string) (int64, error) {
	return c.mutate(ctx, "/api/jobs/"+jobID+"/accept", map[string]string{
		"worker_id": workerID,
	})
}

func (c *client) DeclineJob(ctx context.Context, jobID, workerID string) error {
	_, err := c.mutate(ctx, "/api/jobs/"+jobID+"/decline", map[string]string{
		"worker_id": workerID,
	})
	return err
}

func (c *client) AdvanceStatus(ctx context.Context, jobID, workerID string, target domain.Status) (int64, error) {
	return c.mutate(ctx, "/api/jobs/"+jobID+"/status", map[string]string{
		"worker_id": workerID,
		"target":    string(target),
	})
}

func (c *client) mutate(ctx context.Context, path string, body map[string]string) (int64, error) {
	var answer mutationAnswer
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&answer).
		SetError(&errorAnswer{}).
		Post(path)
	if err != nil {
		return 0, transportError(err)
	}
	if err := statusError(resp); err != nil {
		return 0, err
	}
	return answer.Version, nil
}

// statusError переводит HTTP статус в типизированный отказ домена.
func statusError(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return domain.ErrForbidden
	default:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrNetwork, resp.StatusCode())
	}
}

// transportError различает таймаут и прочие сетевые ошибки.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %s", domain.ErrNetwork, err)
}
