package records

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/config"
	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/pkg/metrics"
)

const (
	horsesPath     = "/equinos"
	schedulesPath  = "/escalas"
	visitsPath     = "/atendimentos"
	vaccinesPath   = "/vacinacoes"
	dewormingsPath = "/vermifugacoes"
)

// ErrNotFound is returned when the backend has no record with the given id.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable is returned while the circuit to the backend is open.
var ErrUnavailable = errors.New("record backend unavailable")

// Client exposes the record backend operations used by the service.
type Client interface {
	ListHorses(ctx context.Context) ([]models.Horse, error)
	ListSchedules(ctx context.Context) ([]models.ScheduleRecord, error)
	ListVisits(ctx context.Context) ([]models.VisitRecord, error)
	ListTreatments(ctx context.Context, kind models.TreatmentKind) ([]models.TreatmentRecord, error)
	CreateSchedule(ctx context.Context, record models.ScheduleRecord) (models.ScheduleRecord, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// APIClient is a resty-backed implementation of Client guarded by a circuit breaker.
type APIClient struct {
	httpClient *resty.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient builds a record backend client from configuration.
func NewClient(cfg config.RecordsConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "records-backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("record backend circuit changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &APIClient{httpClient: httpClient, breaker: breaker, logger: logger}
}

// ListHorses fetches the horse roster.
func (c *APIClient) ListHorses(ctx context.Context) ([]models.Horse, error) {
	return list[models.Horse](ctx, c, "horses", horsesPath)
}

// ListSchedules fetches every duty roster entry.
func (c *APIClient) ListSchedules(ctx context.Context) ([]models.ScheduleRecord, error) {
	return list[models.ScheduleRecord](ctx, c, "schedules", schedulesPath)
}

// ListVisits fetches medical visits.
func (c *APIClient) ListVisits(ctx context.Context) ([]models.VisitRecord, error) {
	return list[models.VisitRecord](ctx, c, "visits", visitsPath)
}

// ListTreatments fetches vaccination or deworming rows.
func (c *APIClient) ListTreatments(ctx context.Context, kind models.TreatmentKind) ([]models.TreatmentRecord, error) {
	switch kind {
	case models.KindVaccination:
		return list[models.TreatmentRecord](ctx, c, string(kind), vaccinesPath)
	case models.KindDeworming:
		return list[models.TreatmentRecord](ctx, c, string(kind), dewormingsPath)
	default:
		return nil, fmt.Errorf("list treatments: unsupported kind %q", kind)
	}
}

// CreateSchedule posts a roster entry and returns it with its backend id.
func (c *APIClient) CreateSchedule(ctx context.Context, record models.ScheduleRecord) (models.ScheduleRecord, error) {
	created := new(models.ScheduleRecord)
	err := c.do(ctx, "schedules", func() (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetBody(record).
			SetResult(created).
			Post(schedulesPath)
	})
	if err != nil {
		return models.ScheduleRecord{}, fmt.Errorf("create schedule: %w", err)
	}
	return *created, nil
}

// DeleteSchedule removes a roster entry by id.
func (c *APIClient) DeleteSchedule(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete schedule: %w", ErrNotFound)
	}
	err := c.do(ctx, "schedules", func() (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetPathParam("id", id).
			Delete(schedulesPath + "/{id}")
	})
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	return nil
}

func list[T any](ctx context.Context, c *APIClient, resource, path string) ([]T, error) {
	var items []T
	err := c.do(ctx, resource, func() (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetResult(&items).
			Get(path)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	c.logger.Debug("records fetched", zap.String("resource", resource), zap.Int("count", len(items)))
	return items, nil
}

func (c *APIClient) do(ctx context.Context, resource string, call func() (*resty.Response, error)) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := call()
		if err != nil {
			return nil, err
		}
		switch {
		case resp.StatusCode() == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode() >= http.StatusBadRequest:
			return nil, fmt.Errorf("backend status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
		}
		return nil, nil
	})

	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "open"
		err = ErrUnavailable
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.BackendCallsTotal.WithLabelValues(resource, outcome).Inc()

	if err != nil && ctx.Err() == nil {
		c.logger.Debug("record backend call failed", zap.String("resource", resource), zap.Error(err))
	}
	return err
}
