package workload

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
)

// ErrInvalidMonth indicates a month key that is not YYYY-MM.
var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

// ErrInvalidYear indicates a year outside the supported range.
var ErrInvalidYear = errors.New("invalid year")

var monthLabels = map[string]string{
	"01": "jan", "02": "fev", "03": "mar", "04": "abr", "05": "mai", "06": "jun",
	"07": "jul", "08": "ago", "09": "set", "10": "out", "11": "nov", "12": "dez",
}

// RecordSource supplies the roster and duty entries the aggregation reads.
type RecordSource interface {
	ListHorses(ctx context.Context) ([]models.Horse, error)
	ListSchedules(ctx context.Context) ([]models.ScheduleRecord, error)
}

// Service computes carga horária views over the record backend.
type Service struct {
	source  RecordSource
	monthly TierTable
	annual  TierTable
	topN    int
	logger  *zap.Logger
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithTiers replaces the monthly and annual tier tables.
func WithTiers(monthly, annual TierTable) Option {
	return func(s *Service) {
		s.monthly = monthly
		s.annual = annual
	}
}

// WithTopN sets how many horses are highlighted per bucket.
func WithTopN(n int) Option {
	return func(s *Service) { s.topN = n }
}

// WithClock injects the clock used for snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a workload service.
func NewService(source RecordSource, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source:  source,
		monthly: MonthlyTiers,
		annual:  AnnualTiers,
		topN:    DefaultTopN,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Monthly loads the backend records and aggregates the given YYYY-MM month.
func (s *Service) Monthly(ctx context.Context, yearMonth string) (models.MonthlyWorkload, error) {
	if _, ok := models.ParseMonth(yearMonth); !ok {
		return models.MonthlyWorkload{}, ErrInvalidMonth
	}

	horses, records, err := s.load(ctx)
	if err != nil {
		return models.MonthlyWorkload{}, err
	}

	return s.BuildMonthly(records, models.NewHorseLookup(horses), yearMonth), nil
}

// Annual loads the backend records and aggregates every month of the year.
func (s *Service) Annual(ctx context.Context, year int) (models.AnnualWorkload, error) {
	if year < 1900 || year > 9999 {
		return models.AnnualWorkload{}, ErrInvalidYear
	}

	horses, records, err := s.load(ctx)
	if err != nil {
		return models.AnnualWorkload{}, err
	}

	return s.BuildAnnual(records, models.NewHorseLookup(horses), year), nil
}

// BuildMonthly aggregates already fetched records for one month.
func (s *Service) BuildMonthly(records []models.ScheduleRecord, lookup models.HorseLookup, yearMonth string) models.MonthlyWorkload {
	bucket := BucketForMonth(records, yearMonth)
	totals := Aggregate(bucket)

	s.logger.Debug("monthly workload aggregated",
		zap.String("month", yearMonth),
		zap.Int("records", len(bucket)),
		zap.Float64("total", totals.Total))

	return models.MonthlyWorkload{
		Month:      yearMonth,
		Total:      totals.Total,
		Color:      Classify(totals.Total, s.monthly),
		Highlights: TopN(totals.PerHorse, lookup, s.topN),
		PerHorse:   Breakdown(totals.PerHorse, lookup),
	}
}

// BuildAnnual aggregates already fetched records into twelve chart points.
func (s *Service) BuildAnnual(records []models.ScheduleRecord, lookup models.HorseLookup, year int) models.AnnualWorkload {
	buckets := BucketForYear(records, year)
	out := models.AnnualWorkload{Year: year, Points: make([]models.WorkloadPoint, 0, len(MonthKeys))}

	grand := decimal.Zero
	for _, key := range MonthKeys {
		totals := Aggregate(buckets[key])
		grand = grand.Add(decimal.NewFromFloat(totals.Total))
		out.Points = append(out.Points, models.WorkloadPoint{
			Month:      key,
			Label:      monthLabels[key],
			Total:      totals.Total,
			Color:      Classify(totals.Total, s.annual),
			Highlights: TopN(totals.PerHorse, lookup, s.topN),
		})
	}
	out.Total = grand.InexactFloat64()

	s.logger.Debug("annual workload aggregated", zap.Int("year", year), zap.Float64("total", out.Total))
	return out
}

// Snapshot aggregates the month before the current one for archiving.
func (s *Service) Snapshot(ctx context.Context) (models.WorkloadSnapshot, error) {
	now := s.now().UTC()
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	yearMonth := previous.Format(models.MonthLayout)

	horses, records, err := s.load(ctx)
	if err != nil {
		return models.WorkloadSnapshot{}, err
	}

	return models.WorkloadSnapshot{
		ID:        uuid.NewString(),
		Workload:  s.BuildMonthly(records, models.NewHorseLookup(horses), yearMonth),
		Records:   len(BucketForMonth(records, yearMonth)),
		CreatedAt: now,
	}, nil
}

// ParseYear validates a year query value.
func ParseYear(value string) (int, error) {
	year, err := strconv.Atoi(value)
	if err != nil || year < 1900 || year > 9999 {
		return 0, ErrInvalidYear
	}
	return year, nil
}

func (s *Service) load(ctx context.Context) ([]models.Horse, []models.ScheduleRecord, error) {
	horses, err := s.source.ListHorses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load horses: %w", err)
	}
	records, err := s.source.ListSchedules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load schedules: %w", err)
	}
	return horses, records, nil
}
