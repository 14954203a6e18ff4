package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
)

// VisitSource supplies medical visits.
type VisitSource interface {
	ListVisits(ctx context.Context) ([]models.VisitRecord, error)
}

// Filter narrows records to an inclusive day range and, optionally, one
// horse. Zero bounds are open.
type Filter struct {
	From    time.Time
	To      time.Time
	HorseID string
}

// Match reports whether a dated record satisfies the filter. Records with
// unparseable dates never match a bounded filter.
func (f Filter) Match(horseID, date string) bool {
	if f.HorseID != "" && horseID != f.HorseID {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	day, ok := models.ParseDay(date)
	if !ok {
		return false
	}
	if !f.From.IsZero() && day.Before(models.DayOf(f.From)) {
		return false
	}
	if !f.To.IsZero() && day.After(models.DayOf(f.To)) {
		return false
	}
	return true
}

// Service lists medical visit history.
type Service struct {
	source VisitSource
	logger *zap.Logger
}

// NewService wires a visit history service.
func NewService(source VisitSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// Visits returns matching visits, most recent first.
func (s *Service) Visits(ctx context.Context, filter Filter) ([]models.VisitRecord, error) {
	visits, err := s.source.ListVisits(ctx)
	if err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}

	out := make([]models.VisitRecord, 0, len(visits))
	for _, visit := range visits {
		if filter.Match(string(visit.HorseID), visit.Date) {
			out = append(out, visit)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := models.ParseDay(out[i].Date)
		b, _ := models.ParseDay(out[j].Date)
		return a.After(b)
	})

	s.logger.Debug("visits filtered", zap.Int("total", len(visits)), zap.Int("matched", len(out)))
	return out, nil
}
