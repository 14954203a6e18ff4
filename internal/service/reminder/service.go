package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
)

// ErrUnknownKind indicates a treatment kind other than vaccination or deworming.
var ErrUnknownKind = errors.New("unknown treatment kind")

var kindTitles = map[models.TreatmentKind]string{
	models.KindVaccination: "Vacinação",
	models.KindDeworming:   "Vermifugação",
}

// TreatmentSource supplies the treatment rows and the horse roster.
type TreatmentSource interface {
	ListHorses(ctx context.Context) ([]models.Horse, error)
	ListTreatments(ctx context.Context, kind models.TreatmentKind) ([]models.TreatmentRecord, error)
}

// Service annotates vaccination and deworming rows with their due status.
type Service struct {
	source TreatmentSource
	policy Policy
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires the reminder service. The clock is injected so that
// today is deterministic.
func NewService(source TreatmentSource, policy Policy, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if policy.WindowDays <= 0 {
		policy.WindowDays = DefaultWindowDays
	}
	return &Service{source: source, policy: policy, now: now, logger: logger}
}

// Rows lists the treatments of a kind, earliest reference date first.
func (s *Service) Rows(ctx context.Context, kind models.TreatmentKind) ([]models.ReminderRow, error) {
	if _, ok := kindTitles[kind]; !ok {
		return nil, ErrUnknownKind
	}

	horses, err := s.source.ListHorses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load horses: %w", err)
	}
	treatments, err := s.source.ListTreatments(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	return s.Annotate(kind, treatments, horses), nil
}

// Annotate classifies already fetched treatments against today.
func (s *Service) Annotate(kind models.TreatmentKind, treatments []models.TreatmentRecord, horses []models.Horse) []models.ReminderRow {
	today := models.DayOf(s.now())
	names := models.NewHorseLookup(horses)

	rows := make([]models.ReminderRow, 0, len(treatments))
	for _, treatment := range treatments {
		status := Status(treatment.NextDueDate, today, s.policy.WindowDays)
		row := models.ReminderRow{
			ID:             string(treatment.ID),
			Kind:           kind,
			HorseID:        string(treatment.HorseID),
			Horse:          names.Name(string(treatment.HorseID)),
			ProductName:    treatment.ProductName,
			Date:           treatment.Date,
			DueDate:        treatment.NextDueDate,
			Status:         status,
			NeedsAttention: s.policy.Highlight(status),
		}
		if due, ok := models.ParseCalendarDay(treatment.NextDueDate); ok {
			days := DaysBetween(today, due)
			row.DaysUntil = &days
		} else if treatment.NextDueDate != "" {
			s.logger.Debug("skip due date classification", zap.String("id", string(treatment.ID)), zap.String("value", treatment.NextDueDate))
		}
		rows = append(rows, row)
	}

	sortByReference(rows)
	return rows
}

// Digest renders every row needing attention as a chat message. The boolean
// is false when nothing is due.
func (s *Service) Digest(ctx context.Context) (string, bool, error) {
	var b strings.Builder
	today := models.DayOf(s.now())
	fmt.Fprintf(&b, "Lembretes de %s (próximos %d dias)", today.Format("02/01/2006"), s.policy.WindowDays)

	found := false
	for _, kind := range []models.TreatmentKind{models.KindVaccination, models.KindDeworming} {
		rows, err := s.Rows(ctx, kind)
		if err != nil {
			return "", false, err
		}

		var due []models.ReminderRow
		for _, row := range rows {
			if row.NeedsAttention {
				due = append(due, row)
			}
		}
		if len(due) == 0 {
			continue
		}

		found = true
		fmt.Fprintf(&b, "\n\n%s:", kindTitles[kind])
		for _, row := range due {
			fmt.Fprintf(&b, "\n- %s: %s em %s (%s)", row.Horse, row.ProductName, formatDay(row.DueDate), describe(row))
		}
	}

	if !found {
		return "", false, nil
	}
	return b.String(), true, nil
}

func describe(row models.ReminderRow) string {
	switch row.Status {
	case models.DueToday:
		return "hoje"
	case models.DueOverdue:
		return "vencido"
	}
	if row.DaysUntil != nil {
		if *row.DaysUntil == 1 {
			return "amanhã"
		}
		return fmt.Sprintf("em %d dias", *row.DaysUntil)
	}
	return string(row.Status)
}

func formatDay(value string) string {
	day, ok := models.ParseCalendarDay(value)
	if !ok {
		return value
	}
	return day.Format("02/01/2006")
}

// sortByReference orders rows by next due date, falling back to the
// administration date; rows without any parseable date go last.
func sortByReference(rows []models.ReminderRow) {
	reference := func(row models.ReminderRow) (time.Time, bool) {
		if day, ok := models.ParseCalendarDay(row.DueDate); ok {
			return day, true
		}
		return models.ParseCalendarDay(row.Date)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, okA := reference(rows[i])
		b, okB := reference(rows[j])
		if okA != okB {
			return okA
		}
		return a.Before(b)
	})
}
