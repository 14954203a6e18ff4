package export

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
	repo "github.com/rpmontada/equinos/internal/repository/sheets"
)

// Header is the first row of the workload sheet.
var Header = []interface{}{"Ano", "Mês", "Rótulo", "Carga horária (h)", "Cor", "Destaques"}

// Service writes aggregated workload rows to the spreadsheet.
type Service struct {
	repo       repo.Repository
	sheetRange string
	logger     *zap.Logger
}

// NewService wires an export service writing into sheetRange.
func NewService(repository repo.Repository, sheetRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, sheetRange: sheetRange, logger: logger}
}

// ExportAnnual appends one row per month, writing the header first on an empty sheet.
func (s *Service) ExportAnnual(ctx context.Context, annual models.AnnualWorkload) (int, error) {
	existing, err := s.repo.ReadRange(ctx, headerRange(s.sheetRange))
	if err != nil {
		return 0, fmt.Errorf("inspect sheet header: %w", err)
	}

	rows := Rows(annual)
	if len(existing) == 0 {
		rows = append([][]interface{}{Header}, rows...)
	}

	if err := s.repo.AppendRows(ctx, s.sheetRange, rows); err != nil {
		return 0, fmt.Errorf("export workload %d: %w", annual.Year, err)
	}

	s.logger.Info("annual workload exported", zap.Int("year", annual.Year), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// Rows flattens the chart points into sheet rows.
func Rows(annual models.AnnualWorkload) [][]interface{} {
	rows := make([][]interface{}, 0, len(annual.Points))
	for _, point := range annual.Points {
		rows = append(rows, []interface{}{
			annual.Year,
			point.Month,
			point.Label,
			point.Total,
			point.Color,
			strings.Join(point.Highlights, "; "),
		})
	}
	return rows
}

// headerRange narrows "Sheet!A:F" to its first row, "Sheet!A1:F1".
func headerRange(sheetRange string) string {
	sheet, cols, found := strings.Cut(sheetRange, "!")
	if !found {
		return sheetRange
	}
	from, to, found := strings.Cut(cols, ":")
	if !found {
		return sheet + "!" + cols + "1"
	}
	return fmt.Sprintf("%s!%s1:%s1", sheet, trimDigits(from), trimDigits(to))
}

func trimDigits(col string) string {
	return strings.TrimRight(col, "0123456789")
}
