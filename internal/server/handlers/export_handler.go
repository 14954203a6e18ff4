package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/internal/service/workload"
)

// AnnualExporter writes an annual workload to the spreadsheet.
type AnnualExporter interface {
	ExportAnnual(ctx context.Context, annual models.AnnualWorkload) (int, error)
}

// ExportHandler serves the spreadsheet export.
type ExportHandler struct {
	workload WorkloadService
	exporter AnnualExporter
	logger   *zap.Logger
}

// NewExportHandler constructs the handler. exporter may be nil when Sheets is not configured.
func NewExportHandler(workload WorkloadService, exporter AnnualExporter, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{workload: workload, exporter: exporter, logger: logger}
}

// Annual handles POST /api/exportar/anual?ano=YYYY.
func (h *ExportHandler) Annual(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export disabled"})
		return
	}

	year, err := workload.ParseYear(c.Query("ano"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	annual, err := h.workload.Annual(c.Request.Context(), year)
	if err != nil {
		respondBackendError(c, h.logger, err)
		return
	}

	rows, err := h.exporter.ExportAnnual(c.Request.Context(), annual)
	if err != nil {
		h.logger.Error("failed exporting workload", zap.Int("year", year), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to export"})
		return
	}

	h.logger.Info("workload exported", zap.Int("year", year), zap.Int("rows", rows))
	c.JSON(http.StatusOK, gin.H{"year": year, "rows": rows})
}
