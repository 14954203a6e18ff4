package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/internal/repository/mongodb"
	"github.com/rpmontada/equinos/internal/service/workload"
)

// WorkloadService computes carga horária views.
type WorkloadService interface {
	Monthly(ctx context.Context, yearMonth string) (models.MonthlyWorkload, error)
	Annual(ctx context.Context, year int) (models.AnnualWorkload, error)
}

// SnapshotReader loads archived months.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, month string) (models.WorkloadSnapshot, error)
}

// WorkloadHandler serves the carga horária endpoints.
type WorkloadHandler struct {
	svc       WorkloadService
	snapshots SnapshotReader
	logger    *zap.Logger
}

// NewWorkloadHandler constructs the handler. snapshots may be nil when
// archiving is disabled.
func NewWorkloadHandler(svc WorkloadService, snapshots SnapshotReader, logger *zap.Logger) *WorkloadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkloadHandler{svc: svc, snapshots: snapshots, logger: logger}
}

// Monthly handles GET /api/carga/mensal?mes=YYYY-MM.
func (h *WorkloadHandler) Monthly(c *gin.Context) {
	month := c.Query("mes")
	if _, ok := models.ParseMonth(month); !ok {
		badRequest(c, workload.ErrInvalidMonth.Error())
		return
	}

	result, err := h.svc.Monthly(c.Request.Context(), month)
	if err != nil {
		respondBackendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Annual handles GET /api/carga/anual?ano=YYYY.
func (h *WorkloadHandler) Annual(c *gin.Context) {
	year, err := workload.ParseYear(c.Query("ano"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.svc.Annual(c.Request.Context(), year)
	if err != nil {
		respondBackendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Archived handles GET /api/carga/arquivo/:mes.
func (h *WorkloadHandler) Archived(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "archive disabled"})
		return
	}

	month := c.Param("mes")
	if _, ok := models.ParseMonth(month); !ok {
		badRequest(c, workload.ErrInvalidMonth.Error())
		return
	}

	snapshot, err := h.snapshots.LatestSnapshot(c.Request.Context(), month)
	if errors.Is(err, mongodb.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for " + month})
		return
	}
	if err != nil {
		h.logger.Error("failed loading snapshot", zap.String("month", month), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load snapshot"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
