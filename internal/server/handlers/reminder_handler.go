package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
)

// ReminderService lists annotated treatment rows.
type ReminderService interface {
	Rows(ctx context.Context, kind models.TreatmentKind) ([]models.ReminderRow, error)
}

// ReminderHandler serves the vaccination and deworming reminder table.
type ReminderHandler struct {
	svc    ReminderService
	logger *zap.Logger
}

// NewReminderHandler constructs the handler.
func NewReminderHandler(svc ReminderService, logger *zap.Logger) *ReminderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderHandler{svc: svc, logger: logger}
}

// List handles GET /api/lembretes?tipo=vacinacao|vermifugacao.
func (h *ReminderHandler) List(c *gin.Context) {
	kind, ok := models.ParseTreatmentKind(c.Query("tipo"))
	if !ok {
		badRequest(c, "tipo must be vacinacao or vermifugacao")
		return
	}

	rows, err := h.svc.Rows(c.Request.Context(), kind)
	if err != nil {
		respondBackendError(c, h.logger, err)
		return
	}
	if rows == nil {
		rows = []models.ReminderRow{}
	}
	c.JSON(http.StatusOK, rows)
}
