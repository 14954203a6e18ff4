package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/internal/service/history"
)

// VisitService lists filtered medical visits.
type VisitService interface {
	Visits(ctx context.Context, filter history.Filter) ([]models.VisitRecord, error)
}

// VisitHandler serves the medical visit history.
type VisitHandler struct {
	svc    VisitService
	logger *zap.Logger
}

// NewVisitHandler constructs the handler.
func NewVisitHandler(svc VisitService, logger *zap.Logger) *VisitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitHandler{svc: svc, logger: logger}
}

// List handles GET /api/atendimentos?de=&ate=&equino=.
func (h *VisitHandler) List(c *gin.Context) {
	filter, err := visitFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	visits, err := h.svc.Visits(c.Request.Context(), filter)
	if err != nil {
		respondBackendError(c, h.logger, err)
		return
	}
	if visits == nil {
		visits = []models.VisitRecord{}
	}
	c.JSON(http.StatusOK, visits)
}

func visitFilter(c *gin.Context) (history.Filter, error) {
	filter := history.Filter{HorseID: c.Query("equino")}

	if raw := c.Query("de"); raw != "" {
		day, ok := models.ParseDay(raw)
		if !ok {
			return history.Filter{}, fmt.Errorf("%w: de", errInvalidQuery)
		}
		filter.From = day
	}
	if raw := c.Query("ate"); raw != "" {
		day, ok := models.ParseDay(raw)
		if !ok {
			return history.Filter{}, fmt.Errorf("%w: ate", errInvalidQuery)
		}
		filter.To = day
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return history.Filter{}, fmt.Errorf("%w: ate before de", errInvalidQuery)
	}
	return filter, nil
}
