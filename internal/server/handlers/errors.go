package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/pkg/clients/records"
)

// errInvalidQuery marks a malformed query parameter.
var errInvalidQuery = errors.New("invalid query parameter")

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// respondBackendError maps a service failure to 503 while the record backend
// circuit is open and to 502 otherwise.
func respondBackendError(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, records.ErrUnavailable) {
		logger.Warn("record backend unavailable", zap.String("path", c.FullPath()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record backend unavailable"})
		return
	}
	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load records"})
}
