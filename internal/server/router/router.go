package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/server/handlers"
	"github.com/rpmontada/equinos/pkg/metrics"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Webhook   *handlers.WebhookHandler
	Workload  *handlers.WorkloadHandler
	Reminders *handlers.ReminderHandler
	Visits    *handlers.VisitHandler
	Export    *handlers.ExportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware())

	r.GET("/webhook", h.Webhook.Verify)
	r.POST("/webhook", h.Webhook.Receive)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/carga/mensal", h.Workload.Monthly)
	api.GET("/carga/anual", h.Workload.Annual)
	api.GET("/carga/arquivo/:mes", h.Workload.Archived)
	api.GET("/lembretes", h.Reminders.List)
	api.GET("/atendimentos", h.Visits.List)
	api.POST("/exportar/anual", h.Export.Annual)
	api.POST("/mensagens", h.Webhook.SendMessage)

	logger.Info("router initialized")
	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// metricsMiddleware labels by route template so path parameters do not
// inflate cardinality. Unmatched paths share one label.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
