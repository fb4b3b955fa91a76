package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxUploadMemory bounds the multipart form kept in memory
const maxUploadMemory = 32 << 20

// SetupRoutes configures all the routes for the application.
// A nil gatherer serves the default Prometheus registry
func SetupRoutes(h *Handler, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadMemory

	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.POST("/uploads/:stream", h.Upload)
		api.GET("/weeks", h.Weeks)
		api.GET("/rodizio", h.Rodizio)
		api.GET("/rodizio.csv", h.RodizioCSV)
	}

	return router
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("HTTP request", fields...)
			return
		}
		logger.Debug("HTTP request", fields...)
	}
}
