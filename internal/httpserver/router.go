package httpserver

import (
	"time"

	"judgecore/internal/evaluation"
	"judgecore/internal/httpserver/middleware"
	"judgecore/internal/statuscache"
	"judgecore/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds the gin engine serving the evaluation endpoint. cache
// may be nil when the status cache is disabled, and limiter may be nil
// to disable request throttling.
func NewRouter(svc *evaluation.Service, cache *statuscache.Cache, limiter *rate.Limiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceContext())
	router.Use(requestLogger())
	if limiter != nil {
		router.Use(middleware.RateLimit(limiter))
	}

	handler := NewEvaluationHandler(svc, cache)
	api := router.Group("/api/v1")
	api.POST("/evaluate", handler.Evaluate)

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logging.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
