package proxy

import (
	"judgecore/internal/httpserver/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// NewRouter builds the gin engine serving the submission proxy. limiter
// may be nil to disable request throttling, which tests rely on.
func NewRouter(p *Proxy, limiter *rate.Limiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceContext())
	if limiter != nil {
		router.Use(middleware.RateLimit(limiter))
	}

	api := router.Group("/api/v1/proxy")
	api.POST("/submit", p.EvaluateSubmission)
	api.POST("/run", p.ScratchRun)

	return router
}
