package middleware

import (
	"judgecore/pkg/apperr"
	"judgecore/pkg/httpresponse"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit throttles requests with a single shared token bucket. The
// evaluation and proxy endpoints both sit in front of a fixed pool of
// sandbox slots, so a global limiter is enough: there is no per-client
// fairness requirement to justify a limiter-per-key map.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			httpresponse.AbortWithError(c, apperr.New(apperr.RateLimited))
			return
		}
		c.Next()
	}
}
