// Package httpresponse gives the two HTTP surfaces (the evaluation
// endpoint and the submission proxy) a uniform way to render apperr
// failures. Successful responses are written as the raw domain JSON the
// wire format calls for, not wrapped in an envelope, so callers use
// c.JSON directly for the happy path and this package only for errors.
package httpresponse

import (
	"judgecore/pkg/apperr"
	"judgecore/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the JSON shape written for any non-2xx response.
type ErrorBody struct {
	Code    apperr.Code    `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error logs err and writes the appropriate status code and body.
func Error(c *gin.Context, err error) {
	ae, ok := err.(*apperr.Error)
	if !ok {
		ae = apperr.Wrap(err, apperr.InternalError)
	}

	logging.Error(c.Request.Context(), "request failed",
		zap.Int("code", int(ae.Code)),
		zap.String("message", ae.Error()),
		zap.Any("details", ae.Details),
	)

	c.JSON(ae.Code.HTTPStatus(), ErrorBody{
		Code:    ae.Code,
		Message: ae.Error(),
		Details: ae.Details,
	})
}

// BadRequest is a convenience for request-binding failures.
func BadRequest(c *gin.Context, reason string) {
	Error(c, apperr.Newf(apperr.ValidationFailed, "%s", reason))
}

// AbortWithError writes the error body and aborts the gin chain.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
