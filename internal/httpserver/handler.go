// Package httpserver exposes the evaluation service over the single
// synchronous HTTP endpoint the rest of the judge talks to.
package httpserver

import (
	"context"
	"time"

	"judgecore/internal/evaluation"
	"judgecore/internal/statuscache"
	"judgecore/pkg/apperr"
	"judgecore/pkg/httpresponse"
	"judgecore/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const statusCacheWriteTimeout = 2 * time.Second

// EvaluationHandler decodes evaluation requests and dispatches them to the
// evaluation service.
type EvaluationHandler struct {
	svc   *evaluation.Service
	cache *statuscache.Cache
}

// NewEvaluationHandler builds a handler backed by svc. cache may be nil,
// in which case results are never persisted beyond the response itself.
func NewEvaluationHandler(svc *evaluation.Service, cache *statuscache.Cache) *EvaluationHandler {
	return &EvaluationHandler{svc: svc, cache: cache}
}

// Evaluate handles POST /api/v1/evaluate. The response body mirrors the
// EvaluationResult directly; it is not wrapped in the common error
// envelope since this is the one endpoint whose wire shape is fixed by
// the front-end's existing contract.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req evaluateRequestWire
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresponse.BadRequest(c, err.Error())
		return
	}

	evalReq := evaluation.SubmissionRequest{
		SubmissionID:  req.SubmissionID,
		ProblemID:     req.ProblemID,
		Language:      req.Language,
		SourceCode:    req.SourceCode,
		TimeLimitMs:   req.TimeLimitMs,
		MemoryLimitKB: req.MemoryLimitKB,
		TestCases:     make([]evaluation.TestCase, 0, len(req.TestCases)),
	}
	for _, tc := range req.TestCases {
		evalReq.TestCases = append(evalReq.TestCases, evaluation.TestCase{
			ID:             tc.ID,
			Input:          []byte(tc.Input),
			ExpectedOutput: []byte(tc.ExpectedOutput),
		})
	}

	result, err := h.svc.Evaluate(c.Request.Context(), evalReq)
	if err != nil {
		if apperr.Is(err, apperr.ValidationFailed) {
			httpresponse.Error(c, err)
			return
		}
		httpresponse.Error(c, apperr.Wrapf(err, apperr.InternalError, "evaluation failed: %v", err))
		return
	}

	if h.cache != nil {
		go h.storeResult(result)
	}

	tests := make([]testResultWire, 0, len(result.Tests))
	for _, t := range result.Tests {
		tests = append(tests, testResultWire{
			ID:         t.TestID,
			Status:     string(t.Status),
			TimeMs:     t.TimeMs,
			MemoryKB:   t.MemoryKB,
			RuntimeLog: t.RuntimeLog,
		})
	}

	c.JSON(200, evaluateResponseWire{
		SubmissionID:  result.SubmissionID,
		OverallStatus: string(result.OverallStatus),
		CompileLog:    result.CompileLog,
		MaxTimeMs:     result.MaxTimeMs,
		MaxMemoryKB:   result.MaxMemoryKB,
		Tests:         tests,
	})
}

// storeResult persists a finished evaluation to the status cache. It runs
// detached from the request so a slow or unreachable cache never adds
// latency to the synchronous response.
func (h *EvaluationHandler) storeResult(result evaluation.EvaluationResult) {
	ctx, cancel := context.WithTimeout(context.Background(), statusCacheWriteTimeout)
	defer cancel()
	if err := h.cache.Store(ctx, result); err != nil {
		logging.Error(ctx, "status cache write failed", zap.String("submission_id", result.SubmissionID), zap.Error(err))
	}
}
