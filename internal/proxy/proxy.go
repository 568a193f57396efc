// Package proxy sits in front of the evaluation engine: it resolves a
// problem id against the catalog, builds the engine's evaluation
// request, and relays the engine's response verbatim. It also exposes a
// scratch-run path that skips grading entirely.
package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"judgecore/internal/proxy/problemclient"
	"judgecore/pkg/apperr"
	"judgecore/pkg/httpresponse"

	"github.com/gin-gonic/gin"
)

type testCaseWire struct {
	ID             string `json:"id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

type evaluateRequestWire struct {
	SubmissionID string         `json:"submission_id"`
	ProblemID    string         `json:"problem_id"`
	Language     string         `json:"language"`
	SourceCode   string         `json:"source_code"`
	TimeLimitMs  int            `json:"time_limit_ms,omitempty"`
	TestCases    []testCaseWire `json:"test_cases"`
}

// Proxy forwards submissions to the evaluation engine over HTTP.
type Proxy struct {
	problemClient *problemclient.Client
	engineAddr    string
	httpClient    *http.Client
	idSeq         func() string
}

// NewProxy builds a Proxy that calls the engine at engineAddr with the
// given request timeout.
func NewProxy(pc *problemclient.Client, engineAddr string, timeout time.Duration) *Proxy {
	return &Proxy{
		problemClient: pc,
		engineAddr:    engineAddr,
		httpClient:    &http.Client{Timeout: timeout},
		idSeq:         newSubmissionIDGenerator(),
	}
}

type submissionRequestBody struct {
	ProblemID   string `json:"problem_id" binding:"required"`
	Language    string `json:"language" binding:"required"`
	SourceCode  string `json:"source_code" binding:"required"`
	TimeLimitMs int    `json:"time_limit_ms"`
}

// EvaluateSubmission handles POST /api/v1/proxy/submit.
func (p *Proxy) EvaluateSubmission(c *gin.Context) {
	var body submissionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httpresponse.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	testCases, found, err := p.problemClient.GetProblem(ctx, body.ProblemID)
	if err != nil {
		httpresponse.Error(c, apperr.Wrapf(err, apperr.ProblemLookupFailed, "look up problem %q: %v", body.ProblemID, err))
		return
	}
	if !found {
		httpresponse.Error(c, apperr.Newf(apperr.ProblemNotFound, "problem %q not found", body.ProblemID))
		return
	}
	if len(testCases) == 0 {
		httpresponse.Error(c, apperr.New(apperr.NoTestCases))
		return
	}

	wire := evaluateRequestWire{
		SubmissionID: p.idSeq(),
		ProblemID:    body.ProblemID,
		Language:     body.Language,
		SourceCode:   body.SourceCode,
		TimeLimitMs:  body.TimeLimitMs,
		TestCases:    make([]testCaseWire, 0, len(testCases)),
	}
	for i, tc := range testCases {
		wire.TestCases = append(wire.TestCases, testCaseWire{
			ID:             strconv.Itoa(i + 1),
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}

	p.relay(c, wire)
}

type scratchRunRequestBody struct {
	SourceCode string `json:"source_code" binding:"required"`
	Input      string `json:"input"`
}

// ScratchRun handles POST /api/v1/proxy/run: evaluate without grading.
func (p *Proxy) ScratchRun(c *gin.Context) {
	var body scratchRunRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httpresponse.BadRequest(c, err.Error())
		return
	}

	wire := evaluateRequestWire{
		SubmissionID: p.idSeq(),
		SourceCode:   body.SourceCode,
		TestCases:    []testCaseWire{{ID: "1", Input: body.Input, ExpectedOutput: ""}},
	}
	p.relay(c, wire)
}

func (p *Proxy) relay(c *gin.Context, wire evaluateRequestWire) {
	payload, err := json.Marshal(wire)
	if err != nil {
		httpresponse.Error(c, apperr.Wrapf(err, apperr.InternalError, "encode engine request: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, p.engineAddr+"/api/v1/evaluate", bytes.NewReader(payload))
	if err != nil {
		httpresponse.Error(c, apperr.Wrapf(err, apperr.EngineUnreachable, "build engine request: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		httpresponse.Error(c, apperr.Wrapf(err, apperr.EngineUnreachable, "call evaluation engine: %v", err))
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		httpresponse.Error(c, apperr.Wrapf(err, apperr.EngineUnreachable, "read engine response: %v", err))
		return
	}
	if resp.StatusCode != http.StatusOK {
		httpresponse.Error(c, apperr.Newf(apperr.EngineUnreachable, "evaluation engine returned status %d", resp.StatusCode))
		return
	}

	c.Data(http.StatusOK, "application/json", respBody)
}

func newSubmissionIDGenerator() func() string {
	var counter int64
	return func() string {
		n := atomic.AddInt64(&counter, 1)
		return fmt.Sprintf("scratch-%d-%d", time.Now().UnixNano(), n)
	}
}
