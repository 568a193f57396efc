package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"judgecore/internal/engine"
	"judgecore/internal/engine/runner"
	"judgecore/internal/evaluation"
	"judgecore/internal/httpserver"

	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	compileExitCode int
	stdout          string
}

func (f *fakeEngine) Run(_ context.Context, spec engine.RunSpec) (engine.RunResult, error) {
	if spec.TestID == "compile" {
		return engine.RunResult{ExitCode: f.compileExitCode}, nil
	}
	for _, m := range spec.BindMounts {
		if strings.HasSuffix(m.Target, "output.txt") {
			_ = os.WriteFile(m.Source, []byte(f.stdout), 0o644)
		}
		if strings.HasSuffix(m.Target, "runtime.log") {
			_ = os.WriteFile(m.Source, nil, 0o644)
		}
	}
	return engine.RunResult{ExitCode: 0}, nil
}

func (f *fakeEngine) KillSubmission(_ context.Context, _ string) error { return nil }

func newTestService(t *testing.T) *evaluation.Service {
	t.Helper()
	eng := &fakeEngine{stdout: "8\n"}
	return evaluation.NewService(runner.NewRunner(eng), t.TempDir())
}

func TestEvaluateEndpointSuccess(t *testing.T) {
	svc := newTestService(t)
	router := httpserver.NewRouter(svc, nil, nil)

	body := map[string]any{
		"submission_id": "sub-1",
		"source_code":   "int main(){}",
		"test_cases": []map[string]any{
			{"id": "1", "input": "3 5\n", "expected_output": "8\n"},
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SubmissionID  string `json:"submission_id"`
		OverallStatus string `json:"overall_status"`
		Tests         []struct {
			Status string `json:"status"`
		} `json:"tests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "sub-1", resp.SubmissionID)
	require.Equal(t, "Accepted", resp.OverallStatus)
	require.Len(t, resp.Tests, 1)
	require.Equal(t, "Accepted", resp.Tests[0].Status)
}

func TestEvaluateEndpointMissingSourceCodeIsBadRequest(t *testing.T) {
	svc := newTestService(t)
	router := httpserver.NewRouter(svc, nil, nil)

	payload := []byte(`{"submission_id":"sub-2","test_cases":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateEndpointMalformedJSONIsBadRequest(t *testing.T) {
	svc := newTestService(t)
	router := httpserver.NewRouter(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateEndpointCompileError(t *testing.T) {
	eng := &fakeEngine{compileExitCode: 1}
	svc := evaluation.NewService(runner.NewRunner(eng), t.TempDir())
	router := httpserver.NewRouter(svc, nil, nil)

	payload := []byte(`{"submission_id":"sub-3","source_code":"broken","test_cases":[{"id":"1","input":"1\n","expected_output":"1\n"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OverallStatus string `json:"overall_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "CompilationError", resp.OverallStatus)
}
