package proxy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"judgecore/api/problempb"
	"judgecore/internal/proxy"
	"judgecore/internal/proxy/problemclient"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type fakeProblemClient struct {
	resp *problempb.GetProblemResponse
	err  error
}

func (f *fakeProblemClient) GetProblem(_ context.Context, _ *problempb.GetProblemRequest, _ ...grpc.CallOption) (*problempb.GetProblemResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestEvaluateSubmissionRelaysEngineResponse(t *testing.T) {
	pc := problemclient.NewClient(&fakeProblemClient{resp: &problempb.GetProblemResponse{
		Found: true,
		TestCases: []*problempb.TestCase{
			{Id: "catalog-9", Input: "1\n", ExpectedOutput: "1\n"},
			{Id: "catalog-10", Input: "2\n", ExpectedOutput: "2\n"},
		},
	}})

	var capturedTestIDs []string
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TestCases []struct {
				ID string `json:"id"`
			} `json:"test_cases"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		for _, tc := range req.TestCases {
			capturedTestIDs = append(capturedTestIDs, tc.ID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"submission_id":"x","overall_status":"Accepted"}`))
	}))
	defer engine.Close()

	p := proxy.NewProxy(pc, engine.URL, time.Second)
	router := proxy.NewRouter(p, nil)

	payload := []byte(`{"problem_id":"p1","language":"cpp","source_code":"int main(){}"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proxy/submit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"submission_id":"x","overall_status":"Accepted"}`, rec.Body.String())
	require.Equal(t, []string{"1", "2"}, capturedTestIDs)
}

func TestEvaluateSubmissionProblemNotFound(t *testing.T) {
	pc := problemclient.NewClient(&fakeProblemClient{resp: &problempb.GetProblemResponse{Found: false}})
	p := proxy.NewProxy(pc, "http://unused.invalid", time.Second)
	router := proxy.NewRouter(p, nil)

	payload := []byte(`{"problem_id":"missing","language":"cpp","source_code":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proxy/submit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluateSubmissionNoTestCases(t *testing.T) {
	pc := problemclient.NewClient(&fakeProblemClient{resp: &problempb.GetProblemResponse{Found: true}})
	p := proxy.NewProxy(pc, "http://unused.invalid", time.Second)
	router := proxy.NewRouter(p, nil)

	payload := []byte(`{"problem_id":"p2","language":"cpp","source_code":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proxy/submit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateSubmissionEngineUnreachable(t *testing.T) {
	pc := problemclient.NewClient(&fakeProblemClient{resp: &problempb.GetProblemResponse{
		Found:     true,
		TestCases: []*problempb.TestCase{{Id: "1", Input: "1\n", ExpectedOutput: "1\n"}},
	}})
	p := proxy.NewProxy(pc, "http://127.0.0.1:1", 200*time.Millisecond)
	router := proxy.NewRouter(p, nil)

	payload := []byte(`{"problem_id":"p3","language":"cpp","source_code":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proxy/submit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestScratchRunBuildsSingleEmptyExpectationTestCase(t *testing.T) {
	pc := problemclient.NewClient(&fakeProblemClient{})
	var captured struct {
		TestCases []struct {
			ID             string `json:"id"`
			ExpectedOutput string `json:"expected_output"`
		} `json:"test_cases"`
	}
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"submission_id":"x","overall_status":"Accepted"}`))
	}))
	defer engine.Close()

	p := proxy.NewProxy(pc, engine.URL, time.Second)
	router := proxy.NewRouter(p, nil)

	payload := []byte(`{"source_code":"int main(){}","input":"7\n"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proxy/run", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, captured.TestCases, 1)
	require.Equal(t, "1", captured.TestCases[0].ID)
	require.Equal(t, "", captured.TestCases[0].ExpectedOutput)
}
