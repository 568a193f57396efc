// Package problemclient is a thin gRPC client over the problem catalog's
// GetProblem RPC. The catalog itself is out of this repository's scope;
// this package only models the contract the proxy needs.
package problemclient

import (
	"context"

	"judgecore/api/problempb"
)

// TestCase is one test case as the catalog returns it.
type TestCase struct {
	ID             string
	Input          string
	ExpectedOutput string
}

// Client queries the problem catalog.
type Client struct {
	grpc problempb.ProblemServiceClient
}

// NewClient wraps a generated gRPC stub.
func NewClient(grpc problempb.ProblemServiceClient) *Client {
	return &Client{grpc: grpc}
}

// GetProblem returns a problem's test cases in catalog order. Found is
// false when the catalog has no problem with that id.
func (c *Client) GetProblem(ctx context.Context, problemID string) (testCases []TestCase, found bool, err error) {
	resp, err := c.grpc.GetProblem(ctx, &problempb.GetProblemRequest{ProblemId: problemID})
	if err != nil {
		return nil, false, err
	}
	if !resp.GetFound() {
		return nil, false, nil
	}

	out := make([]TestCase, 0, len(resp.GetTestCases()))
	for _, tc := range resp.GetTestCases() {
		out = append(out, TestCase{ID: tc.GetId(), Input: tc.GetInput(), ExpectedOutput: tc.GetExpectedOutput()})
	}
	return out, true, nil
}
