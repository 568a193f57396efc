// Package problempb models the narrow wire contract this repository's
// proxy needs from the out-of-scope problem catalog: a single
// GetProblem RPC. These types intentionally do not carry the
// protoc-gen-go reflection machinery (MessageState, MessageInfo,
// TypeBuilder) a real generated package would — that machinery exists
// to drive the binary protobuf wire codec, and this contract travels as
// JSON instead (see codec.go), so there is no .proto file or generator
// step behind these three messages.
package problempb

// TestCase is one input/expected-output pair belonging to a problem, as
// stored by the out-of-scope problem catalog.
type TestCase struct {
	Id             string `json:"id,omitempty"`
	Input          string `json:"input,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

func (x *TestCase) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *TestCase) GetInput() string {
	if x != nil {
		return x.Input
	}
	return ""
}

func (x *TestCase) GetExpectedOutput() string {
	if x != nil {
		return x.ExpectedOutput
	}
	return ""
}

// GetProblemRequest asks the catalog for one problem's test cases.
type GetProblemRequest struct {
	ProblemId string `json:"problem_id,omitempty"`
}

func (x *GetProblemRequest) GetProblemId() string {
	if x != nil {
		return x.ProblemId
	}
	return ""
}

// GetProblemResponse carries the problem's test cases, or Found=false
// when no problem with that id exists.
type GetProblemResponse struct {
	Found     bool        `json:"found,omitempty"`
	TestCases []*TestCase `json:"test_cases,omitempty"`
}

func (x *GetProblemResponse) GetFound() bool {
	if x != nil {
		return x.Found
	}
	return false
}

func (x *GetProblemResponse) GetTestCases() []*TestCase {
	if x != nil {
		return x.TestCases
	}
	return nil
}
