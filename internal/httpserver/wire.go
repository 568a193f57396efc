package httpserver

// testCaseWire is the wire shape of one test case in an evaluation request.
type testCaseWire struct {
	ID             string `json:"id" binding:"required"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// evaluateRequestWire is the JSON body the evaluation endpoint accepts.
type evaluateRequestWire struct {
	SubmissionID  string         `json:"submission_id" binding:"required"`
	ProblemID     string         `json:"problem_id"`
	Language      string         `json:"language"`
	SourceCode    string         `json:"source_code" binding:"required"`
	TimeLimitMs   int            `json:"time_limit_ms"`
	MemoryLimitKB int            `json:"memory_limit_kb"`
	TestCases     []testCaseWire `json:"test_cases"`
}

// testResultWire is the wire shape of one test's reported outcome.
type testResultWire struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	TimeMs     int64  `json:"time_ms"`
	MemoryKB   int64  `json:"memory_kb"`
	RuntimeLog string `json:"runtime_log"`
}

// evaluateResponseWire is the JSON body the evaluation endpoint returns.
// It is never wrapped in the common error envelope: the wire format here
// matches the original engine's response body exactly.
type evaluateResponseWire struct {
	SubmissionID  string           `json:"submission_id"`
	OverallStatus string           `json:"overall_status"`
	CompileLog    string           `json:"compile_log"`
	MaxTimeMs     int64            `json:"max_time_ms"`
	MaxMemoryKB   int64            `json:"max_memory_kb"`
	Tests         []testResultWire `json:"tests"`
}
