package evaluation

// TestCase is one input/expected-output pair belonging to a submission.
// An empty ExpectedOutput means scratch-run semantics: the comparer is
// bypassed and only runtime correctness is reported.
type TestCase struct {
	ID             string
	Input          []byte
	ExpectedOutput []byte
}

// SubmissionRequest is everything needed to evaluate one submission.
type SubmissionRequest struct {
	SubmissionID  string
	ProblemID     string
	Language      string
	SourceCode    string
	TimeLimitMs   int
	MemoryLimitKB int
	TestCases     []TestCase
}

// RunLimits are the resource limits derived from a SubmissionRequest and
// applied to every test run in the submission.
type RunLimits struct {
	TimeLimitSeconds int
	MemoryLimitMB    int
	CPULimit         float64
	PIDsLimit        int
}

// Status is a per-test verdict. The set is closed; new values require a
// deliberate decision, not ad-hoc string literals at call sites.
type Status string

const (
	Accepted          Status = "Accepted"
	WrongAnswer       Status = "WrongAnswer"
	TimeLimitExceeded Status = "TimeLimitExceeded"
	RuntimeError      Status = "RuntimeError"
	InternalErrorTest Status = "InternalError"
)

// TestResult is the outcome of running one test case.
type TestResult struct {
	TestID     string
	Status     Status
	TimeMs     int64
	MemoryKB   int64
	RuntimeLog string
}

// OverallStatus summarizes an entire submission's evaluation.
type OverallStatus string

const (
	OverallAccepted         OverallStatus = "Accepted"
	OverallCompilationError OverallStatus = "CompilationError"
	OverallPartialAccepted  OverallStatus = "PartialAccepted"
	OverallInternalError    OverallStatus = "InternalError"
)

// EvaluationResult is the complete report for one submission.
type EvaluationResult struct {
	SubmissionID  string
	OverallStatus OverallStatus
	CompileLog    string
	Tests         []TestResult
	MaxTimeMs     int64
	MaxMemoryKB   int64
}

const (
	defaultTimeLimitMs   = 2000
	defaultMemoryLimitKB = 262144
	minTimeLimitSeconds  = 1
	minMemoryLimitMB     = 16
	defaultMemoryLimitMB = 256
	defaultCPULimit      = 1.0
	defaultPIDsLimit     = 64

	outputSizeCeilingKB = 1024 // 1 MiB
)

// deriveLimits implements the request-to-RunLimits mapping: a time limit
// of under one second still rounds up to one second, and an unset memory
// budget falls back to 256 MB rather than 16.
func deriveLimits(req SubmissionRequest) RunLimits {
	timeLimitMs := req.TimeLimitMs
	if timeLimitMs <= 0 {
		timeLimitMs = defaultTimeLimitMs
	}
	timeLimitSeconds := timeLimitMs / 1000
	if timeLimitSeconds < minTimeLimitSeconds {
		timeLimitSeconds = minTimeLimitSeconds
	}

	memoryLimitMB := defaultMemoryLimitMB
	if req.MemoryLimitKB > 0 {
		memoryLimitMB = req.MemoryLimitKB / 1024
		if memoryLimitMB < minMemoryLimitMB {
			memoryLimitMB = minMemoryLimitMB
		}
	}

	return RunLimits{
		TimeLimitSeconds: timeLimitSeconds,
		MemoryLimitMB:    memoryLimitMB,
		CPULimit:         defaultCPULimit,
		PIDsLimit:        defaultPIDsLimit,
	}
}
