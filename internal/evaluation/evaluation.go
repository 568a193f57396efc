// Package evaluation orchestrates one submission end to end: materialize
// its workspace, compile once, run every test case sequentially against
// the compiled binary, classify each test's verdict, and aggregate an
// overall status. It owns all verdict logic; the sandbox runner it calls
// only reports raw exit codes and resource usage.
package evaluation

import (
	"context"
	"fmt"
	"os"

	"judgecore/internal/comparer"
	"judgecore/internal/engine"
	"judgecore/internal/engine/runner"
	"judgecore/internal/workspace"
	"judgecore/pkg/apperr"
	"judgecore/pkg/logging"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	compileWallTimeMs = 10_000
	compileMemoryMB   = 512
)

// Service evaluates submissions. It is safe for concurrent use; each
// Evaluate call gets its own workspace directory.
type Service struct {
	runner  *runner.Runner
	baseDir string
}

// NewService builds a Service that materializes workspaces under baseDir
// and runs sandboxed steps through r.
func NewService(r *runner.Runner, baseDir string) *Service {
	return &Service{runner: r, baseDir: baseDir}
}

// Evaluate runs the full compile-then-test pipeline for one submission.
func (s *Service) Evaluate(ctx context.Context, req SubmissionRequest) (EvaluationResult, error) {
	if req.SubmissionID == "" {
		return EvaluationResult{}, apperr.ValidationError("submission_id", "required")
	}
	if req.SourceCode == "" {
		return EvaluationResult{}, apperr.ValidationError("source_code", "required")
	}

	result := EvaluationResult{SubmissionID: req.SubmissionID}

	// nonFatal collects problems that never change result or the error
	// this method returns: a missing log file or a failed cleanup is
	// worth a combined warning, not a reason to fail or retry a
	// submission that already has a verdict.
	var nonFatal error
	var ws *workspace.Workspace
	defer func() {
		if ws != nil {
			nonFatal = multierr.Append(nonFatal, ws.Cleanup())
		}
		if nonFatal != nil {
			logging.Warn(ctx, "non-fatal evaluation warnings", zap.String("submission_id", req.SubmissionID), zap.Error(nonFatal))
		}
	}()

	var err error
	ws, err = workspace.New(s.baseDir, req.SubmissionID, req.SourceCode)
	if err != nil {
		return s.internalError(result, err), nil
	}

	compileOutcome, compileErr := s.runner.Compile(ctx, runner.CompileRequest{
		SubmissionID: req.SubmissionID,
		WorkDir:      ws.RootDir,
		LogPath:      ws.CompileLogPath(),
		Limits:       engine.ResourceLimit{WallTimeMs: compileWallTimeMs, MemoryMB: compileMemoryMB},
	})
	if compileErr != nil {
		return s.internalError(result, compileErr), nil
	}

	var logErr error
	result.CompileLog, logErr = readFileOrEmpty(compileOutcome.LogPath)
	nonFatal = multierr.Append(nonFatal, logErr)
	if compileOutcome.ExitCode != 0 {
		result.OverallStatus = OverallCompilationError
		return result, nil
	}

	limits := deriveLimits(req)
	allAccepted := true

	for _, tc := range req.TestCases {
		testPaths, writeErr := ws.Test(tc.ID, tc.Input, tc.ExpectedOutput)
		if writeErr != nil {
			return s.internalError(result, writeErr), nil
		}

		runOutcome, runErr := s.runner.Run(ctx, runner.RunRequest{
			SubmissionID: req.SubmissionID,
			TestID:       tc.ID,
			WorkDir:      ws.RootDir,
			InputPath:    testPaths.InputPath,
			OutputPath:   testPaths.OutputPath,
			LogPath:      testPaths.RuntimeLog,
			Limits: engine.ResourceLimit{
				WallTimeMs: int64(limits.TimeLimitSeconds) * 1000,
				MemoryMB:   int64(limits.MemoryLimitMB),
				PIDs:       int64(limits.PIDsLimit),
			},
		})
		if runErr != nil {
			return s.internalError(result, runErr), nil
		}

		testResult, classifyErr := classify(tc, runOutcome, testPaths.OutputPath, testPaths.ExpectedPath)
		nonFatal = multierr.Append(nonFatal, classifyErr)
		if testResult.Status != Accepted {
			allAccepted = false
		}
		if testResult.TimeMs > result.MaxTimeMs {
			result.MaxTimeMs = testResult.TimeMs
		}
		if testResult.MemoryKB > result.MaxMemoryKB {
			result.MaxMemoryKB = testResult.MemoryKB
		}
		result.Tests = append(result.Tests, testResult)
	}

	if allAccepted {
		result.OverallStatus = OverallAccepted
	} else {
		result.OverallStatus = OverallPartialAccepted
	}
	return result, nil
}

// classify turns a raw RunOutcome into a TestResult, applying the
// timeout-before-runtime-error-before-output-overrun-before-comparison
// priority order so a crashed or runaway test is never reclassified as a
// wrong answer.
func classify(tc TestCase, outcome runner.RunOutcome, outputPath, expectedPath string) (TestResult, error) {
	runtimeLog, logErr := readFileOrEmpty(outcome.LogPath)
	result := TestResult{
		TestID:     tc.ID,
		TimeMs:     outcome.TimeMs,
		MemoryKB:   outcome.MemoryKB,
		RuntimeLog: runtimeLog,
	}

	switch {
	case outcome.TimedOut:
		result.Status = TimeLimitExceeded
	case outcome.ExitCode != 0:
		result.Status = RuntimeError
	case outcome.OutputKB > outputSizeCeilingKB:
		result.Status = RuntimeError
		result.RuntimeLog += fmt.Sprintf("\nOutput limit exceeded: %d bytes", outcome.OutputKB*1024)
	case len(tc.ExpectedOutput) == 0:
		result.Status = Accepted
	case comparer.FilesEqual(outputPath, expectedPath):
		result.Status = Accepted
	default:
		result.Status = WrongAnswer
	}
	return result, logErr
}

func (s *Service) internalError(result EvaluationResult, cause error) EvaluationResult {
	result.OverallStatus = OverallInternalError
	result.CompileLog += fmt.Sprintf("[INTERNAL ERROR] %v", cause)
	return result
}

func readFileOrEmpty(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
