package evaluation_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"judgecore/internal/engine"
	"judgecore/internal/engine/runner"
	"judgecore/internal/evaluation"

	"github.com/stretchr/testify/require"
)

type testBehavior struct {
	exitCode int
	timedOut bool
	timeMs   int64
	memoryKB int64
	stdout   string
	stderr   string
}

type fakeEngine struct {
	compileExitCode int
	compileStderr   string
	perTest         map[string]testBehavior
}

func (f *fakeEngine) Run(_ context.Context, spec engine.RunSpec) (engine.RunResult, error) {
	if spec.TestID == "compile" {
		writeMounted(spec, "compile.log", []byte(f.compileStderr))
		return engine.RunResult{ExitCode: f.compileExitCode}, nil
	}

	tb := f.perTest[spec.TestID]
	writeMounted(spec, "output.txt", []byte(tb.stdout))
	writeMounted(spec, "runtime.log", []byte(tb.stderr))
	return engine.RunResult{
		ExitCode: tb.exitCode,
		TimedOut: tb.timedOut,
		TimeMs:   tb.timeMs,
		MemoryKB: tb.memoryKB,
		OutputKB: int64(len(tb.stdout)) / 1024,
	}, nil
}

func (f *fakeEngine) KillSubmission(_ context.Context, _ string) error { return nil }

func writeMounted(spec engine.RunSpec, suffix string, content []byte) {
	for _, m := range spec.BindMounts {
		if strings.HasSuffix(m.Target, suffix) {
			_ = os.WriteFile(m.Source, content, 0o644)
			return
		}
	}
	// compile.log has no dedicated mount; it lives directly in the
	// work-dir mount.
	for _, m := range spec.BindMounts {
		if m.Target == spec.WorkDir {
			_ = os.WriteFile(filepath.Join(m.Source, suffix), content, 0o644)
			return
		}
	}
}

func newService(t *testing.T, eng engine.Engine) *evaluation.Service {
	t.Helper()
	return evaluation.NewService(runner.NewRunner(eng), t.TempDir())
}

func TestEvaluateAcceptedAll(t *testing.T) {
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"1": {stdout: "8\n"},
		"2": {stdout: "8\n"},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-1",
		SourceCode:   "int main(){}",
		TestCases: []evaluation.TestCase{
			{ID: "1", Input: []byte("3 5\n"), ExpectedOutput: []byte("8\n")},
			{ID: "2", Input: []byte("-2 10\n"), ExpectedOutput: []byte("8\n")},
		},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.OverallAccepted, res.OverallStatus)
	require.Len(t, res.Tests, 2)
	require.Equal(t, evaluation.Accepted, res.Tests[0].Status)
	require.Equal(t, evaluation.Accepted, res.Tests[1].Status)
}

func TestEvaluateWrongAnswerOne(t *testing.T) {
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"1": {stdout: "8\n"},
		"2": {stdout: "8\n"},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-2",
		SourceCode:   "int main(){}",
		TestCases: []evaluation.TestCase{
			{ID: "1", Input: []byte("3 5\n"), ExpectedOutput: []byte("8\n")},
			{ID: "2", Input: []byte("-2 10\n"), ExpectedOutput: []byte("9\n")},
		},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.OverallPartialAccepted, res.OverallStatus)
	require.Equal(t, evaluation.Accepted, res.Tests[0].Status)
	require.Equal(t, evaluation.WrongAnswer, res.Tests[1].Status)
}

func TestEvaluateCompileError(t *testing.T) {
	eng := &fakeEngine{compileExitCode: 1, compileStderr: "main.cpp:1:20: error: expected ';'"}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-3",
		SourceCode:   "int main() { return",
		TestCases:    []evaluation.TestCase{{ID: "1", Input: []byte("1\n"), ExpectedOutput: []byte("1\n")}},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.OverallCompilationError, res.OverallStatus)
	require.Empty(t, res.Tests)
	require.NotEmpty(t, res.CompileLog)
}

func TestEvaluateTimeLimitExceeded(t *testing.T) {
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"1": {timedOut: true, timeMs: 1000},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-4",
		SourceCode:   "int main(){for(;;);}",
		TimeLimitMs:  1000,
		TestCases:    []evaluation.TestCase{{ID: "1", Input: []byte(""), ExpectedOutput: []byte("x\n")}},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.TimeLimitExceeded, res.Tests[0].Status)
	require.EqualValues(t, 1000, res.Tests[0].TimeMs)
}

func TestEvaluateRuntimeError(t *testing.T) {
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"1": {exitCode: 136, stderr: "Floating point exception"},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-5",
		SourceCode:   "int main(){return 1/0;}",
		TestCases:    []evaluation.TestCase{{ID: "1", Input: []byte("0\n"), ExpectedOutput: []byte("1\n")}},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.RuntimeError, res.Tests[0].Status)
	require.NotEmpty(t, res.Tests[0].RuntimeLog)
}

func TestEvaluateWhitespaceTolerantAccept(t *testing.T) {
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"1": {stdout: "hello \r\n\n"},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-6",
		SourceCode:   "int main(){}",
		TestCases:    []evaluation.TestCase{{ID: "1", Input: []byte(""), ExpectedOutput: []byte("hello\n")}},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.Accepted, res.Tests[0].Status)
}

func TestEvaluateScratchRunAccepted(t *testing.T) {
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"1": {stdout: "whatever comes out\n"},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-7",
		SourceCode:   "int main(){}",
		TestCases:    []evaluation.TestCase{{ID: "1", Input: []byte("1\n")}},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.OverallAccepted, res.OverallStatus)
	require.Equal(t, evaluation.Accepted, res.Tests[0].Status)
}

func TestEvaluateOutputOverrunIsRuntimeErrorNotWrongAnswer(t *testing.T) {
	big := strings.Repeat("a", 2*1024*1024)
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"1": {stdout: big},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-8",
		SourceCode:   "int main(){}",
		TestCases:    []evaluation.TestCase{{ID: "1", Input: []byte(""), ExpectedOutput: []byte("a\n")}},
	})

	require.NoError(t, err)
	require.Equal(t, evaluation.RuntimeError, res.Tests[0].Status)
	require.Contains(t, res.Tests[0].RuntimeLog, "Output limit exceeded")
}

func TestEvaluateTestsAppearInRequestOrder(t *testing.T) {
	eng := &fakeEngine{perTest: map[string]testBehavior{
		"a": {stdout: "1\n"},
		"b": {stdout: "1\n"},
		"c": {stdout: "1\n"},
	}}
	svc := newService(t, eng)

	res, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{
		SubmissionID: "sub-9",
		SourceCode:   "int main(){}",
		TestCases: []evaluation.TestCase{
			{ID: "a", ExpectedOutput: []byte("1\n")},
			{ID: "b", ExpectedOutput: []byte("1\n")},
			{ID: "c", ExpectedOutput: []byte("1\n")},
		},
	})

	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, []string{res.Tests[0].TestID, res.Tests[1].TestID, res.Tests[2].TestID})
}

func TestEvaluateRequiresSubmissionID(t *testing.T) {
	svc := newService(t, &fakeEngine{})
	_, err := svc.Evaluate(context.Background(), evaluation.SubmissionRequest{SourceCode: "x"})
	require.Error(t, err)
}
