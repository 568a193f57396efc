// Package runner turns a submission's workspace into the two sandboxed
// invocations the evaluation service needs: one compile, and one run per
// test case. It never interprets exit codes as verdicts — that
// classification belongs to the caller, which has the expected output to
// compare against.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"judgecore/internal/engine"
	"judgecore/pkg/apperr"

	"github.com/google/shlex"
)

const (
	containerWorkDir    = "/work"
	sourceFileName      = "main.cpp"
	binaryFileName      = "main"
	containerCompileLog = "compile.log"

	compileCmdTpl = "g++ {src} -O2 -std=c++17 -o {bin}"
	runCmdTpl     = "{bin}"

	// anti fork-bomb default applied to every run regardless of request;
	// CPU share itself is fixed at one core by the cgroup's cpu.max quota.
	defaultPIDsLimit = 64
)

// CompileOutcome is the result of compiling a submission's source once.
type CompileOutcome struct {
	ExitCode int
	LogPath  string
}

// RunOutcome is the raw result of running the compiled binary against one
// test case's input.
type RunOutcome struct {
	ExitCode   int
	TimedOut   bool
	TimeMs     int64
	MemoryKB   int64
	OutputKB   int64
	OomKilled  bool
	StdoutPath string
	LogPath    string
}

// CompileRequest names where the source lives and where compilation should
// run. WorkDir must already contain the submission's source file (main.cpp).
type CompileRequest struct {
	SubmissionID string
	WorkDir      string // host directory containing SourcePath; bound into the sandbox at /work
	LogPath      string // host path compiler stderr is captured to; defaults to WorkDir/compile.log
	Limits       engine.ResourceLimit
}

// RunRequest names one test case's input/output/log locations on the host.
type RunRequest struct {
	SubmissionID string
	TestID       string
	WorkDir      string // same host directory the binary was compiled into
	InputPath    string // host path to the test's input file
	OutputPath   string // host path the sandboxed process's stdout is captured to
	LogPath      string // host path the sandboxed process's stderr is captured to
	Limits       engine.ResourceLimit
}

// Runner compiles and runs submissions through an engine.Engine.
type Runner struct {
	eng engine.Engine
}

// NewRunner builds a Runner backed by eng.
func NewRunner(eng engine.Engine) *Runner {
	return &Runner{eng: eng}
}

// Compile builds the submission's source file, already written at
// filepath.Join(req.WorkDir, "main.cpp") by the workspace, into a binary
// at the same directory.
func (r *Runner) Compile(ctx context.Context, req CompileRequest) (CompileOutcome, error) {
	if req.SubmissionID == "" {
		return CompileOutcome{}, apperr.ValidationError("submission_id", "required")
	}
	if req.WorkDir == "" {
		return CompileOutcome{}, apperr.ValidationError("work_dir", "required")
	}

	cmd, err := buildCommand(compileCmdTpl)
	if err != nil {
		return CompileOutcome{}, err
	}

	defaultLogPath := filepath.Join(req.WorkDir, containerCompileLog)
	logPath := req.LogPath
	if logPath == "" {
		logPath = defaultLogPath
	}
	mounts := []engine.MountSpec{
		{Source: req.WorkDir, Target: containerWorkDir},
	}
	// A log path other than the default is bound over the container's
	// compile.log so compiler stderr lands where the caller asked.
	if filepath.Clean(logPath) != defaultLogPath {
		if err := touchFile(logPath); err != nil {
			return CompileOutcome{}, apperr.Wrapf(err, apperr.SandboxStartFailed, "prepare compile log file: %v", err)
		}
		mounts = append(mounts, engine.MountSpec{Source: logPath, Target: filepath.Join(containerWorkDir, containerCompileLog)})
	}

	spec := engine.RunSpec{
		SubmissionID: req.SubmissionID,
		TestID:       "compile",
		WorkDir:      containerWorkDir,
		Cmd:          cmd,
		StderrPath:   filepath.Join(containerWorkDir, containerCompileLog),
		Limits:       withAntiForkBomb(req.Limits),
		Isolation:    engine.IsolationProfile{DisableNetwork: true},
		BindMounts:   mounts,
	}

	runRes, err := r.eng.Run(ctx, spec)
	if err != nil {
		return CompileOutcome{}, apperr.Wrapf(err, apperr.SandboxStartFailed, "run compile sandbox: %v", err)
	}
	return CompileOutcome{ExitCode: runRes.ExitCode, LogPath: logPath}, nil
}

// Run executes the compiled binary against one test case's input.
func (r *Runner) Run(ctx context.Context, req RunRequest) (RunOutcome, error) {
	if req.SubmissionID == "" {
		return RunOutcome{}, apperr.ValidationError("submission_id", "required")
	}
	if req.TestID == "" {
		return RunOutcome{}, apperr.ValidationError("test_id", "required")
	}
	if req.InputPath == "" {
		return RunOutcome{}, apperr.ValidationError("input_path", "required")
	}

	cmd, err := buildCommand(runCmdTpl)
	if err != nil {
		return RunOutcome{}, err
	}

	const containerInput = "input.txt"
	const containerOutput = "output.txt"
	const containerLog = "runtime.log"

	// Bind mounts require their source to already exist; output.txt and
	// runtime.log are touched empty on the host so the sandbox can write
	// through them without clobbering another test's files under the
	// same submission work dir.
	if req.OutputPath != "" {
		if err := touchFile(req.OutputPath); err != nil {
			return RunOutcome{}, apperr.Wrapf(err, apperr.SandboxStartFailed, "prepare output file: %v", err)
		}
	}
	if req.LogPath != "" {
		if err := touchFile(req.LogPath); err != nil {
			return RunOutcome{}, apperr.Wrapf(err, apperr.SandboxStartFailed, "prepare runtime log file: %v", err)
		}
	}

	spec := engine.RunSpec{
		SubmissionID: req.SubmissionID,
		TestID:       req.TestID,
		WorkDir:      containerWorkDir,
		Cmd:          cmd,
		StdinPath:    filepath.Join(containerWorkDir, containerInput),
		StdoutPath:   filepath.Join(containerWorkDir, containerOutput),
		StderrPath:   filepath.Join(containerWorkDir, containerLog),
		Limits:       withAntiForkBomb(req.Limits),
		Isolation:    engine.IsolationProfile{DisableNetwork: true},
		BindMounts: []engine.MountSpec{
			{Source: req.WorkDir, Target: containerWorkDir},
			{Source: req.InputPath, Target: filepath.Join(containerWorkDir, containerInput), ReadOnly: true},
			{Source: req.OutputPath, Target: filepath.Join(containerWorkDir, containerOutput)},
			{Source: req.LogPath, Target: filepath.Join(containerWorkDir, containerLog)},
		},
	}

	runRes, err := r.eng.Run(ctx, spec)
	if err != nil {
		return RunOutcome{}, apperr.Wrapf(err, apperr.SandboxStartFailed, "run test sandbox: %v", err)
	}

	return RunOutcome{
		ExitCode:   runRes.ExitCode,
		TimedOut:   runRes.TimedOut,
		TimeMs:     runRes.TimeMs,
		MemoryKB:   runRes.MemoryKB,
		OutputKB:   runRes.OutputKB,
		OomKilled:  runRes.OomKilled,
		StdoutPath: req.OutputPath,
		LogPath:    req.LogPath,
	}, nil
}

func touchFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return file.Close()
}

func withAntiForkBomb(limits engine.ResourceLimit) engine.ResourceLimit {
	if limits.PIDs <= 0 {
		limits.PIDs = defaultPIDsLimit
	}
	return limits
}

func buildCommand(tpl string) ([]string, error) {
	expanded := strings.ReplaceAll(tpl, "{src}", filepath.Join(containerWorkDir, sourceFileName))
	expanded = strings.ReplaceAll(expanded, "{bin}", filepath.Join(containerWorkDir, binaryFileName))
	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.ValidationFailed, "parse command template: %v", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("command is empty after expansion")
	}
	return fields, nil
}
