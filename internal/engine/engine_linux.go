//go:build linux

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"judgecore/pkg/logging"

	"go.uber.org/zap"
)

type linuxEngine struct {
	cfg       Config
	registry  map[string][]string
	registryM sync.Mutex
}

// NewEngine builds the Linux sandbox engine. Each Run spawns cfg.HelperPath
// (a small setuid-free init binary that applies seccomp-less namespace
// isolation and execs the target command) and feeds it the RunSpec as JSON
// on stdin, so no part of the command ever passes through a shell.
func NewEngine(cfg Config) (Engine, error) {
	return &linuxEngine{cfg: cfg.withDefaults(), registry: make(map[string][]string)}, nil
}

type initRequest struct {
	RunSpec  RunSpec
	EnableNs bool
}

func (e *linuxEngine) Run(ctx context.Context, spec RunSpec) (RunResult, error) {
	if err := validateRunSpec(spec); err != nil {
		return RunResult{}, err
	}

	var cgroup *cgroupHandle
	var err error
	if e.cfg.EnableCgroup {
		cgroup, err = newCgroupHandle(e.cfg.CgroupRoot, spec.SubmissionID, spec.TestID)
		if err != nil {
			return RunResult{}, fmt.Errorf("create cgroup: %w", err)
		}
		if err := cgroup.applyLimits(spec.Limits); err != nil {
			cgroup.cleanup()
			return RunResult{}, fmt.Errorf("apply cgroup limits: %w", err)
		}
		e.registerCgroup(spec.SubmissionID, cgroup.path)
	}
	defer func() {
		if e.cfg.EnableCgroup {
			e.unregisterCgroup(spec.SubmissionID, cgroup.path)
			cgroup.cleanup()
		}
	}()

	stdinPipe, err := jsonToPipe(initRequest{RunSpec: spec, EnableNs: e.cfg.EnableNamespaces})
	if err != nil {
		return RunResult{}, fmt.Errorf("encode init request: %w", err)
	}
	defer stdinPipe.Close()

	cmd := exec.CommandContext(ctx, e.cfg.HelperPath)
	cmd.SysProcAttr = buildSysProcAttr(spec.Isolation, e.cfg.EnableNamespaces)
	cmd.Stdin = stdinPipe

	var helperStderr bytes.Buffer
	cmd.Stderr = &helperStderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return RunResult{}, fmt.Errorf("start sandbox helper: %w", err)
	}

	if e.cfg.EnableCgroup {
		if err := cgroup.addProcess(cmd.Process.Pid); err != nil {
			logging.Warn(ctx, "add process to cgroup failed", zap.String("cgroup", cgroup.path), zap.Error(err))
		}
	}

	var timedOut atomic.Bool
	killCtx, cancelKill := context.WithCancel(ctx)
	defer cancelKill()

	done := make(chan struct{})
	go func() {
		wallLimit := durationFromMs(spec.Limits.WallTimeMs)
		var wallTimer <-chan time.Time
		if wallLimit > 0 {
			wallTimer = time.After(wallLimit)
		}
		select {
		case <-killCtx.Done():
			e.killProcessGroup(cmd.Process.Pid)
		case <-wallTimer:
			timedOut.Store(true)
			e.killProcessGroup(cmd.Process.Pid)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)

	if waitErr != nil && helperStderr.Len() > 0 {
		logging.Warn(ctx, "sandbox helper stderr", zap.String("stderr", helperStderr.String()))
	}

	wallTimeMs := time.Since(start).Milliseconds()
	stdoutHostPath := resolveHostPath(spec.StdoutPath, spec)
	stderrHostPath := resolveHostPath(spec.StderrPath, spec)
	usage, hasUsage := extractUsage(cmd.ProcessState)
	res := RunResult{
		ExitCode:   exitCodeFromErr(waitErr, cmd.ProcessState),
		TimedOut:   timedOut.Load(),
		TimeMs:     usage.cpuTimeMs,
		WallTimeMs: wallTimeMs,
		MemoryKB:   cgroup.memoryPeakKB(usage, hasUsage),
		OutputKB:   stdoutSizeKB(stdoutHostPath),
		Stdout:     readLimitedFile(stdoutHostPath, e.cfg.StdoutStderrMaxBytes),
		Stderr:     readLimitedFile(stderrHostPath, e.cfg.StdoutStderrMaxBytes),
		OomKilled:  cgroup.oomKilled(),
	}
	if res.TimedOut && res.ExitCode == 0 {
		res.ExitCode = -1
	}
	return res, nil
}

func exitCodeFromErr(err error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (e *linuxEngine) KillSubmission(ctx context.Context, submissionID string) error {
	if submissionID == "" {
		return fmt.Errorf("submission id is required")
	}
	for _, cgroupPath := range e.snapshotCgroups(submissionID) {
		if err := cgroupHandleFor(cgroupPath).kill(); err != nil {
			logging.Warn(ctx, "kill cgroup failed", zap.String("cgroup", cgroupPath), zap.Error(err))
		}
	}
	return nil
}

func (e *linuxEngine) registerCgroup(submissionID, cgroupPath string) {
	e.registryM.Lock()
	defer e.registryM.Unlock()
	e.registry[submissionID] = append(e.registry[submissionID], cgroupPath)
}

func (e *linuxEngine) unregisterCgroup(submissionID, cgroupPath string) {
	e.registryM.Lock()
	defer e.registryM.Unlock()
	paths := e.registry[submissionID]
	updated := paths[:0]
	for _, p := range paths {
		if p != cgroupPath {
			updated = append(updated, p)
		}
	}
	if len(updated) == 0 {
		delete(e.registry, submissionID)
		return
	}
	e.registry[submissionID] = updated
}

func (e *linuxEngine) snapshotCgroups(submissionID string) []string {
	e.registryM.Lock()
	defer e.registryM.Unlock()
	out := make([]string, len(e.registry[submissionID]))
	copy(out, e.registry[submissionID])
	return out
}

func (e *linuxEngine) killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

func validateRunSpec(spec RunSpec) error {
	if spec.SubmissionID == "" {
		return fmt.Errorf("submission id is required")
	}
	if spec.TestID == "" {
		return fmt.Errorf("test id is required")
	}
	if spec.WorkDir == "" {
		return fmt.Errorf("work dir is required")
	}
	if len(spec.Cmd) == 0 {
		return fmt.Errorf("command is required")
	}
	return nil
}

func jsonToPipe(req initRequest) (io.ReadCloser, error) {
	reader, writer := io.Pipe()
	go func() {
		err := json.NewEncoder(writer).Encode(req)
		_ = writer.CloseWithError(err)
	}()
	return reader, nil
}

func buildSysProcAttr(profile IsolationProfile, enableNamespaces bool) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{Setpgid: true, Pdeathsig: syscall.SIGKILL}
	if !enableNamespaces {
		return attr
	}

	cloneFlags := uintptr(syscall.CLONE_NEWNS | syscall.CLONE_NEWPID | syscall.CLONE_NEWUTS | syscall.CLONE_NEWIPC)
	if profile.DisableNetwork {
		cloneFlags |= syscall.CLONE_NEWNET
	}
	cloneFlags |= syscall.CLONE_NEWUSER

	attr.Cloneflags = cloneFlags
	attr.GidMappingsEnableSetgroups = false
	attr.UidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: os.Getuid(), Size: 1}}
	attr.GidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: os.Getgid(), Size: 1}}
	return attr
}
