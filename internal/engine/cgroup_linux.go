//go:build linux

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// cgroupHandle owns the lifecycle of one cgroup v2 directory created for
// a single sandboxed run: creation, limit application, process admission,
// usage readback and teardown all hang off the same path, so callers
// never juggle a bare path string plus a separately-threaded cleanup
// closure the way a free-function API would require.
type cgroupHandle struct {
	path string
}

func newCgroupHandle(root, submissionID, testID string) (*cgroupHandle, error) {
	if root == "" {
		return nil, fmt.Errorf("cgroup root is required")
	}
	runDir := fmt.Sprintf("%s-%d", testID, time.Now().UnixNano())
	path := filepath.Join(root, submissionID, runDir)
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create cgroup path: %w", err)
	}
	return &cgroupHandle{path: path}, nil
}

// cgroupHandleFor reattaches to a cgroup directory created earlier by
// newCgroupHandle, for code paths (like KillSubmission) that only have
// the path on hand, e.g. from the submission's cgroup registry.
func cgroupHandleFor(path string) *cgroupHandle {
	return &cgroupHandle{path: path}
}

func (h *cgroupHandle) applyLimits(limits ResourceLimit) error {
	pidsValue := "max"
	if limits.PIDs > 0 {
		pidsValue = strconv.FormatInt(limits.PIDs, 10)
	}
	if err := h.write("pids.max", pidsValue); err != nil {
		return err
	}
	if limits.MemoryMB > 0 {
		if err := h.write("memory.max", strconv.FormatInt(limits.MemoryMB*1024*1024, 10)); err != nil {
			return err
		}
		// Swap would let a submission exceed MemoryMB without ever
		// tripping the OOM killer this engine relies on for
		// RuntimeError classification, so disable it whenever a memory
		// cap applies. On kernels without swap accounting the file does
		// not exist; that write error is ignored.
		_ = h.write("memory.swap.max", "0")
	}
	// One full CPU: a 100ms quota in every 100ms period.
	return h.write("cpu.max", "100000 100000")
}

func (h *cgroupHandle) addProcess(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid")
	}
	return h.write("cgroup.procs", strconv.Itoa(pid))
}

func (h *cgroupHandle) kill() error {
	killPath := filepath.Join(h.path, "cgroup.kill")
	if _, err := os.Stat(killPath); err != nil {
		return err
	}
	return os.WriteFile(killPath, []byte("1"), 0o600)
}

func (h *cgroupHandle) oomKilled() bool {
	if h == nil || h.path == "" {
		return false
	}
	data, err := os.ReadFile(filepath.Join(h.path, "memory.events"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "oom_kill" {
			val, _ := strconv.ParseInt(fields[1], 10, 64)
			return val > 0
		}
	}
	return false
}

// memoryPeakKB prefers the cgroup's own accounting (memory.peak), since
// it reflects everything the run spawned rather than just the directly
// exec'd process, and falls back to the exec'd process's own rusage when
// cgroups are disabled or the kernel lacks memory.peak.
func (h *cgroupHandle) memoryPeakKB(usage processUsage, hasUsage bool) int64 {
	if h != nil && h.path != "" {
		if val, err := h.readInt("memory.peak"); err == nil && val > 0 {
			return val / 1024
		}
	}
	if !hasUsage {
		return 0
	}
	return usage.maxRSSKB
}

func (h *cgroupHandle) readInt(name string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(h.path, name))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

func (h *cgroupHandle) write(name, value string) error {
	return os.WriteFile(filepath.Join(h.path, name), []byte(value), 0o640)
}

func (h *cgroupHandle) cleanup() {
	if h == nil || h.path == "" {
		return
	}
	_ = os.RemoveAll(h.path)
}
