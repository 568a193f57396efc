//go:build linux

package engine

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

func durationFromMs(ms int64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// processUsage is the subset of a finished process's rusage this engine
// reports back: CPU time (user plus system), reported as RunResult.TimeMs,
// and the peak resident set size used as a memory fallback when cgroup
// accounting isn't available. Extracting both from one type assertion
// means Run only has to assert on *syscall.Rusage once per test.
type processUsage struct {
	cpuTimeMs int64
	maxRSSKB  int64
}

func extractUsage(state *os.ProcessState) (processUsage, bool) {
	if state == nil {
		return processUsage{}, false
	}
	raw, ok := state.SysUsage().(*syscall.Rusage)
	if !ok {
		return processUsage{}, false
	}
	utime := time.Duration(raw.Utime.Sec)*time.Second + time.Duration(raw.Utime.Usec)*time.Microsecond
	stime := time.Duration(raw.Stime.Sec)*time.Second + time.Duration(raw.Stime.Usec)*time.Microsecond
	return processUsage{
		cpuTimeMs: (utime + stime).Milliseconds(),
		maxRSSKB:  raw.Maxrss,
	}, true
}

func stdoutSizeKB(path string) int64 {
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size() / 1024
}

func readLimitedFile(path string, maxBytes int64) string {
	if path == "" || maxBytes <= 0 {
		return ""
	}
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		return ""
	}
	return string(data)
}

// resolveHostPath translates a container-visible path (e.g. /work/output.txt)
// back to the host path it is bind-mounted from, since the namespace jail
// means the host process can't read the container path directly.
func resolveHostPath(path string, spec RunSpec) string {
	if path == "" {
		return ""
	}
	clean := filepath.Clean(path)
	longest, source := "", ""
	for _, mount := range spec.BindMounts {
		if mount.Target == "" || mount.Source == "" {
			continue
		}
		target := filepath.Clean(mount.Target)
		if !strings.HasPrefix(clean, target) {
			continue
		}
		if len(target) > len(longest) {
			longest, source = target, mount.Source
		}
	}
	if source == "" {
		return path
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(clean, longest), string(os.PathSeparator))
	return filepath.Join(source, rel)
}
