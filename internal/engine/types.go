// Package engine runs a single compile or run step inside an isolated
// sandbox: a Linux namespace + cgroup jail on linux, and a stub that
// refuses to run anywhere else.
package engine

// ResourceLimit bounds a single sandboxed invocation.
type ResourceLimit struct {
	CPUTimeMs  int64
	WallTimeMs int64
	MemoryMB   int64
	OutputMB   int64
	PIDs       int64
}

// MountSpec binds a host directory into the sandbox.
type MountSpec struct {
	Source   string
	Target   string
	ReadOnly bool
}

// IsolationProfile controls which namespaces and filesystem the sandbox
// grants a process.
type IsolationProfile struct {
	DisableNetwork bool
}

// RunSpec is everything the engine needs to execute one process.
type RunSpec struct {
	SubmissionID string
	TestID       string
	WorkDir      string
	Cmd          []string
	Env          []string
	StdinPath    string
	StdoutPath   string
	StderrPath   string
	BindMounts   []MountSpec
	Isolation    IsolationProfile
	Limits       ResourceLimit
}

// RunResult is the raw outcome of one sandboxed invocation; verdict
// classification happens one layer up, not here.
type RunResult struct {
	ExitCode   int
	TimedOut   bool
	TimeMs     int64
	WallTimeMs int64
	MemoryKB   int64
	OutputKB   int64
	OomKilled  bool
	Stdout     string
	Stderr     string
}
