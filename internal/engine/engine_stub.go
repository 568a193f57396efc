//go:build !linux

package engine

import (
	"context"
	"fmt"
)

type stubEngine struct{}

// NewEngine on non-Linux platforms refuses to run anything: namespace and
// cgroup isolation are Linux-only, and there is no safe way to degrade.
func NewEngine(cfg Config) (Engine, error) {
	return &stubEngine{}, nil
}

func (s *stubEngine) Run(ctx context.Context, spec RunSpec) (RunResult, error) {
	return RunResult{}, fmt.Errorf("sandbox engine is only supported on linux")
}

func (s *stubEngine) KillSubmission(ctx context.Context, submissionID string) error {
	return fmt.Errorf("sandbox engine is only supported on linux")
}
