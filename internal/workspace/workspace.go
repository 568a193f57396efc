// Package workspace materializes a submission's source file and per-test
// input/expected files on disk, and names the paths the sandbox runner
// and comparer read and write to. Every submission gets its own directory
// under the configured root; the caller is responsible for removing it
// once evaluation finishes.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"judgecore/pkg/apperr"

	"github.com/google/uuid"
)

const (
	sourceFileName = "main.cpp"
	dirPerm        = 0o755
	filePerm       = 0o644
)

// Workspace is the materialized on-disk layout for one submission.
type Workspace struct {
	RootDir      string
	SubmissionID string
	SourcePath   string
}

// TestPaths names the per-test-case files inside a Workspace.
type TestPaths struct {
	InputPath    string
	ExpectedPath string
	OutputPath   string
	RuntimeLog   string
}

// New creates the submission's root directory and writes its source file.
// When submissionID is empty (a scratch run with no stable identity) a
// fresh one is generated so the directory name stays unique.
func New(baseDir, submissionID, sourceCode string) (*Workspace, error) {
	if submissionID == "" {
		submissionID = uuid.NewString()
	}
	dir := filepath.Join(baseDir, submissionID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, apperr.Wrapf(err, apperr.WorkspaceCreateFailed, "create submission directory: %v", err)
	}

	sourcePath := filepath.Join(dir, sourceFileName)
	if err := os.WriteFile(sourcePath, []byte(sourceCode), filePerm); err != nil {
		_ = os.RemoveAll(dir)
		return nil, apperr.Wrapf(err, apperr.WorkspaceWriteFailed, "write source file: %v", err)
	}

	return &Workspace{RootDir: dir, SubmissionID: submissionID, SourcePath: sourcePath}, nil
}

// Test writes input_<id>.txt and expected_<id>.txt and returns the full
// set of paths the runner and comparer need for that test case.
func (w *Workspace) Test(testID string, input, expectedOutput []byte) (TestPaths, error) {
	inputPath := filepath.Join(w.RootDir, fmt.Sprintf("input_%s.txt", testID))
	if err := os.WriteFile(inputPath, input, filePerm); err != nil {
		return TestPaths{}, apperr.Wrapf(err, apperr.WorkspaceWriteFailed, "write input file: %v", err)
	}

	expectedPath := filepath.Join(w.RootDir, fmt.Sprintf("expected_%s.txt", testID))
	if err := os.WriteFile(expectedPath, expectedOutput, filePerm); err != nil {
		return TestPaths{}, apperr.Wrapf(err, apperr.WorkspaceWriteFailed, "write expected output file: %v", err)
	}

	return TestPaths{
		InputPath:    inputPath,
		ExpectedPath: expectedPath,
		OutputPath:   filepath.Join(w.RootDir, fmt.Sprintf("output_%s.txt", testID)),
		RuntimeLog:   filepath.Join(w.RootDir, fmt.Sprintf("runtime_%s.log", testID)),
	}, nil
}

// CompileLogPath is where the runner writes compiler stderr.
func (w *Workspace) CompileLogPath() string {
	return filepath.Join(w.RootDir, "compile.log")
}

// Cleanup removes the entire submission directory.
func (w *Workspace) Cleanup() error {
	if err := os.RemoveAll(w.RootDir); err != nil {
		return apperr.Wrapf(err, apperr.WorkspaceCleanupFailed, "remove submission directory: %v", err)
	}
	return nil
}
