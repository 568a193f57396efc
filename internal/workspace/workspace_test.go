package workspace_test

import (
	"os"
	"testing"

	"judgecore/internal/workspace"

	"github.com/stretchr/testify/require"
)

func TestNewWritesSourceFile(t *testing.T) {
	base := t.TempDir()
	ws, err := workspace.New(base, "sub-1", "int main(){return 0;}")
	require.NoError(t, err)
	require.Equal(t, "sub-1", ws.SubmissionID)

	data, err := os.ReadFile(ws.SourcePath)
	require.NoError(t, err)
	require.Equal(t, "int main(){return 0;}", string(data))
}

func TestNewGeneratesIDWhenEmpty(t *testing.T) {
	ws, err := workspace.New(t.TempDir(), "", "source")
	require.NoError(t, err)
	require.NotEmpty(t, ws.SubmissionID)
}

func TestTestWritesInputAndExpectedFiles(t *testing.T) {
	ws, err := workspace.New(t.TempDir(), "sub-2", "source")
	require.NoError(t, err)

	paths, err := ws.Test("t1", []byte("1 2\n"), []byte("3\n"))
	require.NoError(t, err)

	input, err := os.ReadFile(paths.InputPath)
	require.NoError(t, err)
	require.Equal(t, "1 2\n", string(input))

	expected, err := os.ReadFile(paths.ExpectedPath)
	require.NoError(t, err)
	require.Equal(t, "3\n", string(expected))

	require.Contains(t, paths.OutputPath, "output_t1.txt")
	require.Contains(t, paths.RuntimeLog, "runtime_t1.log")
}

func TestCleanupRemovesDirectory(t *testing.T) {
	ws, err := workspace.New(t.TempDir(), "sub-3", "source")
	require.NoError(t, err)

	require.NoError(t, ws.Cleanup())
	_, statErr := os.Stat(ws.RootDir)
	require.True(t, os.IsNotExist(statErr))
}
