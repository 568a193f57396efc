package comparer_test

import (
	"os"
	"path/filepath"
	"testing"

	"judgecore/internal/comparer"

	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		name     string
		output   string
		expected string
		want     bool
	}{
		{"exact match", "3\n", "3\n", true},
		{"trailing whitespace ignored", "3 \t\n", "3\n", true},
		{"crlf ignored", "3\r\n4\r\n", "3\n4\n", true},
		{"trailing blank lines ignored", "3\n4\n\n\n", "3\n4\n", true},
		{"different content", "3\n", "4\n", false},
		{"different line count", "3\n4\n", "3\n", false},
		{"internal blank line matters", "3\n\n4\n", "3\n4\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, comparer.Equal(tc.output, tc.expected))
		})
	}
}

func TestFilesEqual(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "output.txt")
	expectedPath := filepath.Join(dir, "expected.txt")

	require.NoError(t, os.WriteFile(outputPath, []byte("42 \r\n"), 0o644))
	require.NoError(t, os.WriteFile(expectedPath, []byte("42\n"), 0o644))

	require.True(t, comparer.FilesEqual(outputPath, expectedPath))
}

func TestFilesEqualMissingFile(t *testing.T) {
	dir := t.TempDir()
	expectedPath := filepath.Join(dir, "expected.txt")
	require.NoError(t, os.WriteFile(expectedPath, []byte("42\n"), 0o644))

	require.False(t, comparer.FilesEqual(filepath.Join(dir, "missing.txt"), expectedPath))
}
