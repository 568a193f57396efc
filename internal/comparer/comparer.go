// Package comparer implements the tolerant text comparison used to decide
// whether a submission's output matches the expected answer for a test
// case: trailing whitespace and line endings don't count, trailing blank
// lines don't count, everything else must match exactly.
package comparer

import (
	"bufio"
	"os"
	"strings"
)

// FilesEqual reports whether outputPath and expectedPath are equal under
// tolerant comparison. Either file failing to open counts as not equal,
// mirroring a submission that produced no readable output.
func FilesEqual(outputPath, expectedPath string) bool {
	outLines, outOK := readNormalizedLines(outputPath)
	expLines, expOK := readNormalizedLines(expectedPath)
	if !outOK || !expOK {
		return false
	}
	return linesEqual(outLines, expLines)
}

// Equal compares two in-memory strings using the same normalization rules
// as FilesEqual, for callers that already hold the content in memory.
func Equal(output, expected string) bool {
	return linesEqual(normalizeLines(output), normalizeLines(expected))
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func readNormalizedLines(path string) ([]string, bool) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, trimRight(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, false
	}
	return dropTrailingBlank(lines), true
}

func normalizeLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		lines = append(lines, trimRight(line))
	}
	return dropTrailingBlank(lines)
}

func dropTrailingBlank(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func trimRight(line string) string {
	return strings.TrimRight(line, " \t\r\n")
}
