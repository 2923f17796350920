package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// GenerateValueFile writes numValues pseudo-random signed integers, one per
// line, to a file in a test-scoped temporary directory. Values repeat every
// few hundred lines so the file carries duplicates. The first line is a
// comment to exercise comment skipping.
func GenerateValueFile(t testing.TB, numValues int) string {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	pool := make([]int64, 256)
	for i := range pool {
		pool[i] = rng.Int63n(1<<20) - 1<<19
	}

	var content strings.Builder
	content.WriteString("# generated values\n")
	for i := 0; i < numValues; i++ {
		content.WriteString(strconv.FormatInt(pool[rng.Intn(len(pool))], 10))
		content.WriteByte('\n')
	}

	path := filepath.Join(t.TempDir(), "values.txt")
	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		t.Fatalf("Failed to write value file: %v", err)
	}
	return path
}

// WriteLines writes lines to name inside a test-scoped temporary directory
// and returns the full path.
func WriteLines(t testing.TB, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t testing.TB, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path)

	return path
}
