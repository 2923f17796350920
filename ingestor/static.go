package ingestor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxLineSize = 16 * 1024 * 1024

// ParseValueFile reads whitespace-separated values of type t from path.
// Blank lines and lines starting with '#' are ignored. The column is named
// after the file.
func ParseValueFile(path string, t ElementType) (*Column, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	col, err := ParseValues(f, filepath.Base(path), t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return col, nil
}

// ParseValues reads whitespace-separated values of type t from r. The first
// malformed token aborts parsing with its line and column in the error.
func ParseValues(r io.Reader, name string, t ElementType) (*Column, error) {
	col, err := NewColumn(name, t, 0)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		for i, tok := range strings.Fields(line) {
			if err := col.AppendToken(tok); err != nil {
				return nil, fmt.Errorf("line %d, value %d: invalid %v %q: %w", lineNo, i+1, t, tok, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return col, nil
}
