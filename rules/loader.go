package rules

import (
	"bufio"
	"bytes"
	"io/fs"
	"strings"

	"safespace/errors"
)

// loadVocabulary reads one embedded dictionary, one term per line.
// Blank lines and '#' comments are skipped; duplicates are dropped while
// preserving file order so automaton construction stays deterministic.
func loadVocabulary(fsys fs.FS, path string) ([]string, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var terms []string

	// A scanner handles both \n and \r\n line endings correctly.
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(terms) == 0 {
		return nil, errors.ErrEmptyVocabulary
	}
	return terms, nil
}
