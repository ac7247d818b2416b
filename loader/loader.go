package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPath is the corpus file used when none is configured.
const DefaultPath = "data/news_sample.txt"

// Load reads a corpus from r, one document per non-empty line.
// Surrounding whitespace is trimmed, blank lines are skipped, and
// document order follows line order.
func Load(r io.Reader) (docs []string, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		docs = append(docs, line)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: failed to read corpus: %w", err)
	}
	return docs, nil
}

// LoadFile reads a corpus from the UTF-8 text file at path.
func LoadFile(path string) (docs []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to open corpus file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
