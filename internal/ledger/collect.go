package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Collect returns every unique category name and description found in r.
// Strings are returned in the order they were first seen. Lines that are
// not valid UTF-8 are decoded as Windows-1252.
func Collect(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var uniques []string

	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		uniques = append(uniques, s)
	}

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}

		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if rec, ok := ParseRecord(toUTF8(line)); ok {
				add(rec.Category)
				add(rec.Description)
			}
		}

		if err != nil {
			break
		}
	}

	return uniques, nil
}

// CollectFile opens the ledger at path and collects its unique strings
func CollectFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	return Collect(f)
}
