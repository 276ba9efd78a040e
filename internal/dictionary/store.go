package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Dictionary maps a source string to its translation
type Dictionary map[string]string

// Locale is the collation used to order keys on save
var Locale = language.BrazilianPortuguese

// LoadError describes why an existing dictionary file could not be used
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load dictionary %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the dictionary at path. A missing, unreadable or malformed file
// yields an empty dictionary: the next run simply translates everything again.
func Load(path string) Dictionary {
	dict, err := load(path)
	if err != nil {
		return Dictionary{}
	}
	return dict
}

func load(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var dict Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if dict == nil {
		return nil, &LoadError{Path: path, Err: errors.New("not a JSON object")}
	}
	return dict, nil
}

// SortedKeys returns the keys of dict ordered by Brazilian Portuguese
// collation. Keys the collator treats as equal fall back to byte order.
func (d Dictionary) SortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}

	c := collate.New(Locale)
	slices.SortFunc(keys, func(a, b string) int {
		if n := c.CompareString(a, b); n != 0 {
			return n
		}
		return strings.Compare(a, b)
	})
	return keys
}

// Marshal renders dict as two-space indented JSON with collated keys
func (d Dictionary) Marshal() ([]byte, error) {
	if len(d) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	keys := d.SortedKeys()
	for i, k := range keys {
		key, err := encodeString(k)
		if err != nil {
			return nil, err
		}
		value, err := encodeString(d[k])
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", s, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Save replaces the file at path with the sorted dictionary. The content is
// written to a temporary file in the same directory and renamed into place.
func Save(path string, dict Dictionary) error {
	data, err := dict.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dictionary directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close dictionary: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set dictionary permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace dictionary: %w", err)
	}
	return nil
}
