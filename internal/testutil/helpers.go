package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// LedgerRow builds an 11-field ledger row with the given category and
// description columns
func LedgerRow(category, description string) string {
	fields := []string{
		"02/01/2024", "BRADESCO", "0001", "12345-6", "C", "1.500,00",
		"", "", "", category, description,
	}
	return strings.Join(fields, ";")
}

// WriteLedger writes rows as a ledger file inside dir and returns its path
func WriteLedger(t *testing.T, dir string, rows []string) string {
	t.Helper()

	path := filepath.Join(dir, "movimentos.csv")
	CreateTestFile(t, path, []byte(strings.Join(rows, "\n")+"\n"))
	return path
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
