// Package ledger reads semicolon-delimited bank ledger exports and extracts
// the category names and descriptions that need translating.
package ledger
