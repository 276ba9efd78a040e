// Package export writes a translation dictionary into a SQLite database for
// consumers that prefer SQL lookups over the JSON file.
package export
