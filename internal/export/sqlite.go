package export

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/maclinea/ledgerlingo/internal/dictionary"
)

// Table is the name of the table holding the translations
const Table = "translations"

// WriteSQLite stores dict in the database at dbPath, replacing any rows from
// a previous export. Rows are inserted in collation order and the position
// is kept in the sort_order column.
func WriteSQLite(dbPath string, dict dictionary.Dictionary) (int, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return 0, fmt.Errorf("failed to create tables: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + Table); err != nil {
		return 0, fmt.Errorf("failed to clear translations: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO " + Table + " (source, target, sort_order) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	keys := dict.SortedKeys()
	for i, key := range keys {
		if _, err := stmt.Exec(key, dict[key], i); err != nil {
			return 0, fmt.Errorf("failed to insert %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit translations: %w", err)
	}
	return len(keys), nil
}

// ReadSQLite loads the translations stored by WriteSQLite
func ReadSQLite(dbPath string) (dictionary.Dictionary, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT source, target FROM " + Table + " ORDER BY sort_order")
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	dict := dictionary.Dictionary{}
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		dict[source] = target
	}
	return dict, rows.Err()
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS ` + Table + ` (
			source text PRIMARY KEY,
			target text NOT NULL,
			sort_order integer NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_order ON ` + Table + ` (sort_order)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
