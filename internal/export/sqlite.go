package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var unsafeIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

func quoteIdent(s string) string {
	s = unsafeIdent.ReplaceAllString(s, "_")
	if s == "" {
		s = "_"
	}
	return `"` + s + `"`
}

func openSQLite(path string) (*sqlx.DB, error) {
	// the modernc driver registers as "sqlite"
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// writeSQLite replaces the file with a single table named after t.Name.
// Columns are untyped so each value keeps its own storage class.
func writeSQLite(path string, t Table) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	name := t.Name
	if name == "" {
		name = "data"
	}
	cols := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h)
		marks[i] = "?"
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	stmt, err := tx.Preparex(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(name), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.Header))
	for i, row := range t.Rows {
		for j := range args {
			args[j] = nil
			if j < len(row) {
				args[j] = row[j]
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// readSQLite reads the first table in the file.
func readSQLite(path string) (Table, error) {
	if _, err := os.Stat(path); err != nil {
		return Table{}, err
	}
	db, err := openSQLite(path)
	if err != nil {
		return Table{}, err
	}
	defer db.Close()

	var name string
	if err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY rowid LIMIT 1"); err != nil {
		return Table{}, fmt.Errorf("find table: %w", err)
	}
	rows, err := db.Queryx(fmt.Sprintf("SELECT * FROM %s", quoteIdent(name)))
	if err != nil {
		return Table{}, err
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return Table{}, err
	}
	t := Table{Name: name, Header: header}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return Table{}, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, rows.Err()
}
