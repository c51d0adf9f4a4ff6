// Package export writes and reads tables as xlsx, csv or sqlite files. The
// format follows the file extension.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path builds dir/sub/{ticker}_{stem}.{format}.
func Path(dir, sub, ticker, stem, format string) string {
	return filepath.Join(dir, sub, fmt.Sprintf("%s_%s.%s", ticker, stem, strings.TrimPrefix(format, ".")))
}

func ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// WriteFile creates parent directories and writes t, replacing any existing file.
func WriteFile(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	var err error
	switch ext(path) {
	case "xlsx":
		err = writeXLSX(path, t)
	case "csv":
		err = writeCSV(path, t)
	case "db", "sqlite":
		err = writeSQLite(path, t)
	default:
		return fmt.Errorf("export %s: unsupported format %q", path, ext(path))
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a table written by WriteFile. Empty cells come back as nil.
func ReadFile(path string) (Table, error) {
	var (
		t   Table
		err error
	)
	switch ext(path) {
	case "xlsx":
		t, err = readXLSX(path)
	case "csv":
		t, err = readCSV(path)
	case "db", "sqlite":
		t, err = readSQLite(path)
	default:
		return Table{}, fmt.Errorf("read %s: unsupported format %q", path, ext(path))
	}
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// textCells converts string rows, padding short rows and mapping "" to nil.
func textCells(header []string, records [][]string) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		row := make([]interface{}, len(header))
		for i := range row {
			if i < len(rec) && rec[i] != "" {
				row[i] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
