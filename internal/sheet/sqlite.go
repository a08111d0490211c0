package sheet

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the five-table layout in a local SQLite file. It serves
// offline previews and tests; the remote spreadsheet stays the system of
// record.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at path and creates
// any missing tables.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	for _, t := range SyncOrder {
		if _, err := db.Exec(createTableDDL(t)); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating table %s: %w", t.Name, err)
		}
	}
	return s, nil
}

// createTableDDL generates the CREATE TABLE statement for a table. Column
// names carry spaces (they mirror the sheet headers) so every identifier is
// quoted.
func createTableDDL(t Table) string {
	cols := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		cols = append(cols, fmt.Sprintf("%s TEXT NOT NULL DEFAULT ''", quoteIdent(c)))
	}
	cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", quotedList(t.KeyColumns)))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quoteIdent(t.Name),
		strings.Join(cols, ",\n  "))
}

// ReadTable implements Store.
func (s *SQLiteStore) ReadTable(ctx context.Context, t Table) (map[string]Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", quotedList(t.Columns), quoteIdent(t.Name))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", t.Name, err)
	}
	defer rows.Close()

	out := make(map[string]Row)
	values := make([]sql.NullString, len(t.Columns))
	ptrs := make([]any, len(t.Columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", t.Name, err)
		}
		row := make(Row, len(t.Columns))
		for i, c := range t.Columns {
			row[c] = values[i].String
		}
		out[t.KeyOf(row)] = row
	}
	return out, rows.Err()
}

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, t Table, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name), quotedList(t.Columns), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rows {
		args := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			args[i] = r[c]
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, t Table, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	var sets, wheres []string
	for _, c := range t.Columns {
		if !contains(t.KeyColumns, c) {
			sets = append(sets, quoteIdent(c)+" = ?")
		}
	}
	for _, c := range t.KeyColumns {
		wheres = append(wheres, quoteIdent(c)+" = ?")
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quoteIdent(t.Name), strings.Join(sets, ", "), strings.Join(wheres, " AND "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rows {
		var args []any
		for _, c := range t.Columns {
			if !contains(t.KeyColumns, c) {
				args = append(args, r[c])
			}
		}
		for _, c := range t.KeyColumns {
			args = append(args, r[c])
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("updating %s: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quotedList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
