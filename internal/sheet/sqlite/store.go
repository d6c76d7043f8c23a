// Package sqlite implements sheet.Store on top of a local SQLite database.
// Each table is a header record plus position-ordered rows whose cells are
// stored as a JSON array.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/knowledgeboard/knowledge-server/internal/sheet"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store is a sheet.Store backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// SQLite allows a single writer; serialize write transactions here rather
	// than relying on busy_timeout alone.
	mu sync.Mutex
}

var _ sheet.Store = (*Store)(nil)

// Open creates or opens the database at path, sets pragmas and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("sqlite table store opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureTable implements sheet.Store.
func (s *Store) EnsureTable(ctx context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	now := formatTime(time.Now())

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheet_tables (name, header, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			header = excluded.header,
			updated_at = excluded.updated_at
		WHERE sheet_tables.header <> excluded.header`,
		name, string(encoded), now, now,
	)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", name, err)
	}
	return nil
}

// Header implements sheet.Store.
func (s *Store) Header(ctx context.Context, name string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT header FROM sheet_tables WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	var header []string
	if err := json.Unmarshal([]byte(raw), &header); err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", name, err)
	}
	return header, nil
}

// Rows implements sheet.Store.
func (s *Store) Rows(ctx context.Context, name string) ([]sheet.Row, error) {
	if err := s.requireTable(ctx, s.db, name); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM sheet_rows WHERE table_name = ? ORDER BY position ASC`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sheet.Row
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		row, err := decodeCells(raw)
		if err != nil {
			return nil, fmt.Errorf("decode row of %s: %w", name, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Append implements sheet.Store.
func (s *Store) Append(ctx context.Context, name string, rows ...sheet.Row) error {
	return s.write(ctx, name, func(tx *sql.Tx) error {
		var last int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), 0) FROM sheet_rows WHERE table_name = ?`, name,
		).Scan(&last); err != nil {
			return err
		}

		for i, row := range rows {
			cells, err := encodeCells(row)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sheet_rows (table_name, position, cells) VALUES (?, ?, ?)`,
				name, last+int64(i)+1, cells,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update implements sheet.Store.
func (s *Store) Update(ctx context.Context, name string, index int, row sheet.Row) error {
	return s.write(ctx, name, func(tx *sql.Tx) error {
		pos, err := positionAt(ctx, tx, name, index)
		if err != nil {
			return err
		}
		cells, err := encodeCells(row)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE sheet_rows SET cells = ? WHERE table_name = ? AND position = ?`,
			cells, name, pos)
		return err
	})
}

// SetCell implements sheet.Store.
func (s *Store) SetCell(ctx context.Context, name string, index, column int, value any) error {
	if column < 0 {
		return fmt.Errorf("invalid column %d", column)
	}
	return s.write(ctx, name, func(tx *sql.Tx) error {
		pos, err := positionAt(ctx, tx, name, index)
		if err != nil {
			return err
		}

		var raw string
		if err := tx.QueryRowContext(ctx,
			`SELECT cells FROM sheet_rows WHERE table_name = ? AND position = ?`, name, pos,
		).Scan(&raw); err != nil {
			return err
		}
		row, err := decodeCells(raw)
		if err != nil {
			return err
		}
		for len(row) <= column {
			row = append(row, nil)
		}
		row[column] = value

		cells, err := encodeCells(row)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE sheet_rows SET cells = ? WHERE table_name = ? AND position = ?`,
			cells, name, pos)
		return err
	})
}

// Delete implements sheet.Store.
func (s *Store) Delete(ctx context.Context, name string, indexes ...int) error {
	return s.write(ctx, name, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT position FROM sheet_rows WHERE table_name = ? ORDER BY position ASC`, name)
		if err != nil {
			return err
		}
		var positions []int64
		for rows.Next() {
			var p int64
			if err := rows.Scan(&p); err != nil {
				rows.Close()
				return err
			}
			positions = append(positions, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		ordered, err := sheet.NormalizeIndexes(indexes, len(positions))
		if err != nil {
			return err
		}
		for _, i := range ordered {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM sheet_rows WHERE table_name = ? AND position = ?`,
				name, positions[i],
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// write runs fn in a transaction after checking the table exists.
func (s *Store) write(ctx context.Context, name string, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.requireTable(ctx, tx, name); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) requireTable(ctx context.Context, q queryRower, name string) error {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sheet_tables WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", sheet.ErrTableNotFound, name)
	}
	return nil
}

// positionAt maps a zero-based data row index to its stored position.
func positionAt(ctx context.Context, tx *sql.Tx, name string, index int) (int64, error) {
	if index < 0 {
		return 0, fmt.Errorf("%w: %d", sheet.ErrRowOutOfRange, index)
	}
	var pos int64
	err := tx.QueryRowContext(ctx,
		`SELECT position FROM sheet_rows WHERE table_name = ? ORDER BY position ASC LIMIT 1 OFFSET ?`,
		name, index,
	).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", sheet.ErrRowOutOfRange, index)
	}
	return pos, err
}

// encodeCells stores a row as a JSON array. time.Time cells become RFC3339
// strings; the row codec parses them back.
func encodeCells(row sheet.Row) (string, error) {
	cells := make([]any, len(row))
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			cells[i] = formatTime(t)
			continue
		}
		cells[i] = v
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encode cells: %w", err)
	}
	return string(data), nil
}

func decodeCells(raw string) (sheet.Row, error) {
	var cells []any
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, err
	}
	return sheet.Row(cells), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
