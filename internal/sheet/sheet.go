// Package sheet defines the row-oriented table store the knowledge board
// persists into. A table is a header row followed by data rows; cells hold
// primitive values (string, float64, int64, bool, time.Time or nil).
//
// Row indexes are zero-based and count data rows only; the header is never
// addressed by index.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors returned by every backend.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrRowOutOfRange = errors.New("row index out of range")
)

// Row is one data row. Trailing cells may be missing.
type Row []any

// Cell returns the value at column i, or nil if the row is shorter.
func (r Row) Cell(i int) any {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	return append(Row(nil), r...)
}

// Store is a row-oriented persistent table store.
type Store interface {
	// EnsureTable creates the table if it does not exist and rewrites the
	// header row when it differs from header.
	EnsureTable(ctx context.Context, name string, header []string) error

	// Header returns the current header row.
	Header(ctx context.Context, name string) ([]string, error)

	// Rows returns every data row in storage order.
	Rows(ctx context.Context, name string) ([]Row, error)

	// Append adds rows at the end of the table, in order.
	Append(ctx context.Context, name string, rows ...Row) error

	// Update overwrites the data row at index.
	Update(ctx context.Context, name string, index int, row Row) error

	// SetCell overwrites a single cell of the data row at index.
	SetCell(ctx context.Context, name string, index, column int, value any) error

	// Delete removes the data rows at the given indexes. Remaining rows keep
	// their relative order.
	Delete(ctx context.Context, name string, indexes ...int) error
}

// NormalizeIndexes sorts indexes in descending order, drops duplicates and
// checks each against the row count. Descending order lets backends delete
// one row at a time without shifting the rows still to be deleted.
func NormalizeIndexes(indexes []int, rowCount int) ([]int, error) {
	out := slices.Clone(indexes)
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	for _, i := range out {
		if i < 0 || i >= rowCount {
			return nil, fmt.Errorf("%w: %d (rows: %d)", ErrRowOutOfRange, i, rowCount)
		}
	}
	return out, nil
}

// HeaderEqual reports whether two header rows are identical.
func HeaderEqual(a, b []string) bool {
	return slices.Equal(a, b)
}
