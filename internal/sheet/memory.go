package sheet

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type memoryTable struct {
	header []string
	rows   []Row
}

// Memory is an in-process Store. Rows handed in and out are copied so callers
// never share backing arrays with the store.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*memoryTable)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) table(name string) (*memoryTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// EnsureTable implements Store.
func (m *Memory) EnsureTable(_ context.Context, name string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[name]
	if !ok {
		m.tables[name] = &memoryTable{header: slices.Clone(header)}
		return nil
	}
	if !HeaderEqual(t.header, header) {
		t.header = slices.Clone(header)
	}
	return nil
}

// Drop removes a table and its rows. Later calls naming it fail with
// ErrTableNotFound until EnsureTable recreates it.
func (m *Memory) Drop(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, name)
}

// Header implements Store.
func (m *Memory) Header(_ context.Context, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(t.header), nil
}

// Rows implements Store.
func (m *Memory) Rows(_ context.Context, name string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(name)
	if err != nil {
		return nil, err
	}
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

// Append implements Store.
func (m *Memory) Append(_ context.Context, name string, rows ...Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(name)
	if err != nil {
		return err
	}
	for _, r := range rows {
		t.rows = append(t.rows, r.Clone())
	}
	return nil
}

// Update implements Store.
func (m *Memory) Update(_ context.Context, name string, index int, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	t.rows[index] = row.Clone()
	return nil
}

// SetCell implements Store.
func (m *Memory) SetCell(_ context.Context, name string, index, column int, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	if column < 0 {
		return fmt.Errorf("invalid column %d", column)
	}
	row := t.rows[index]
	for len(row) <= column {
		row = append(row, nil)
	}
	row[column] = value
	t.rows[index] = row
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, name string, indexes ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(name)
	if err != nil {
		return err
	}
	ordered, err := NormalizeIndexes(indexes, len(t.rows))
	if err != nil {
		return err
	}
	for _, i := range ordered {
		t.rows = slices.Delete(t.rows, i, i+1)
	}
	return nil
}
