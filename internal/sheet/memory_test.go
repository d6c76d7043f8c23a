package sheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	require.NoError(t, m.EnsureTable(context.Background(), "Likes", []string{"clientId", "postId", "likedAt"}))
	return m
}

func TestMemory_EnsureTableRepairsHeader(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	require.NoError(t, m.Append(ctx, "Likes", Row{"a", 1.0, nil}))
	require.NoError(t, m.EnsureTable(ctx, "Likes", []string{"clientId", "postId", "likedAt", "extra"}))

	header, err := m.Header(ctx, "Likes")
	require.NoError(t, err)
	assert.Equal(t, []string{"clientId", "postId", "likedAt", "extra"}, header)

	rows, err := m.Rows(ctx, "Likes")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "repairing the header keeps data rows")
}

func TestMemory_UnknownTable(t *testing.T) {
	m := NewMemory()
	_, err := m.Rows(context.Background(), "Missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestMemory_AppendUpdateSetCell(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	require.NoError(t, m.Append(ctx, "Likes", Row{"a", 1.0}, Row{"b", 2.0}))
	require.NoError(t, m.Update(ctx, "Likes", 0, Row{"z", 9.0}))
	require.NoError(t, m.SetCell(ctx, "Likes", 1, 2, "2024-01-01"))

	rows, err := m.Rows(ctx, "Likes")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"z", 9.0}, {"b", 2.0, "2024-01-01"}}, rows)

	assert.ErrorIs(t, m.Update(ctx, "Likes", 5, Row{}), ErrRowOutOfRange)
	assert.ErrorIs(t, m.SetCell(ctx, "Likes", -1, 0, "x"), ErrRowOutOfRange)
}

func TestMemory_RowsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	in := Row{"a", 1.0}
	require.NoError(t, m.Append(ctx, "Likes", in))
	in[0] = "mutated"

	rows, err := m.Rows(ctx, "Likes")
	require.NoError(t, err)
	rows[0][1] = 99.0

	again, err := m.Rows(ctx, "Likes")
	require.NoError(t, err)
	assert.Equal(t, Row{"a", 1.0}, again[0])
}

func TestMemory_DeleteKeepsOrder(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	require.NoError(t, m.Append(ctx, "Likes",
		Row{"a"}, Row{"b"}, Row{"c"}, Row{"d"}, Row{"e"}))

	require.NoError(t, m.Delete(ctx, "Likes", 3, 1, 1))

	rows, err := m.Rows(ctx, "Likes")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"a"}, {"c"}, {"e"}}, rows)

	assert.ErrorIs(t, m.Delete(ctx, "Likes", 7), ErrRowOutOfRange)
}

func TestNormalizeIndexes(t *testing.T) {
	got, err := NormalizeIndexes([]int{1, 4, 1, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 0}, got)

	_, err = NormalizeIndexes([]int{5}, 5)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
}

func TestRow_Cell(t *testing.T) {
	r := Row{"a", 2.0}
	assert.Equal(t, "a", r.Cell(0))
	assert.Nil(t, r.Cell(2))
	assert.Nil(t, r.Cell(-1))
}
