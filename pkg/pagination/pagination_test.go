package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, DefaultLimit, NormalizeLimit(-3))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	require.Equal(t, 8, LimitWithBuffer(7))
}

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 123, time.FixedZone("MYT", 8*3600)), ID: uuid.New()}
	encoded := EncodeCursor(c)
	require.NotContains(t, encoded, "=")
	require.NotContains(t, encoded, "+")
	require.NotContains(t, encoded, "/")

	got, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.True(t, got.CreatedAt.Equal(c.CreatedAt))
	require.Equal(t, c.ID, got.ID)

	none, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, none)

	_, err = ParseCursor("%%%")
	require.Error(t, err)
}

type row struct {
	at time.Time
	id uuid.UUID
}

func TestPage(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{at: base.Add(-time.Duration(i) * time.Hour), id: uuid.New()}
	}
	key := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page, next := Page(rows[:3], 3, key)
	require.Len(t, page, 3)
	require.Empty(t, next)

	page, next = Page(rows, 3, key)
	require.Len(t, page, 3)
	cursor, err := ParseCursor(next)
	require.NoError(t, err)
	require.Equal(t, rows[2].id, cursor.ID)
}
