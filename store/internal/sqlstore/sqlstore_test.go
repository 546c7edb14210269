package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	dollar := &Dialect{Dollar: true}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b IN ($2, $3)",
		dollar.rebind("SELECT 1 WHERE a = ? AND b IN (?, ?)"))

	plain := &Dialect{}
	assert.Equal(t, "a = ?", plain.rebind("a = ?"))
}

func TestWherePage(t *testing.T) {
	var w where
	w.add("client_id = ?", "cli_1")
	assert.Equal(t, " WHERE client_id = ?", w.String())
	assert.Empty(t, w.page(0, 0))

	assert.Equal(t, " LIMIT ? OFFSET ?", w.page(0, 5))
	require.Len(t, w.args, 3)
	assert.Greater(t, w.args[1].(int64), int64(1<<40), "offset without limit lifts the limit")
	assert.Equal(t, int64(5), w.args[2])
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%inv\_10\%%`, likePattern("INV_10%"))
}

func TestTextTimeOrdersLexically(t *testing.T) {
	early := time.Date(2025, 3, 9, 23, 0, 0, 0, time.FixedZone("SAST", 2*3600))
	late := time.Date(2025, 3, 10, 0, 0, 0, 5, time.UTC)

	a, err := textTime(early).Value()
	require.NoError(t, err)
	b, err := textTime(late).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09T21:00:00.000000000Z", a)
	assert.Less(t, a.(string), b.(string))
}

func TestDBTimeScan(t *testing.T) {
	want := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

	for _, src := range []any{
		want,
		"2025-03-10T12:30:00.000000000Z",
		[]byte("2025-03-10T14:30:00+02:00"),
		"2025-03-10 12:30:00",
	} {
		var got dbTime
		require.NoError(t, got.Scan(src), "%v", src)
		assert.True(t, got.Valid)
		assert.True(t, got.Time.Equal(want), "%v -> %v", src, got.Time)
	}

	var null dbTime
	require.NoError(t, null.Scan(nil))
	assert.Nil(t, null.Ptr())

	var bad dbTime
	assert.Error(t, bad.Scan("yesterday"))
	assert.Error(t, bad.Scan(42))
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\nCREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
}
