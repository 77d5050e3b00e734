package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestTrail(t *testing.T) *Trail {
	t.Helper()
	trail, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { trail.Close() })
	return trail
}

func TestAppendAndRecent(t *testing.T) {
	trail := openTestTrail(t)

	require.NoError(t, trail.Append("create_order", map[string]any{"symbol": "ES", "qty": 1.0}))
	require.NoError(t, trail.Append("risk.breach", map[string]any{"account": "main", "reason": "max_day_trades"}))

	recs, err := trail.Recent(10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Newest first.
	assert.Equal(t, "risk.breach", recs[0].Kind)
	assert.Equal(t, "max_day_trades", recs[0].Detail["reason"])
	assert.Equal(t, "create_order", recs[1].Kind)
	assert.False(t, recs[0].TS.IsZero())

	n, err := trail.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRecentLimit(t *testing.T) {
	trail := openTestTrail(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, trail.Append("create_order", map[string]any{"n": i}))
	}
	recs, err := trail.Recent(3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
