package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/logger"
	"github.com/ib-77/cbd/pkg/store"
	"github.com/ib-77/cbd/pkg/store/storetest"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cbd.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cbd.db")
	ctx := t.Context()

	s, err := Open(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SaveNumbers(ctx, storetest.Numbers(t, 10)))
	require.NoError(t, s.Close())

	s, err = Open(path, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.Covers(ctx, 2, 9)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRowMapping(t *testing.T) {
	n := &collatz.Number{Value: 6, FullPath: []int64{3, 10, 5, 16, 8, 4, 2, 1}, Dist: 8, Peak: 16, PeakSlope: 16.0 / 6}
	row := toRow(n)
	assert.Equal(t, "3,10,5,16,8,4,2,1", row.FullPath)

	back, err := fromRow(row)
	require.NoError(t, err)
	assert.Equal(t, n.FullPath, back.FullPath)
	assert.Equal(t, int64(3), back.Target)

	row.FullPath = "3,x"
	_, err = fromRow(row)
	assert.ErrorIs(t, err, store.ErrCorruptRecord)
}
