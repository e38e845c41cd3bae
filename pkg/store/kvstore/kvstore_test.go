package kvstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/cbd/pkg/logger"
	"github.com/ib-77/cbd/pkg/store"
	"github.com/ib-77/cbd/pkg/store/storetest"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(InMemoryConfig(), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Config{Path: dir, SyncWrites: true}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SaveNumbers(ctx, storetest.Numbers(t, 12)))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir}, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadNumbers(ctx, store.Query{Lo: 2, Hi: 11})
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, []int64{3, 10, 5, 16, 8, 4, 2, 1}, got[4].FullPath)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{}, logger.Nop())
	assert.Error(t, err)
}

func TestNumberKey_Ordered(t *testing.T) {
	keys := [][]byte{numberKey(2), numberKey(255), numberKey(256), numberKey(1 << 40)}
	for i := 1; i < len(keys); i++ {
		assert.Equal(t, -1, bytes.Compare(keys[i-1], keys[i]))
	}
}

func TestLoadNumbers_CorruptPayload(t *testing.T) {
	s, err := Open(InMemoryConfig(), logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(numberKey(7), []byte("{not json"))
	}))

	_, err = s.LoadNumbers(context.Background(), store.Query{Lo: 2, Hi: 10})
	assert.ErrorIs(t, err, store.ErrCorruptRecord)
}
