package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathEncoding(t *testing.T) {
	for _, path := range [][]int64{
		{1},
		{5, 16, 8, 4, 2, 1},
		{9232, 4616, 2308},
	} {
		got, err := DecodePath(EncodePath(path))
		require.NoError(t, err)
		assert.Equal(t, path, got)
	}

	assert.Equal(t, "16,8,4,2,1", EncodePath([]int64{16, 8, 4, 2, 1}))
	got, err := DecodePath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodePath_Corrupt(t *testing.T) {
	_, err := DecodePath("4,two,1")
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestRun_Duration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Run{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}
