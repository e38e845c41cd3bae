package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"", "dev", "development", "prod", "production", "nop", "test", " PROD "} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger, mode)
	}
}

func TestNew_UnknownMode(t *testing.T) {
	_, err := New("verbose")
	assert.Error(t, err)
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("run_id", "abc").Info("stage done", "stage", "tails", "records", 12)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stage done", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["run_id"])
	assert.Equal(t, "tails", ctx["stage"])
	assert.EqualValues(t, 12, ctx["records"])
}

func TestNop_Silent(t *testing.T) {
	l := Nop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.Printf("%d", 1)
	l.Sync()
}
