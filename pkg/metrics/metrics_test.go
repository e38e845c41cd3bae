package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()

	r.ObserveStage("tails", 20*time.Millisecond, 10)
	r.ObserveStage("tails", 5*time.Millisecond, 8)
	r.ObserveStage("derive", time.Millisecond, 18)
	r.StageFailed("stitch")
	r.AddExtensions(7)
	r.SetUpperBound(20)

	assert.Equal(t, 18.0, testutil.ToFloat64(r.records.WithLabelValues("tails")))
	assert.Equal(t, 18.0, testutil.ToFloat64(r.records.WithLabelValues("derive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("stitch")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.extensions))
	assert.Equal(t, 20.0, testutil.ToFloat64(r.upperBound))
	assert.Equal(t, 2, testutil.CollectAndCount(r.stageDuration))
}

func TestRecorder_Isolated(t *testing.T) {
	a, b := New(), New()
	a.AddExtensions(3)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.extensions))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveStage("backbone", time.Millisecond, 4)

	path := filepath.Join(t.TempDir(), "cbd.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `cbd_records_total{stage="backbone"} 4`), text)
	assert.Contains(t, text, "cbd_stage_duration_seconds_bucket")
}
