package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/cbd/pkg/collatz"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	body := `
data:
  upper_bound: 200
  limit: 64
run:
  processes: 3
store:
  driver: badger
  path: ` + filepath.Join(dir, "db") + `
plot:
  width: 300
  height: 200
  output: ` + filepath.Join(dir, "out.png") + `
telemetry:
  metrics_file: ` + filepath.Join(dir, "cbd.prom") + `
`
	path := filepath.Join(dir, "cbd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-mode", "nop"))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCLI_GenerateQueryPlot(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := execute(t, "generate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "records    198")
	assert.Contains(t, out, "stitch")
	assert.FileExists(t, filepath.Join(dir, "cbd.prom"))

	out, err = execute(t, "generate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "reused")

	out, err = execute(t, "query", "--config", cfg, "--lo", "3", "--hi", "7", "--format", "json")
	require.NoError(t, err)
	var numbers []*collatz.Number
	require.NoError(t, json.Unmarshal([]byte(out), &numbers))
	require.Len(t, numbers, 5)
	assert.Equal(t, []int64{10, 5, 16, 8, 4, 2, 1}, numbers[0].FullPath)

	out, err = execute(t, "query", "--config", cfg, "--format", "json",
		"--filter-type", "eql", "--filter-column", "is_bb", "--filter-params", "1")
	require.NoError(t, err)
	numbers = nil
	require.NoError(t, json.Unmarshal([]byte(out), &numbers))
	require.Len(t, numbers, 7, "2, 4, 8, 16, 32, 64 and 128")

	out, err = execute(t, "query", "--config", cfg, "--lo", "2", "--hi", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "dist_to_bb")
	assert.Contains(t, out, "2^4=16")

	out, err = execute(t, "plot", "--config", cfg, "--y-axis", "peak")
	require.NoError(t, err)
	assert.Contains(t, out, "Collatz: Peak value")
	assert.FileExists(t, filepath.Join(dir, "out.png"))

	out, err = execute(t, "runs", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "[2, 200) limit 64")
}

func TestCLI_GenerateFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := execute(t, "generate", "--config", cfg, "-u", "50", "-p", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "[2, 50)  limit 50  processes 2")
	assert.Contains(t, out, "records    48")
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	_, err := execute(t, "generate", "--config", cfg, "--limit", "500")
	assert.Error(t, err)

	_, err = execute(t, "query", "--config", cfg, "--filter-type", "RNG", "--filter-column", "dist", "--filter-params", "1")
	assert.Error(t, err)

	_, err = execute(t, "query", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("CBD_STORE_DRIVER", "none")
	_, err = execute(t, "query", "--config", cfg)
	assert.Error(t, err)
}
