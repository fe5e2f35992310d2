package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/2767mr/duccipaths/internal/ducci"
)

type TestCase struct {
	name      string
	args      []string
	expect    string
	operation func(*testing.T, TestCase)
}

var (
	checkOutput = func(t *testing.T, tc TestCase) {
		out, err := execute(t, tc.args...)
		require.NoError(t, err)
		if out != tc.expect {
			t.Fatal(" Expected", tc.expect, "but got", out, "args", tc.args)
		}
	}

	checkFails = func(t *testing.T, tc TestCase) {
		_, err := execute(t, tc.args...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tc.expect)
	}
)

func testOne(t *testing.T, tc TestCase) {
	t.Run(tc.name, func(t *testing.T) {
		tc.operation(t, tc)
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(zaptest.NewLogger(t))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPathsCmd(t *testing.T) {
	testOne(t, TestCase{"PATHS_01", []string{"paths", "0", "0", "0", "0"}, "(0,0,0,0):[(0,0,0,0):0]\n", checkOutput})
	testOne(t, TestCase{"PATHS_02", []string{"paths", "1", "0", "0", "0"}, "(1,0,0,0):[(0,0,0,0):2,(0,0,0,0):2,(1,0,1,0):1]\n", checkOutput})
	testOne(t, TestCase{"PATHS_03", []string{"paths", "(1,1,2,0)"}, "(1,1,2,0):[(0,1,2,1):0]\n", checkOutput})
	testOne(t, TestCase{"PATHS_04", []string{"paths", "7", "3", "11", "2"}, "(7,3,11,2):[(1,0,1,2):2,(0,1,2,1):2,(0,0,0,0):4,(0,0,0,0):4,(2,0,2,4):3,(0,2,4,2):3,(0,0,0,0):4,(0,0,0,0):4]\n", checkOutput})

	testOne(t, TestCase{"PATHS_ARGS", []string{"paths", "1", "2"}, "got 2 arguments", checkFails})
	testOne(t, TestCase{"PATHS_RANGE", []string{"paths", "1", "2", "3", "300"}, "component 3", checkFails})
	testOne(t, TestCase{"PATHS_SYNTAX", []string{"paths", "(1,2,3)"}, "malformed", checkFails})
	testOne(t, TestCase{"PATHS_OVERFLOW", []string{"paths", "(127,-128,0,0)"}, "overflow", checkFails})
}

func TestEnumerateAndVerify(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results", "ducci_paths.txt")
	metrics := filepath.Join(dir, "ducci.prom")

	out, err := execute(t, "enumerate", "--max", "3", "--out", results, "--metrics-file", metrics, "--progress-every", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "States:    81")

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 81)
	assert.Equal(t, "(0,0,0,0):[(0,0,0,0):0]", lines[0])

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "duccipaths_states_total 81")

	out, err = execute(t, "verify", "--recompute", results)
	require.NoError(t, err)
	assert.Contains(t, out, "81 lines")

	// The results file is kept unless --force is given.
	_, err = execute(t, "enumerate", "--max", "2", "--out", results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = execute(t, "enumerate", "--max", "2", "--out", results, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(results)
	require.NoError(t, err)
	assert.Equal(t, 16, strings.Count(string(data), "\n"))
}

func TestEnumerateConfigFile(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "out.txt")
	cfgPath := filepath.Join(dir, "ducci.yaml")
	cfg := "range:\n  min: 1\n  max: 3\noutput:\n  path: " + results + "\n  progress_every: 0\nlogging:\n  level: info\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, err := execute(t, "--config", cfgPath, "enumerate")
	require.NoError(t, err)
	assert.Contains(t, out, "States:    16")

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "(1,1,1,1):[(0,0,0,0):0]\n"))
}

func TestEnumerateDepthLimit(t *testing.T) {
	results := filepath.Join(t.TempDir(), "out.txt")

	_, err := execute(t, "enumerate", "--max", "2", "--max-depth", "1", "--out", results, "--progress-every", "0")
	require.ErrorIs(t, err, ducci.ErrDepthExceeded)

	// The line searched before the failure is still flushed.
	data, err := os.ReadFile(results)
	require.NoError(t, err)
	assert.Equal(t, "(0,0,0,0):[(0,0,0,0):0]\n", string(data))
}

func TestVerifyCmdRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("(1,0,0,0):[(1,0,0,1):0]\n"), 0644))

	_, err := execute(t, "verify", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not terminal")
}

func TestEnumerateInvalidRange(t *testing.T) {
	_, err := execute(t, "enumerate", "--min", "5", "--max", "5", "--out", filepath.Join(t.TempDir(), "x.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestEnumerateKeepsExistingFile(t *testing.T) {
	results := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(results, []byte("earlier run\n"), 0644))

	_, err := execute(t, "enumerate", "--max", "2", "--out", results, "--progress-every", "0")
	require.ErrorIs(t, err, os.ErrExist)

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	assert.Equal(t, "earlier run\n", string(data))
}
