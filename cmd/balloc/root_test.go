package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd executes a fresh command tree and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestInfo(t *testing.T) {
	out, _, err := runCmd(t, "info", "--block-size", "32", "--block-count", "10", "--align", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "Block size:   32 bytes")
	assert.Contains(t, out, "Block count:  10")
	assert.Contains(t, out, "Pool size:    320 bytes")
	assert.Contains(t, out, "Bitmap size:  2 bytes")
	assert.Contains(t, out, "Backing:      heap")
}

func TestInfoJSON(t *testing.T) {
	out, _, err := runCmd(t, "info", "--json", "--block-count", "9", "--align", "8")
	require.NoError(t, err)

	var info poolInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, poolInfo{
		BlockSize:   64,
		BlockCount:  9,
		Alignment:   8,
		PoolBytes:   576,
		BitmapBytes: 2,
		Backing:     "heap",
	}, info)
}

func TestInfoInvalidConfig(t *testing.T) {
	_, _, err := runCmd(t, "info", "--align", "12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a power of two")
}

func TestTrace(t *testing.T) {
	out, _, err := runCmd(t, "trace", "--block-size", "64", "--block-count", "128", "--align", "8")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 131)
	assert.Equal(t, "alloc    0 -> offset 0", lines[0])
	assert.Equal(t, "alloc  127 -> offset 8128", lines[127])
	assert.Equal(t, "alloc  128 -> exhausted=true", lines[128])
	assert.Equal(t, "free offset 256, realloc -> offset 256 (same=true)", lines[129])
	assert.Equal(t, "size 128 of 128", lines[130])
}

func TestTraceJSON(t *testing.T) {
	out, _, err := runCmd(t, "trace", "--json", "--block-size", "16", "--block-count", "5", "--align", "8", "--reuse", "2")
	require.NoError(t, err)

	var res traceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []int{0, 16, 32, 48, 64}, res.Handles)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 32, res.Freed)
	assert.Equal(t, 32, res.Reused)
	assert.True(t, res.SameBlock)
	assert.Equal(t, 5, res.FinalSize)
}

func TestTraceReuseOutOfRange(t *testing.T) {
	_, _, err := runCmd(t, "trace", "--block-count", "4", "--reuse", "4")
	require.Error(t, err)
}

func TestStress(t *testing.T) {
	out, _, err := runCmd(t, "stress", "--json", "--workers", "4", "--ops", "500", "--block-count", "16")
	require.NoError(t, err)

	var report stressReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Workers)
	assert.Equal(t, int64(2000), report.Allocations+report.Exhausted)
	assert.Equal(t, report.Enters, report.Exits)
	assert.Zero(t, report.FinalSize)
	assert.Zero(t, report.AlignmentErrors)
	assert.Zero(t, report.FailedFrees)
	assert.LessOrEqual(t, report.PeakInUse, int64(16))
}

func TestStressMapped(t *testing.T) {
	out, _, err := runCmd(t, "stress", "--mapped", "--workers", "2", "--ops", "100")
	if err != nil && strings.Contains(err.Error(), "not supported") {
		t.Skip("mapped backing unavailable")
	}
	require.NoError(t, err)
	assert.Contains(t, out, "Final size:       0")
}

func TestStressInvalidFlags(t *testing.T) {
	_, _, err := runCmd(t, "stress", "--workers", "0")
	require.Error(t, err)
}

func TestVerboseLogging(t *testing.T) {
	_, errOut, err := runCmd(t, "info", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "block allocator created")

	_, errOut, err = runCmd(t, "info")
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestStressReportCheck(t *testing.T) {
	assert.NoError(t, stressReport{}.check())
	assert.Error(t, stressReport{Enters: 2, Exits: 1}.check())
	assert.Error(t, stressReport{FinalSize: 1}.check())
	assert.Error(t, stressReport{AlignmentErrors: 1}.check())
	assert.Error(t, stressReport{FailedFrees: 1}.check())
}
