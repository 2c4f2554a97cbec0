package runner

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
)

func options(t *testing.T, sizeMiB uint64) (Options, *bytes.Buffer, *test.Hook) {
	cfg := benchmark.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "bench.mdb")
	cfg.MapSize = 64 << 20
	cfg.TotalBytes = sizeMiB * benchmark.MiB

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	var out bytes.Buffer
	return Options{Config: cfg, Out: &out, Log: logger}, &out, hook
}

func TestWriteThroughput(t *testing.T) {
	opts, out, hook := options(t, 2)
	opts.Config.ReportEvery = 4
	opts.Config.SampleMemory = true
	opts.CSVPath = filepath.Join(t.TempDir(), "samples.csv")

	result, err := WriteThroughput(opts)
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), result.Records)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "First key is "))
	assert.Contains(t, out.String(), "> {\"go_lmdb\": {\"mib\": ")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "> {\"go_lmdb cum\": {\"mib\": 2, \"mib_s\": "))
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "Cum MiB=2, MiB/s="))

	_, err = os.Stat(opts.CSVPath)
	assert.NoError(t, err)

	var complete *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "Write test complete" {
			complete = e
		}
	}
	require.NotNil(t, complete)
	assert.Equal(t, uint64(2048), complete.Data["entries"])
	assert.Equal(t, opts.Config.Path, complete.Data["path"])
}

func entry(hook *test.Hook, msg string) *logrus.Entry {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return e
		}
	}
	return nil
}

func TestWriteThroughputSeededIsReproducible(t *testing.T) {
	first := func() string {
		opts, out, _ := options(t, 0)
		opts.Config.Seed = 99
		_, err := WriteThroughput(opts)
		require.NoError(t, err)
		return strings.SplitN(out.String(), "\n", 2)[0]
	}
	assert.Equal(t, first(), first())
}

func TestWriteThroughputLogsSeeded(t *testing.T) {
	opts, _, hook := options(t, 0)
	opts.Config.Seed = 7
	_, err := WriteThroughput(opts)
	require.NoError(t, err)

	start := entry(hook, "Starting write test")
	require.NotNil(t, start)
	assert.Equal(t, true, start.Data["seeded"])
}

func TestWriteThroughputReusesExistingFile(t *testing.T) {
	opts, _, hook := options(t, 1)
	_, err := WriteThroughput(opts)
	require.NoError(t, err)
	assert.Nil(t, entry(hook, "Using existing DB"))

	hook.Reset()
	_, err = WriteThroughput(opts)
	require.NoError(t, err)

	warn := entry(hook, "Using existing DB")
	require.NotNil(t, warn)
	assert.Equal(t, logrus.WarnLevel, warn.Level)
	assert.Equal(t, uint64(2048), entry(hook, "Write test complete").Data["entries"])
}

func TestWriteThroughputDeleteFirst(t *testing.T) {
	opts, _, hook := options(t, 1)
	opts.Config.DeleteFirst = true

	_, err := WriteThroughput(opts)
	require.NoError(t, err)
	assert.Nil(t, entry(hook, "Deleted existing DB"), "nothing to delete on the first run")

	hook.Reset()
	_, err = WriteThroughput(opts)
	require.NoError(t, err)

	assert.NotNil(t, entry(hook, "Deleted existing DB"))
	assert.Nil(t, entry(hook, "Using existing DB"))
	assert.Equal(t, uint64(1024), entry(hook, "Write test complete").Data["entries"])
}

func TestWriteThroughputDeleteFirstFailure(t *testing.T) {
	opts, out, _ := options(t, 1)
	opts.Config.DeleteFirst = true
	// A non-empty directory cannot be removed like a file.
	require.NoError(t, os.MkdirAll(filepath.Join(opts.Config.Path, "child"), 0o755))

	_, err := WriteThroughput(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete existing database")
	assert.Empty(t, out.String())
}

func TestWriteThroughputSummary(t *testing.T) {
	opts, out, _ := options(t, 1)
	opts.Summary = true

	_, err := WriteThroughput(opts)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Statistical Summary")
}

func TestWriteThroughputMapFull(t *testing.T) {
	opts, out, _ := options(t, 8)
	opts.Config.MapSize = 1 << 20

	result, err := WriteThroughput(opts)
	require.Error(t, err)
	assert.Nil(t, result)

	var be *benchmark.Error
	require.True(t, errors.As(err, &be))
	assert.True(t, strings.HasPrefix(benchmark.Diagnostic(err), "Failed with error -30792 on "))
	assert.NotContains(t, out.String(), "Cum MiB")
}

func TestWriteThroughputOpenFailure(t *testing.T) {
	opts, out, _ := options(t, 1)
	opts.Config.Path = filepath.Join(t.TempDir(), "no", "such", "dir", "bench.mdb")

	_, err := WriteThroughput(opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, benchmark.ErrEngineOpen))
	assert.Empty(t, out.String())
}

func TestCompressionRatio(t *testing.T) {
	constant := bytes.Repeat([]byte{benchmark.FillByte}, 1024)
	random := make([]byte, 1024)
	_, err := io.ReadFull(rand.Reader, random)
	require.NoError(t, err)

	assert.Greater(t, CompressionRatio(constant), 10.0)
	assert.Less(t, CompressionRatio(random), 1.1)
	assert.Zero(t, CompressionRatio(nil))
}
