package iostat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/procfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead(t *testing.T) {
	path := write(t, "io.stat",
		"259:0 rbytes=100 wbytes=2048 rios=1 wios=4 dbytes=0 dios=0\n"+
			"8:0 rbytes=50 wbytes=1024 rios=1 wios=2\n"+
			"garbage\n"+
			"8:16 wbytes=oops\n")

	stats, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, SourceCgroup, stats.Source)
	assert.Equal(t, uint64(150), stats.ReadBytes)
	assert.Equal(t, uint64(3072), stats.WriteBytes)
	assert.Equal(t, uint64(2), stats.ReadOps)
	assert.Equal(t, uint64(6), stats.WriteOps)
}

func TestCalculate(t *testing.T) {
	t0 := time.Unix(100, 0)
	start := &Stats{WriteBytes: 0, WriteOps: 0, Timestamp: t0}
	end := &Stats{WriteBytes: 4 << 20, WriteOps: 20, ReadBytes: 0, Timestamp: t0.Add(2 * time.Second)}

	m := Calculate(start, end)
	assert.InDelta(t, 2.0, m.WriteThroughputMB, 1e-9)
	assert.InDelta(t, 10.0, m.WriteIOPS, 1e-9)
	assert.Equal(t, uint64(4<<20), m.WriteBytes)

	assert.Equal(t, Metrics{}, Calculate(end, start))

	mixed := *end
	mixed.Source = SourceProcess
	assert.Equal(t, Metrics{}, Calculate(start, &mixed))
}

func TestReadProcess(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "42"), 0o755))
	content := "rchar: 750339\n" +
		"wchar: 818609\n" +
		"syscr: 7405\n" +
		"syscw: 5245\n" +
		"read_bytes: 1024\n" +
		"write_bytes: 2048\n" +
		"cancelled_write_bytes: -1024\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "42", "io"), []byte(content), 0o644))

	fs, err := procfs.NewFS(root)
	require.NoError(t, err)

	stats, err := readProcess(fs, 42)
	require.NoError(t, err)
	assert.Equal(t, SourceProcess, stats.Source)
	assert.Equal(t, uint64(1024), stats.ReadBytes)
	assert.Equal(t, uint64(2048), stats.WriteBytes)
	assert.Equal(t, uint64(7405), stats.ReadOps)
	assert.Equal(t, uint64(5245), stats.WriteOps)

	_, err = readProcess(fs, 43)
	assert.Error(t, err)
}

func TestCgroupDir(t *testing.T) {
	path := write(t, "cgroup", "0::/user.slice/bench.scope\n")
	dir, err := cgroupDir(path)
	require.NoError(t, err)
	assert.Equal(t, "/sys/fs/cgroup/user.slice/bench.scope", dir)

	path = write(t, "cgroup-v1", "12:memory:/docker/abc\n")
	_, err = cgroupDir(path)
	assert.Error(t, err)
}
