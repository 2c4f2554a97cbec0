package benchmark

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1024, cfg.RecordSize)
	assert.Equal(t, 128, cfg.BatchSize)
	assert.Equal(t, int64(30)<<30, cfg.MapSize)
	assert.Equal(t, 512, cfg.ReportEvery)
	assert.True(t, cfg.Tuning.NoSync)
	assert.True(t, cfg.Tuning.NoLock)
	assert.False(t, cfg.RandomValues)
}

func TestConfigBatches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalBytes = 1 * MiB
	assert.Equal(t, uint64(8), cfg.Batches())
	assert.Equal(t, uint64(1024), cfg.Records())

	cfg.TotalBytes = 1*MiB + 1024*127
	assert.Equal(t, uint64(8), cfg.Batches(), "partial batch is dropped")

	cfg.TotalBytes = 0
	assert.Zero(t, cfg.Records())
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(), "missing path")

	cfg.Path = "bench.mdb"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.BatchSize = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.RecordSize = -1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.ReportEvery = 0
	assert.Error(t, bad.Validate())
}

func TestConfigLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	profile := "record_size: 4096\nlabel: nvme\ndelete_first: true\ntuning:\n  no_sync: false\n"
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadProfile(path))
	assert.Equal(t, 4096, cfg.RecordSize)
	assert.Equal(t, "nvme", cfg.Label)
	assert.True(t, cfg.DeleteFirst)
	assert.False(t, cfg.Tuning.NoSync)
	assert.True(t, cfg.Tuning.NoMetaSync, "keys absent from the profile keep their value")
	assert.Equal(t, 128, cfg.BatchSize)
}

func TestConfigLoadProfileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigApplyEnv(t *testing.T) {
	env := map[string]string{
		"LMDB_BENCH_BATCH_SIZE":    "64",
		"LMDB_BENCH_MAP_SIZE":      "1048576",
		"LMDB_BENCH_SEED":          "7",
		"LMDB_BENCH_RANDOM_VALUES": "true",
		"LMDB_BENCH_LABEL":         "ci",
		"LMDB_BENCH_DELETE_FIRST":  "1",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, int64(1<<20), cfg.MapSize)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.True(t, cfg.RandomValues)
	assert.True(t, cfg.DeleteFirst)
	assert.Equal(t, "ci", cfg.Label)
	assert.Equal(t, 1024, cfg.RecordSize)

	env["LMDB_BENCH_DELETE_FIRST"] = "maybe"
	assert.Error(t, cfg.ApplyEnv(lookup))

	delete(env, "LMDB_BENCH_DELETE_FIRST")
	env["LMDB_BENCH_RECORD_SIZE"] = "big"
	assert.Error(t, cfg.ApplyEnv(lookup))
}
