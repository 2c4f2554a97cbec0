package benchmark

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	MiB = 1 << 20

	DefaultRecordSize  = 1024
	DefaultBatchSize   = 128
	DefaultMapSize     = 30 << 30
	DefaultReportEvery = 512
	DefaultLabel       = "go_lmdb"
)

// Tuning holds the engine flags traded away for write speed. Every field
// defaults to true.
type Tuning struct {
	NoMetaSync  bool `yaml:"no_meta_sync"`
	NoSync      bool `yaml:"no_sync"`
	NoReadahead bool `yaml:"no_readahead"`
	WriteMap    bool `yaml:"write_map"`
	NoMemInit   bool `yaml:"no_mem_init"`
	NoLock      bool `yaml:"no_lock"`
}

// Config describes one benchmark run. It is built once from the command line
// and not modified afterwards.
type Config struct {
	// TotalBytes is the target data volume; only whole batches are written
	TotalBytes uint64 `yaml:"-"`

	// Path is the database file
	Path string `yaml:"-"`

	RecordSize  int    `yaml:"record_size"`
	BatchSize   int    `yaml:"batch_size"`
	MapSize     int64  `yaml:"map_size"`
	Tuning      Tuning `yaml:"tuning"`
	ReportEvery int    `yaml:"report_every"`

	// Label tags the structured output lines
	Label string `yaml:"label"`

	// Seed makes the entropy stream reproducible; 0 reads the OS source
	Seed uint64 `yaml:"seed"`

	// RandomValues writes fresh random bytes per record instead of the
	// constant filler
	RandomValues bool `yaml:"random_values"`

	// SampleMemory adds the process USS to periodic samples
	SampleMemory bool `yaml:"sample_memory"`

	// DeleteFirst removes an existing database file before the run
	DeleteFirst bool `yaml:"delete_first"`
}

// DefaultConfig returns the write-optimized configuration: 1 KiB records, 128
// per batch, a 30 GiB map and every durability flag relaxed.
func DefaultConfig() Config {
	return Config{
		RecordSize:  DefaultRecordSize,
		BatchSize:   DefaultBatchSize,
		MapSize:     DefaultMapSize,
		ReportEvery: DefaultReportEvery,
		Label:       DefaultLabel,
		Tuning: Tuning{
			NoMetaSync:  true,
			NoSync:      true,
			NoReadahead: true,
			WriteMap:    true,
			NoMemInit:   true,
			NoLock:      true,
		},
	}
}

// LoadProfile overlays a YAML profile onto c. Keys absent from the file keep
// their current values.
func (c *Config) LoadProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays LMDB_BENCH_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"LMDB_BENCH_RECORD_SIZE", &c.RecordSize},
		{"LMDB_BENCH_BATCH_SIZE", &c.BatchSize},
		{"LMDB_BENCH_REPORT_EVERY", &c.ReportEvery},
	}
	for _, v := range ints {
		raw, ok := lookup(v.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", v.name, err)
		}
		*v.dst = n
	}

	if raw, ok := lookup("LMDB_BENCH_MAP_SIZE"); ok && raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse LMDB_BENCH_MAP_SIZE: %w", err)
		}
		c.MapSize = n
	}
	if raw, ok := lookup("LMDB_BENCH_SEED"); ok && raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse LMDB_BENCH_SEED: %w", err)
		}
		c.Seed = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"LMDB_BENCH_RANDOM_VALUES", &c.RandomValues},
		{"LMDB_BENCH_DELETE_FIRST", &c.DeleteFirst},
	}
	for _, v := range bools {
		raw, ok := lookup(v.name)
		if !ok || raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", v.name, err)
		}
		*v.dst = b
	}

	if raw, ok := lookup("LMDB_BENCH_LABEL"); ok && raw != "" {
		c.Label = raw
	}
	return nil
}

// Validate checks the parameters the engine cannot check for us.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.RecordSize <= 0 {
		return fmt.Errorf("record size must be positive, got %d", c.RecordSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.ReportEvery <= 0 {
		return fmt.Errorf("report cadence must be positive, got %d", c.ReportEvery)
	}
	if c.MapSize <= 0 {
		return fmt.Errorf("map size must be positive, got %d", c.MapSize)
	}
	return nil
}

// Batches is the number of whole transactions the run commits. Any volume
// left over after the last whole batch is not written.
func (c Config) Batches() uint64 {
	return c.TotalBytes / uint64(c.RecordSize) / uint64(c.BatchSize)
}

// Records is the number of records the run commits.
func (c Config) Records() uint64 {
	return c.Batches() * uint64(c.BatchSize)
}
