// Package export writes the samples of a finished run to files and databases
// for later analysis.
package export

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
)

// Run identifies one benchmark execution across exports.
type Run struct {
	ID      ulid.ULID
	Label   string
	Started time.Time
	Config  benchmark.Config
}

// NewRun stamps a run with a time-ordered id.
func NewRun(cfg benchmark.Config, started time.Time) Run {
	return Run{
		ID:      ulid.MustNew(ulid.Timestamp(started), ulid.DefaultEntropy()),
		Label:   cfg.Label,
		Started: started,
		Config:  cfg,
	}
}

// rows returns the periodic samples followed by the cumulative one.
func rows(result *benchmark.RunResult) []benchmark.Sample {
	all := make([]benchmark.Sample, 0, len(result.Samples)+1)
	all = append(all, result.Samples...)
	return append(all, result.Final)
}
