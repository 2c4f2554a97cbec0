// Package runner wires the LMDB environment, the entropy and time sources and
// the reporters into one write-throughput run.
package runner

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/golang/snappy"
	"github.com/sirupsen/logrus"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark/clock"
	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark/entropy"
	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark/iostat"
	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark/lmdb"
	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark/memory"
	"github.com/moguls753/lmdb-write-benchmark/internal/display"
	"github.com/moguls753/lmdb-write-benchmark/internal/export"
)

// Options configures a run. Out receives the report lines; Log receives
// diagnostics.
type Options struct {
	Config      benchmark.Config
	Out         io.Writer
	Log         logrus.FieldLogger
	Summary     bool
	CSVPath     string
	PostgresDSN string
}

// WriteThroughput fills the database and reports throughput. Engine and
// entropy failures are returned as *benchmark.Error and leave the engine
// open; nothing is printed for the aborted run beyond the lines already
// emitted.
func WriteThroughput(opts Options) (*benchmark.RunResult, error) {
	cfg := opts.Config
	log := opts.Log
	source := entropy.New(cfg.Seed)

	log.WithFields(logrus.Fields{
		"path":          cfg.Path,
		"total":         benchmark.FormatBytes(int64(cfg.TotalBytes)),
		"record_size":   cfg.RecordSize,
		"batch_size":    cfg.BatchSize,
		"batches":       cfg.Batches(),
		"map_size":      benchmark.FormatBytes(cfg.MapSize),
		"report_every":  cfg.ReportEvery,
		"random_values": cfg.RandomValues,
		"seeded":        source.Seeded(),
		"delete_first":  cfg.DeleteFirst,
	}).Info("Starting write test")

	if err := prepareFile(cfg, log); err != nil {
		return nil, err
	}

	ioBefore, err := iostat.Snapshot()
	if err != nil {
		log.WithError(err).Debug("I/O accounting unavailable")
	}

	env, err := lmdb.Open(cfg)
	if err != nil {
		return nil, err
	}

	ctx := &benchmark.Context{
		Entropy:  source,
		Clock:    clock.Monotonic{},
		Reporter: display.NewReporter(opts.Out, cfg.Label),
	}
	if cfg.SampleMemory {
		ctx.Memory = memory.USS
	}

	started := time.Now()
	driver := benchmark.NewDriver(cfg, env, ctx)
	result, err := driver.Run()
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"path":             env.Path(),
		"records":          result.Records,
		"batches":          result.Batches,
		"value_comp_ratio": fmt.Sprintf("%.2f", CompressionRatio(driver.Value())),
	}
	if entries, err := env.Entries(); err == nil {
		fields["entries"] = entries
	}
	if err := env.Close(); err != nil {
		return nil, fmt.Errorf("close environment: %w", err)
	}
	if ioBefore != nil {
		if ioAfter, err := iostat.Snapshot(); err == nil {
			m := iostat.Calculate(ioBefore, ioAfter)
			fields["disk_written"] = benchmark.FormatBytes(int64(m.WriteBytes))
			fields["write_iops"] = fmt.Sprintf("%.1f", m.WriteIOPS)
		}
	}
	log.WithFields(fields).Info("Write test complete")

	if opts.Summary {
		display.Summary(opts.Out, cfg.Label, result)
	}
	if err := exportResult(opts, export.NewRun(cfg, started), result); err != nil {
		return result, err
	}
	return result, nil
}

// prepareFile removes the database file when DeleteFirst is set. A reused
// file keeps its records, so the run inserts among existing keys.
func prepareFile(cfg benchmark.Config, log logrus.FieldLogger) error {
	if cfg.DeleteFirst {
		err := os.Remove(cfg.Path)
		switch {
		case err == nil:
			log.WithField("path", cfg.Path).Info("Deleted existing DB")
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("delete existing database: %w", err)
		}
		return nil
	}
	if _, err := os.Stat(cfg.Path); err == nil {
		log.WithField("path", cfg.Path).Warn("Using existing DB")
	}
	return nil
}

func exportResult(opts Options, run export.Run, result *benchmark.RunResult) error {
	log := opts.Log.WithField("run_id", run.ID.String())

	if opts.CSVPath != "" {
		if err := export.SamplesToCSV(run, result, opts.CSVPath); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		log.WithField("path", opts.CSVPath).Info("Exported samples to CSV")
	}

	if opts.PostgresDSN != "" {
		pg, err := export.OpenPostgres(opts.PostgresDSN)
		if err != nil {
			return fmt.Errorf("export postgres: %w", err)
		}
		defer pg.Close()

		if err := pg.EnsureSchema(); err != nil {
			return fmt.Errorf("export postgres: %w", err)
		}
		if err := pg.WriteRun(run, result); err != nil {
			return fmt.Errorf("export postgres: %w", err)
		}
		n, err := pg.CountRun(run)
		if err != nil {
			return fmt.Errorf("export postgres: %w", err)
		}
		log.WithField("rows", n).Info("Exported samples to PostgreSQL")
	}
	return nil
}

// CompressionRatio is len(value) over its snappy-compressed length. The
// constant filler compresses far better than random bytes, which changes how
// much work the engine and the page cache do per record.
func CompressionRatio(value []byte) float64 {
	if len(value) == 0 {
		return 0
	}
	return float64(len(value)) / float64(len(snappy.Encode(nil, value)))
}
