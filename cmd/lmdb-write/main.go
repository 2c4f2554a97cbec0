package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
	"github.com/moguls753/lmdb-write-benchmark/internal/runner"
)

const usage = "usage: size_in_mb, filename"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

func run(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	defaults := benchmark.DefaultConfig()

	fs := flag.NewFlagSet("lmdb-write", flag.ContinueOnError)
	fs.SetOutput(stderr)
	profile := fs.String("config", "", "YAML profile with benchmark parameters")
	envFile := fs.String("env-file", ".env", "dotenv file with LMDB_BENCH_* variables (ignored if missing)")
	recordSize := fs.Int("record-size", defaults.RecordSize, "Size of every record value in bytes")
	batchSize := fs.Int("batch-size", defaults.BatchSize, "Records per transaction")
	mapSize := fs.Int64("map-size", defaults.MapSize, "LMDB map size ceiling in bytes")
	reportEvery := fs.Int("report-every", defaults.ReportEvery, "Emit a sample every N batches")
	label := fs.String("label", defaults.Label, "Label of the structured output lines")
	seed := fs.Uint64("seed", 0, "Seed for a reproducible entropy stream (0 = OS entropy)")
	randomValues := fs.Bool("random-values", false, "Write random bytes as values instead of the constant filler")
	sampleMemory := fs.Bool("uss", false, "Report process USS with every periodic sample")
	deleteFirst := fs.Bool("delete-first", false, "Remove an existing database file before the run")
	summary := fs.Bool("summary", false, "Print a statistical summary after the run")
	csvPath := fs.String("csv", "", "Export samples to this CSV file")
	pgDSN := fs.String("pg-dsn", "", "Export samples to PostgreSQL")
	logLevel := fs.String("log-level", "info", "Diagnostic log level (stderr)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stdout, usage)
		return 1
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stdout, usage)
		return 1
	}
	sizeMiB, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil || sizeMiB > math.MaxUint64/benchmark.MiB {
		fmt.Fprintln(stdout, usage)
		return 1
	}

	log := logrus.New()
	log.SetOutput(stderr)

	lookup, err := envLookup(*envFile, lookupEnv)
	if err != nil {
		log.WithError(err).Error("Failed to read env file")
		return 1
	}

	cfg := defaults
	if *profile != "" {
		if err := cfg.LoadProfile(*profile); err != nil {
			log.WithError(err).Error("Invalid configuration")
			return 1
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		log.WithError(err).Error("Invalid configuration")
		return 1
	}

	dsn, _ := lookup("LMDB_BENCH_PG_DSN")
	if v, ok := lookup("LMDB_BENCH_LOG_LEVEL"); ok && v != "" {
		*logLevel = v
	}

	// Flags given on the command line win over profile and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "record-size":
			cfg.RecordSize = *recordSize
		case "batch-size":
			cfg.BatchSize = *batchSize
		case "map-size":
			cfg.MapSize = *mapSize
		case "report-every":
			cfg.ReportEvery = *reportEvery
		case "label":
			cfg.Label = *label
		case "seed":
			cfg.Seed = *seed
		case "random-values":
			cfg.RandomValues = *randomValues
		case "uss":
			cfg.SampleMemory = *sampleMemory
		case "delete-first":
			cfg.DeleteFirst = *deleteFirst
		case "pg-dsn":
			dsn = *pgDSN
		case "log-level":
			*logLevel = f.Value.String()
		}
	})

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Error("Invalid log level")
		return 1
	}
	log.SetLevel(level)

	cfg.TotalBytes = sizeMiB * benchmark.MiB
	cfg.Path = fs.Arg(1)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("Invalid configuration")
		return 1
	}

	_, err = runner.WriteThroughput(runner.Options{
		Config:      cfg,
		Out:         stdout,
		Log:         log,
		Summary:     *summary,
		CSVPath:     *csvPath,
		PostgresDSN: dsn,
	})
	if err != nil {
		var be *benchmark.Error
		if errors.As(err, &be) {
			fmt.Fprintln(stdout, benchmark.Diagnostic(err))
		} else {
			log.WithError(err).Error("Benchmark failed")
		}
		return 1
	}
	return 0
}

// envLookup layers a dotenv file under the process environment.
func envLookup(path string, lookupEnv func(string) (string, bool)) (func(string) (string, bool), error) {
	file, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		file = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}
