package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
)

var csvHeader = []string{
	"run_id", "label", "kind", "batch", "elapsed_s", "interval_s",
	"records", "bytes", "mib", "mib_s", "uss_bytes",
	"record_size", "batch_size", "random_values",
}

// SamplesToCSV writes one row per sample, the cumulative sample last.
func SamplesToCSV(run Run, result *benchmark.RunResult, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range rows(result) {
		row := []string{
			run.ID.String(),
			run.Label,
			string(s.Kind),
			strconv.FormatUint(s.Batch, 10),
			fmt.Sprintf("%.6f", s.Elapsed),
			fmt.Sprintf("%.6f", s.Interval),
			strconv.FormatUint(s.Records, 10),
			strconv.FormatUint(s.Bytes, 10),
			strconv.FormatUint(s.MiB, 10),
			fmt.Sprintf("%.3f", s.MiBPerSec),
			strconv.FormatInt(s.USS, 10),
			strconv.Itoa(run.Config.RecordSize),
			strconv.Itoa(run.Config.BatchSize),
			strconv.FormatBool(run.Config.RandomValues),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Close()
}
