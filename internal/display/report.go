package display

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
)

// Reporter prints samples to stdout: a free-text line and a structured line
// prefixed with "> " that chart tooling parses.
type Reporter struct {
	out   io.Writer
	label string
}

// NewReporter returns a reporter tagging structured lines with label.
func NewReporter(out io.Writer, label string) *Reporter {
	return &Reporter{out: out, label: label}
}

// Start prints the key origin of the run.
func (r *Reporter) Start(firstKey uint64) {
	fmt.Fprintf(r.out, "First key is %d\n", firstKey)
}

// Periodic prints the interval rate, preceded by the USS when it was sampled.
func (r *Reporter) Periodic(s benchmark.Sample) {
	if s.USS >= 0 {
		fmt.Fprintf(r.out, "uss=%dMiB\n", s.USS/benchmark.MiB)
	}
	fmt.Fprintf(r.out, "MiB=%d, MiB/s=%.3f\n", s.MiB, s.MiBPerSec)
	r.structured(r.label, s)
}

// Cumulative prints the whole-run average rate.
func (r *Reporter) Cumulative(s benchmark.Sample) {
	fmt.Fprintf(r.out, "Cum MiB=%d, MiB/s=%.2f\n", s.MiB, s.MiBPerSec)
	r.structured(r.label+" cum", s)
}

func (r *Reporter) structured(label string, s benchmark.Sample) {
	key, _ := json.Marshal(label)
	fmt.Fprintf(r.out, "> {%s: {\"mib\": %d, \"mib_s\": %.3f}}\n", key, s.MiB, s.MiBPerSec)
}
