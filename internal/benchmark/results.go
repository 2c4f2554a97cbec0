package benchmark

// SampleKind distinguishes progress samples from the end-of-run total.
type SampleKind string

const (
	KindPeriodic   SampleKind = "periodic"
	KindCumulative SampleKind = "cumulative"
)

// Sample is one throughput measurement. For periodic samples MiBPerSec is the
// rate since the previous sample; for the cumulative sample it is the average
// over the run.
type Sample struct {
	Kind  SampleKind
	Batch uint64

	Elapsed  float64 // seconds since start
	Interval float64 // seconds since the previous sample

	Records         uint64
	Bytes           uint64
	IntervalRecords uint64
	IntervalBytes   uint64

	MiB       uint64
	MiBPerSec float64

	// USS is the process unique set size in bytes, negative if not sampled
	USS int64
}

// RunResult contains everything measured by a completed run
type RunResult struct {
	FirstKey uint64
	LastKey  uint64
	Records  uint64
	Batches  uint64
	Samples  []Sample // periodic samples in emission order
	Final    Sample
}

// Rates returns the periodic MiB/s values in emission order.
func (r *RunResult) Rates() []float64 {
	rates := make([]float64, 0, len(r.Samples))
	for _, s := range r.Samples {
		rates = append(rates, s.MiBPerSec)
	}
	return rates
}
