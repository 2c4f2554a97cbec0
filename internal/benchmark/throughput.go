package benchmark

import "math"

// Tracker turns key counters and clock readings into samples.
type Tracker struct {
	recordSize uint64
	firstKey   uint64
	lastKey    uint64
	start      float64
	lastNow    float64
}

// NewTracker starts tracking at firstKey and time start.
func NewTracker(recordSize int, firstKey uint64, start float64) *Tracker {
	return &Tracker{
		recordSize: uint64(recordSize),
		firstKey:   firstKey,
		lastKey:    firstKey,
		start:      start,
		lastNow:    start,
	}
}

// Periodic measures the rate since the previous periodic sample and advances
// the sampling window.
func (t *Tracker) Periodic(key uint64, now float64) Sample {
	records := key - t.firstKey
	interval := key - t.lastKey
	dt := now - t.lastNow

	s := Sample{
		Kind:            KindPeriodic,
		Elapsed:         now - t.start,
		Interval:        dt,
		Records:         records,
		Bytes:           records * t.recordSize,
		IntervalRecords: interval,
		IntervalBytes:   interval * t.recordSize,
		MiB:             records * t.recordSize / MiB,
		MiBPerSec:       rate(float64(interval*t.recordSize)/MiB, dt),
		USS:             -1,
	}

	t.lastKey = key
	t.lastNow = now
	return s
}

// Cumulative measures the average rate over the whole run. The integer MiB
// count is the numerator, as in the periodic lines.
func (t *Tracker) Cumulative(key uint64, now float64) Sample {
	records := key - t.firstKey
	mib := records * t.recordSize / MiB
	elapsed := now - t.start

	return Sample{
		Kind:            KindCumulative,
		Elapsed:         elapsed,
		Interval:        elapsed,
		Records:         records,
		Bytes:           records * t.recordSize,
		IntervalRecords: records,
		IntervalBytes:   records * t.recordSize,
		MiB:             mib,
		MiBPerSec:       rate(float64(mib), elapsed),
		USS:             -1,
	}
}

// rate divides mib by seconds. A non-positive elapsed time, which a failed
// clock read can produce, yields 0 rather than Inf, NaN or a negative rate.
func rate(mib, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	r := mib / seconds
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}
	return r
}
