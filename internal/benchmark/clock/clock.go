// Package clock provides the monotonic time source used for throughput math.
package clock

// Func adapts a function to the benchmark clock interface.
type Func func() float64

// Now calls f.
func (f Func) Now() float64 { return f() }

// Monotonic reads the raw monotonic clock in seconds. It never fails: a read
// error yields 0.
type Monotonic struct{}

// Now returns monotonic seconds, or 0 if the clock cannot be read.
func (Monotonic) Now() float64 { return now() }
