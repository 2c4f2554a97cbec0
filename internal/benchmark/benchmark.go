package benchmark

import (
	"fmt"
	"io"
)

// Env is the storage engine as seen by the driver.
type Env interface {
	Begin() (Txn, error)
}

// Txn is one write transaction. Implementations return *Error values.
type Txn interface {
	Put(key uint64, value []byte) error
	Commit() error
	Abort()
}

// Clock reads monotonic seconds. It returns 0 when the clock cannot be read.
type Clock interface {
	Now() float64
}

// Reporter receives samples as they are taken.
type Reporter interface {
	Start(firstKey uint64)
	Periodic(s Sample)
	Cumulative(s Sample)
}

// Context carries the collaborators of a run. It replaces process-wide RNG and
// clock state; build it once at startup.
type Context struct {
	Entropy  io.Reader
	Clock    Clock
	Reporter Reporter

	// Memory returns the process USS in bytes, or a negative value when
	// unavailable. Nil disables memory sampling.
	Memory func() int64
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
