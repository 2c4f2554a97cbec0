// Package iostat measures the block I/O of the benchmark process through its
// cgroup v2 io.stat file, or through /proc/self/io where no cgroup v2
// hierarchy is mounted.
package iostat

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/procfs"
)

// Where a reading came from. Readings from different sources are not
// comparable.
const (
	SourceCgroup  = "cgroup"
	SourceProcess = "process"
)

const (
	procCgroup = "/proc/self/cgroup"
	cgroupRoot = "/sys/fs/cgroup"
)

// Stats is one io.stat reading summed over all devices
type Stats struct {
	Source     string
	ReadBytes  uint64
	WriteBytes uint64
	ReadOps    uint64
	WriteOps   uint64
	Timestamp  time.Time
}

// Metrics are rates between two readings
type Metrics struct {
	ReadIOPS          float64
	WriteIOPS         float64
	ReadThroughputMB  float64
	WriteThroughputMB float64
	WriteBytes        uint64
}

// Snapshot reads io.stat of the cgroup this process belongs to and falls
// back to the process counters.
func Snapshot() (*Stats, error) {
	dir, err := cgroupDir(procCgroup)
	if err == nil {
		var stats *Stats
		if stats, err = Read(filepath.Join(dir, "io.stat")); err == nil {
			return stats, nil
		}
	}
	stats, perr := ProcessSnapshot()
	if perr != nil {
		return nil, errors.Join(err, perr)
	}
	return stats, nil
}

// ProcessSnapshot reads /proc/self/io. Ops count read and write syscalls,
// not device requests.
func ProcessSnapshot() (*Stats, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs: %w", err)
	}
	return readProcess(fs, os.Getpid())
}

func readProcess(fs procfs.FS, pid int) (*Stats, error) {
	proc, err := fs.Proc(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	pio, err := proc.IO()
	if err != nil {
		return nil, fmt.Errorf("failed to read process io: %w", err)
	}
	return &Stats{
		Source:     SourceProcess,
		ReadBytes:  pio.ReadBytes,
		WriteBytes: pio.WriteBytes,
		ReadOps:    pio.SyscR,
		WriteOps:   pio.SyscW,
		Timestamp:  time.Now(),
	}, nil
}

// Read parses an io.stat file.
func Read(path string) (*Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open io.stat: %w", err)
	}
	defer file.Close()

	stats := &Stats{Source: SourceCgroup, Timestamp: time.Now()}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		// Format: <major>:<minor> rbytes=X wbytes=Y rios=Z wios=W ...
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		for _, field := range fields[1:] {
			key, raw, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			value, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				continue
			}
			switch key {
			case "rbytes":
				stats.ReadBytes += value
			case "wbytes":
				stats.WriteBytes += value
			case "rios":
				stats.ReadOps += value
			case "wios":
				stats.WriteOps += value
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading io.stat: %w", err)
	}
	return stats, nil
}

// Calculate derives rates from two readings. Counters that went backwards
// (cgroup migration) yield zero, as do readings from different sources.
func Calculate(start, end *Stats) Metrics {
	duration := end.Timestamp.Sub(start.Timestamp).Seconds()
	if duration <= 0 || start.Source != end.Source {
		return Metrics{}
	}

	readBytes := delta(start.ReadBytes, end.ReadBytes)
	writeBytes := delta(start.WriteBytes, end.WriteBytes)

	return Metrics{
		ReadIOPS:          float64(delta(start.ReadOps, end.ReadOps)) / duration,
		WriteIOPS:         float64(delta(start.WriteOps, end.WriteOps)) / duration,
		ReadThroughputMB:  float64(readBytes) / duration / (1024 * 1024),
		WriteThroughputMB: float64(writeBytes) / duration / (1024 * 1024),
		WriteBytes:        writeBytes,
	}
}

func delta(a, b uint64) uint64 {
	if b < a {
		return 0
	}
	return b - a
}

// cgroupDir resolves the unified hierarchy entry ("0::/path") of a
// /proc/<pid>/cgroup file.
func cgroupDir(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read cgroup membership: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if rel, ok := strings.CutPrefix(line, "0::"); ok {
			return filepath.Join(cgroupRoot, rel), nil
		}
	}
	return "", fmt.Errorf("no cgroup v2 entry in %s", path)
}
