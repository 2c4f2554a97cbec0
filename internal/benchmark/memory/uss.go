// Package memory reports the process unique set size from /proc smaps.
package memory

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SmapsPath is the per-mapping statistics file of the current process.
const SmapsPath = "/proc/self/smaps"

// NoData is returned by USS when the statistics cannot be read.
const NoData int64 = -1

// USS returns the bytes private to this process, or NoData.
func USS() int64 {
	n, err := ReadUSS(SmapsPath)
	if err != nil {
		return NoData
	}
	return n
}

// ReadUSS sums every Private_* field of an smaps file and returns bytes.
func ReadUSS(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open smaps: %w", err)
	}
	defer file.Close()

	var kb int64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Format: Private_Dirty:        84 kB
		if !strings.HasPrefix(line, "Private_") {
			continue
		}
		_, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		value, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		kb += value
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error reading smaps: %w", err)
	}

	return kb * 1024, nil
}
