//go:build !linux

package clock

import "time"

var base = time.Now()

func now() float64 {
	return time.Since(base).Seconds()
}
