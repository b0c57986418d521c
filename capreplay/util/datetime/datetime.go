// Package datetime provides the timestamp primitives used for measurement
// range sampling. Timestamps are monotonic and only meaningful relative to
// each other within a single process.
package datetime

import "time"

var base = time.Now()

// Timestamp returns a monotonic timestamp in nanoseconds.
func Timestamp() int64 {
	return int64(time.Since(base))
}

// Diff returns the difference between two timestamps.
func Diff(start, end int64) int64 {
	return end - start
}

// Seconds converts a timestamp difference to seconds.
func Seconds(ts int64) float64 {
	return float64(ts) / float64(time.Second)
}
