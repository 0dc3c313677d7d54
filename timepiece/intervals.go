package timepiece

import (
	"bytes"
	"fmt"
)

// maxReprIntervals is the number of intervals rendered by String
const maxReprIntervals = 5

// Timer is the read side of a timing measurement: a bounded window of
// recorded durations, in seconds, with derived statistics.
// Every statistic returns 0 when nothing has been recorded.
type Timer interface {
	Min() float64
	Max() float64
	Mean() float64
	Sum() float64
	Len() int
	Freq() float64
	Values() []float64
	// Clear forgets the recorded values
	Clear()
}

// Intervals is a fixed capacity ring of durations (in seconds).
// When full, recording a new value evicts the oldest one.
// Intervals is not safe for concurrent use.
type Intervals struct {
	pos    int // index of the oldest value once the ring is full
	values []float64
}

// NewIntervals creates an Intervals holding at most capacity values.
// capacity must be greater than zero; if not, NewIntervals will panic.
func NewIntervals(capacity int) *Intervals {
	if capacity < 1 {
		panic(fmt.Sprintf("timepiece: non-positive capacity %d for Intervals", capacity))
	}
	return &Intervals{
		values: make([]float64, 0, capacity),
	}
}

// Cap returns the maximum number of values kept.
func (iv *Intervals) Cap() int {
	return cap(iv.values)
}

// Record appends v, evicting the oldest value if the ring is full.
func (iv *Intervals) Record(v float64) {
	if len(iv.values) < cap(iv.values) {
		iv.values = append(iv.values, v)
		return
	}
	iv.values[iv.pos] = v
	iv.pos++
	if iv.pos >= len(iv.values) {
		iv.pos = 0
	}
}

// Values returns a copy of the recorded values, oldest first.
func (iv *Intervals) Values() []float64 {
	out := make([]float64, 0, len(iv.values))
	out = append(out, iv.values[iv.pos:]...)
	return append(out, iv.values[:iv.pos]...)
}

// Len returns the number of recorded values.
func (iv *Intervals) Len() int {
	return len(iv.values)
}

// Min returns the shortest recorded interval.
func (iv *Intervals) Min() float64 {
	if len(iv.values) == 0 {
		return 0
	}
	min := iv.values[0]
	for _, v := range iv.values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the longest recorded interval.
func (iv *Intervals) Max() float64 {
	if len(iv.values) == 0 {
		return 0
	}
	max := iv.values[0]
	for _, v := range iv.values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Sum returns the total of the recorded intervals.
func (iv *Intervals) Sum() float64 {
	var sum float64
	for _, v := range iv.values {
		sum += v
	}
	return sum
}

// Mean returns the mean recorded interval.
func (iv *Intervals) Mean() float64 {
	if len(iv.values) == 0 {
		return 0
	}
	return iv.Sum() / float64(len(iv.values))
}

// Freq returns the mean frequency of the events in Hertz.
func (iv *Intervals) Freq() float64 {
	mean := iv.Mean()
	if mean <= 0 {
		return 0
	}
	return 1 / mean
}

// Clear forgets all recorded values.
func (iv *Intervals) Clear() {
	iv.values = iv.values[:0]
	iv.pos = 0
}

// Reset is the same as Clear.
func (iv *Intervals) Reset() {
	iv.Clear()
}

func (iv *Intervals) String() string {
	return iv.describe("Intervals")
}

// describe renders the statistics of iv as <name intervals=[...] min=.. mean=.. max=..>
func (iv *Intervals) describe(name string, props ...string) string {
	var b bytes.Buffer
	b.WriteByte('<')
	b.WriteString(name)
	for _, p := range props {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	if len(iv.values) > 0 {
		b.WriteString(" intervals=[")
		for i, v := range iv.Values() {
			if i == maxReprIntervals {
				b.WriteString(", ...")
				break
			}
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%.4f", v)
		}
		fmt.Fprintf(&b, "] min=%.4f mean=%.4f max=%.4f", iv.Min(), iv.Mean(), iv.Max())
	}
	b.WriteByte('>')
	return b.String()
}
