package timepiece

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Ticker measures the time elapsed between successive calls to Tick.
//
//	ticker := NewTicker(5, clock.New())
//	for frame := range frames {
//		ticker.Tick()
//		process(frame)
//	}
//	fmt.Println(ticker) // <Ticker intervals=[0.0899, 0.0632, ...] min=0.0543 mean=0.0694 max=0.0899>
type Ticker struct {
	*Intervals
	clk  clock.Clock
	last time.Time
}

// NewTicker returns a Ticker remembering the last capacity intervals.
// A nil clk means the wall clock.
func NewTicker(capacity int, clk clock.Clock) *Ticker {
	if clk == nil {
		clk = clock.New()
	}
	return &Ticker{
		Intervals: NewIntervals(capacity),
		clk:       clk,
	}
}

// Tick registers an event. Every tick but the first records the interval
// since the previous one.
func (t *Ticker) Tick() {
	now := t.clk.Now()
	if !t.last.IsZero() {
		t.Record(now.Sub(t.last).Seconds())
	}
	t.last = now
}

// Reset forgets the recorded intervals and the previous tick.
func (t *Ticker) Reset() {
	t.Intervals.Clear()
	t.last = time.Time{}
}

func (t *Ticker) String() string {
	return t.describe("Ticker")
}
