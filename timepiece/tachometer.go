package timepiece

import (
	"time"

	"github.com/benbjohnson/clock"
)

// ExpectedMaxFPS sizes the timers of the tachometers: a tachometer reporting
// every interval keeps up to ExpectedMaxFPS * interval seconds measurements.
const ExpectedMaxFPS = 100

// DefaultStatsInterval is the default reporting interval of tachometers.
const DefaultStatsInterval = time.Minute

// StatsFunc receives the statistics collected by a tachometer.
// ts is the reporting time, the timer is guaranteed to be non-empty.
type StatsFunc func(ts time.Time, timer Timer) any

// Tachometer periodically reports the statistics of a Timer to a StatsFunc,
// then clears the timer. Reporting is skipped when the timer is empty.
//
// Events are recorded on the timer by whoever owns it; Tick is the
// separate reporting heartbeat.
//
// With an Executor, the StatsFunc runs on the executor with a copy of the
// timer taken at reporting time, so the timer itself is only ever touched
// by the goroutine calling Tick.
type Tachometer struct {
	timer    Timer
	stats    StatsFunc
	ex       Executor
	schedule *IntervalSchedule
	clk      clock.Clock
}

// report is what the flush callback returns when run synchronously
type report struct {
	reported bool
	result   any
}

// NewTachometer returns a Tachometer reporting timer every interval.
// With a non-nil executor the report is done asynchronously.
func NewTachometer(timer Timer, stats StatsFunc, interval time.Duration, ex Executor, clk clock.Clock) (*Tachometer, error) {
	if clk == nil {
		clk = clock.New()
	}
	t := &Tachometer{
		timer: timer,
		stats: stats,
		ex:    ex,
		clk:   clk,
	}
	schedule, err := NewIntervalSchedule(interval, NewCallback(t.flush, nil), clk)
	if err != nil {
		return nil, err
	}
	t.schedule = schedule
	return t, nil
}

// Timer returns the timer being reported.
func (t *Tachometer) Timer() Timer {
	return t.timer
}

// Schedule returns the reporting schedule, e.g. to register it on an AlarmClock.
func (t *Tachometer) Schedule() *IntervalSchedule {
	return t.schedule
}

// Tick runs the reporting heartbeat. It returns true if statistics were
// reported, along with the result of the StatsFunc when it ran synchronously.
func (t *Tachometer) Tick() (bool, any) {
	_, res := t.schedule.Tick()
	if r, ok := res.(report); ok {
		return r.reported, r.result
	}
	return false, nil
}

// Flush reports the statistics now, unless the timer is empty.
func (t *Tachometer) Flush() (bool, any) {
	r := t.flush().(report)
	return r.reported, r.result
}

func (t *Tachometer) flush() any {
	if t.timer.Len() == 0 {
		return report{}
	}
	ts := LocalNow(t.clk)
	if t.ex != nil {
		snap := snapshot(t.timer)
		t.timer.Clear()
		stats := t.stats
		t.ex.Submit(func() { stats(ts, snap) })
		return report{reported: true}
	}
	res := t.stats(ts, t.timer)
	t.timer.Clear()
	return report{reported: true, result: res}
}

// snapshot copies the values of a non-empty timer
func snapshot(timer Timer) *Intervals {
	values := timer.Values()
	iv := NewIntervals(len(values))
	for _, v := range values {
		iv.Record(v)
	}
	return iv
}

func tachometerCapacity(interval time.Duration) int {
	n := int(ExpectedMaxFPS * interval.Seconds())
	if n < 1 {
		n = 1
	}
	return n
}

// TickerTachometer reports statistics about the frequency of calls to Tick.
// Call Tick each time the measured event happens, e.g. for each processed frame.
type TickerTachometer struct {
	*Tachometer
	ticker *Ticker
}

func NewTickerTachometer(stats StatsFunc, interval time.Duration, ex Executor, clk clock.Clock) (*TickerTachometer, error) {
	ticker := NewTicker(tachometerCapacity(interval), clk)
	t, err := NewTachometer(ticker, stats, interval, ex, clk)
	if err != nil {
		return nil, err
	}
	return &TickerTachometer{
		Tachometer: t,
		ticker:     ticker,
	}, nil
}

// Ticker returns the underlying ticker.
func (t *TickerTachometer) Ticker() *Ticker {
	return t.ticker
}

// Tick registers an event and runs the reporting heartbeat.
func (t *TickerTachometer) Tick() (bool, any) {
	t.ticker.Tick()
	return t.Tachometer.Tick()
}

// StopWatchTachometer reports statistics about measured durations.
// Each Exit records one duration and runs the reporting heartbeat.
type StopWatchTachometer struct {
	*Tachometer
	stopwatch *StopWatch
}

func NewStopWatchTachometer(stats StatsFunc, interval time.Duration, ex Executor, clk clock.Clock) (*StopWatchTachometer, error) {
	sw := NewStopWatch("tachometer", tachometerCapacity(interval), clk)
	t, err := NewTachometer(sw, stats, interval, ex, clk)
	if err != nil {
		return nil, err
	}
	return &StopWatchTachometer{
		Tachometer: t,
		stopwatch:  sw,
	}, nil
}

// StopWatch returns the underlying stopwatch.
func (t *StopWatchTachometer) StopWatch() *StopWatch {
	return t.stopwatch
}

// Enter starts a measurement.
func (t *StopWatchTachometer) Enter() *StopWatchTachometer {
	t.stopwatch.Enter()
	return t
}

// Exit records the measurement and runs the reporting heartbeat.
func (t *StopWatchTachometer) Exit() {
	t.stopwatch.Exit()
	t.Tachometer.Tick()
}

// Measure runs fn inside an Enter/Exit pair, recording even if fn panics.
func (t *StopWatchTachometer) Measure(fn func()) {
	defer t.Enter().Exit()
	fn()
}
