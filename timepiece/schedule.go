package timepiece

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Schedule runs a Callback when due, as observed by an external driver
// calling Tick periodically, e.g. from a frame processing loop.
// Nothing happens between ticks: a due schedule fires on the next Tick,
// so the firing precision is the polling interval of the driver.
type Schedule interface {
	// Tick is the heartbeat of the schedule. It returns true and the result
	// of the callback if the schedule fired. The result is nil for
	// callbacks dispatched to an Executor.
	Tick() (bool, any)
	// Fire runs the callback regardless of the schedule.
	Fire() any
	// Repeating reports whether the schedule keeps firing after the first time.
	Repeating() bool
}

// AtSchedule fires once, on the first tick after a deadline.
// SetAt re-arms it. The deadline may be changed from another goroutine
// than the one calling Tick.
type AtSchedule struct {
	callback Callback
	clk      clock.Clock

	sync.Mutex
	at    time.Time
	fired bool
}

// NewAtSchedule returns a schedule firing after at. A zero at leaves the
// schedule disarmed until SetAt. A nil clk means the wall clock.
func NewAtSchedule(at time.Time, cb Callback, clk clock.Clock) *AtSchedule {
	if clk == nil {
		clk = clock.New()
	}
	return &AtSchedule{
		callback: cb,
		clk:      clk,
		at:       at,
	}
}

// At returns the deadline, zero if disarmed.
func (s *AtSchedule) At() time.Time {
	s.Lock()
	defer s.Unlock()
	return s.at
}

// SetAt changes the deadline and re-arms the schedule.
// A zero at disarms it.
func (s *AtSchedule) SetAt(at time.Time) {
	s.Lock()
	s.at = at
	s.fired = false
	s.Unlock()
}

// Fired reports whether the schedule fired for the current deadline.
func (s *AtSchedule) Fired() bool {
	s.Lock()
	defer s.Unlock()
	return s.fired
}

func (s *AtSchedule) Repeating() bool { return false }

func (s *AtSchedule) Fire() any { return s.callback.Call() }

func (s *AtSchedule) Tick() (bool, any) {
	now := s.clk.Now()
	s.Lock()
	if s.fired || s.at.IsZero() || !now.After(s.at) {
		s.Unlock()
		return false, nil
	}
	// marked before firing so that a callback calling SetAt keeps its new deadline
	s.fired = true
	s.Unlock()
	return true, s.Fire()
}

// IntervalSchedule fires on the first tick, and then on each tick at least
// one period after the previous fire time. Missed periods are coalesced:
// after a long pause it fires once and the next fire time is the first
// multiple of period strictly after now.
type IntervalSchedule struct {
	callback Callback
	clk      clock.Clock
	period   time.Duration
	next     time.Time
}

// NewIntervalSchedule returns a schedule firing every period.
// A nil clk means the wall clock.
func NewIntervalSchedule(period time.Duration, cb Callback, clk clock.Clock) (*IntervalSchedule, error) {
	if period <= 0 {
		return nil, fmt.Errorf("timepiece: interval schedule period must be positive, got %s", period)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &IntervalSchedule{
		callback: cb,
		clk:      clk,
		period:   period,
	}, nil
}

// Period returns the interval between fires.
func (s *IntervalSchedule) Period() time.Duration {
	return s.period
}

// Next returns the next fire time, zero before the first tick.
func (s *IntervalSchedule) Next() time.Time {
	return s.next
}

func (s *IntervalSchedule) Repeating() bool { return true }

func (s *IntervalSchedule) Fire() any { return s.callback.Call() }

func (s *IntervalSchedule) Tick() (bool, any) {
	now := s.clk.Now()
	if s.next.IsZero() {
		s.next = now
	}
	fired := false
	var res any
	if !now.Before(s.next) {
		fired = true
		res = s.Fire()
	}
	s.advance(now)
	return fired, res
}

// advance moves next forward by whole periods until it is after now.
func (s *IntervalSchedule) advance(now time.Time) {
	if s.next.After(now) {
		return
	}
	missed := now.Sub(s.next)/s.period + 1
	s.next = s.next.Add(missed * s.period)
}

// OrdinalSchedule fires on every nth tick. The first tick never fires
// (unless n is 1). An OrdinalSchedule with n == 0 never fires.
type OrdinalSchedule struct {
	callback Callback
	n        int
	counter  int
}

// NewOrdinalSchedule returns a schedule firing once every n ticks.
func NewOrdinalSchedule(n int, cb Callback) (*OrdinalSchedule, error) {
	if n < 0 {
		return nil, fmt.Errorf("timepiece: ordinal must be greater or equal than zero, got %d", n)
	}
	return &OrdinalSchedule{
		callback: cb,
		n:        n,
	}, nil
}

// Ordinal returns n.
func (s *OrdinalSchedule) Ordinal() int {
	return s.n
}

func (s *OrdinalSchedule) Repeating() bool { return true }

func (s *OrdinalSchedule) Fire() any { return s.callback.Call() }

func (s *OrdinalSchedule) Tick() (bool, any) {
	if s.n == 0 {
		return false, nil
	}
	s.counter++
	if s.counter < s.n {
		return false, nil
	}
	s.counter = 0
	return true, s.Fire()
}
