// Package timepiece measures code execution time and schedules work in an
// external event loop.
//
// Nothing in this package starts a goroutine or a timer of its own. Timers
// (Ticker, StopWatch) record durations when told to, schedules (AtSchedule,
// IntervalSchedule, OrdinalSchedule) only fire from within Tick, and a
// Tachometer only reports from within its Tick. The caller drives all of
// them, typically once per processed frame or from a polling loop.
// The only concurrency is opt-in: a Callback with an Executor submits its
// work to that executor instead of running it inline.
//
// Time comes from an injected clock.Clock, so tests can use clock.NewMock.
// Intervals are measured on the monotonic reading of the clock, while
// AtSchedule deadlines are compared as wall clock times.
package timepiece
