package timepiece

import (
	"golang.org/x/sync/errgroup"
)

// Executor runs submitted work, typically on another goroutine.
type Executor interface {
	Submit(fn func())
}

// Callback wraps a unit of work and an optional Executor.
type Callback struct {
	Action   func() any
	Executor Executor
}

// NewCallback returns a Callback calling fn on ex, or synchronously if ex is nil.
func NewCallback(fn func() any, ex Executor) Callback {
	return Callback{
		Action:   fn,
		Executor: ex,
	}
}

// Call runs the action. With an Executor the action is submitted and Call
// returns nil right away, otherwise it returns the result of the action.
func (c Callback) Call() any {
	if c.Action == nil {
		return nil
	}
	if c.Executor != nil {
		action := c.Action
		c.Executor.Submit(func() { action() })
		return nil
	}
	return c.Action()
}

// Async reports whether the callback is dispatched to an Executor.
func (c Callback) Async() bool {
	return c.Executor != nil
}

// Pool is an Executor running work on at most a fixed number of goroutines.
// Submit blocks only while all workers are busy.
type Pool struct {
	g errgroup.Group
}

// NewPool returns a Pool with the given number of workers.
// A non-positive number means no limit.
func NewPool(workers int) *Pool {
	p := &Pool{}
	if workers > 0 {
		p.g.SetLimit(workers)
	}
	return p
}

func (p *Pool) Submit(fn func()) {
	p.g.Go(func() error {
		fn()
		return nil
	})
}

// Wait blocks until all submitted work has completed.
func (p *Pool) Wait() {
	p.g.Wait()
}
