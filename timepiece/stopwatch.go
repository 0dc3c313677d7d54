package timepiece

import (
	"strings"
	"time"

	"github.com/benbjohnson/clock"
)

// StopWatch is a named, hierarchical profiler.
// Each Enter/Exit pair records one interval. Children are created lazily
// with Child and keep their own intervals, so nested and serial sections
// can be measured at once:
//
//	root := NewStopWatch("root", 10, nil)
//	root.Measure(func() {
//		task := root.Child("task1")
//		task.Measure(step1)
//		task.Child("subtask").Measure(step2)
//	})
type StopWatch struct {
	*Intervals
	name     string
	parent   *StopWatch
	children map[string]*StopWatch
	order    []string
	clk      clock.Clock
	start    time.Time
}

// NewStopWatch returns a root StopWatch. A nil clk means the wall clock.
func NewStopWatch(name string, capacity int, clk clock.Clock) *StopWatch {
	if clk == nil {
		clk = clock.New()
	}
	return &StopWatch{
		Intervals: NewIntervals(capacity),
		name:      name,
		children:  make(map[string]*StopWatch),
		clk:       clk,
	}
}

// Name returns the name of the StopWatch
func (s *StopWatch) Name() string {
	return s.name
}

// Parent returns the StopWatch that created s, nil for a root.
func (s *StopWatch) Parent() *StopWatch {
	return s.parent
}

// Child returns the child called name, creating it with the capacity
// of s if it does not exist yet.
func (s *StopWatch) Child(name string) *StopWatch {
	return s.ChildWithCapacity(name, s.Cap())
}

// ChildWithCapacity is like Child but uses capacity for a newly created child.
// An existing child is returned as is.
func (s *StopWatch) ChildWithCapacity(name string, capacity int) *StopWatch {
	if c, ok := s.children[name]; ok {
		return c
	}
	c := NewStopWatch(name, capacity, s.clk)
	c.parent = s
	s.children[name] = c
	s.order = append(s.order, name)
	return c
}

// Children returns the children in creation order.
func (s *StopWatch) Children() []*StopWatch {
	out := make([]*StopWatch, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.children[name])
	}
	return out
}

// Parents returns the ancestors of s, closest first.
func (s *StopWatch) Parents() []*StopWatch {
	var out []*StopWatch
	for p := s.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

// Level returns the number of ancestors.
func (s *StopWatch) Level() int {
	return len(s.Parents())
}

// FullName returns the dot separated names from the root down to s.
func (s *StopWatch) FullName() string {
	parents := s.Parents()
	names := make([]string, len(parents)+1)
	names[len(parents)] = s.name
	for i, p := range parents {
		names[len(parents)-1-i] = p.name
	}
	return strings.Join(names, ".")
}

// Enter starts a measurement and returns s, so that
//
//	defer sw.Enter().Exit()
//
// measures the rest of the enclosing function.
func (s *StopWatch) Enter() *StopWatch {
	s.start = s.clk.Now()
	return s
}

// Exit records the time elapsed since Enter. Exit without Enter is a no-op.
func (s *StopWatch) Exit() {
	if s.start.IsZero() {
		return
	}
	s.Record(s.clk.Now().Sub(s.start).Seconds())
	s.start = time.Time{}
}

// Measure runs fn inside an Enter/Exit pair. The interval is recorded
// even if fn panics.
func (s *StopWatch) Measure(fn func()) {
	defer s.Enter().Exit()
	fn()
}

// Time is like Measure for functions that can fail.
func (s *StopWatch) Time(fn func() error) error {
	defer s.Enter().Exit()
	return fn()
}

// String renders s and its children, indented by depth.
func (s *StopWatch) String() string {
	var b strings.Builder
	s.render(&b)
	return b.String()
}

func (s *StopWatch) render(b *strings.Builder) {
	lvl := s.Level()
	indent := strings.Repeat("    ", lvl)
	if lvl > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	desc := s.describe("StopWatch", "name="+s.name)
	if len(s.order) == 0 {
		b.WriteString(desc)
		return
	}
	// splice the children in before the closing bracket
	b.WriteString(desc[:len(desc)-1])
	b.WriteString(" children=[")
	for i, c := range s.Children() {
		if i > 0 {
			b.WriteByte(',')
		}
		c.render(b)
	}
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString("]>")
}
