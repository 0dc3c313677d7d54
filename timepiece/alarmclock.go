package timepiece

// AlarmClock bundles schedules so that they can be ticked at once.
// Non-repeating schedules are dropped after they fire; removing a schedule
// is the way to cancel it.
type AlarmClock struct {
	schedules []Schedule
}

func NewAlarmClock(schedules ...Schedule) *AlarmClock {
	return &AlarmClock{
		schedules: append([]Schedule(nil), schedules...),
	}
}

// Add registers s. Schedules fire in registration order.
func (a *AlarmClock) Add(s Schedule) {
	a.schedules = append(a.schedules, s)
}

// Remove unregisters s and reports whether it was registered.
func (a *AlarmClock) Remove(s Schedule) bool {
	for i, cur := range a.schedules {
		if cur == s {
			a.schedules = append(a.schedules[:i], a.schedules[i+1:]...)
			return true
		}
	}
	return false
}

// Schedules returns the registered schedules.
func (a *AlarmClock) Schedules() []Schedule {
	return append([]Schedule(nil), a.schedules...)
}

// Len returns the number of registered schedules.
func (a *AlarmClock) Len() int {
	return len(a.schedules)
}

// Tick forwards the tick to every schedule and returns how many fired.
func (a *AlarmClock) Tick() int {
	var fired int
	var done []Schedule
	for _, s := range a.schedules {
		ok, _ := s.Tick()
		if !ok {
			continue
		}
		fired++
		if !s.Repeating() {
			done = append(done, s)
		}
	}
	for _, s := range done {
		a.Remove(s)
	}
	return fired
}
