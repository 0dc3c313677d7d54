package skyline

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

// throttle allows one event per key and window
type throttle struct {
	sync.Mutex
	clk      clock.Clock
	window   time.Duration
	limiters map[string]*rate.Limiter
}

func newThrottle(window time.Duration, clk clock.Clock) *throttle {
	return &throttle{
		clk:      clk,
		window:   window,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (t *throttle) allow(key string) bool {
	if t.window <= 0 {
		return true
	}
	t.Lock()
	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.window), 1)
		t.limiters[key] = l
	}
	t.Unlock()
	return l.AllowN(t.clk.Now(), 1)
}
