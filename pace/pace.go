// Package pace provides aligned tickers driving polling loops.
// An aligned ticker is a channel of time.Time "ticks" similar to time.Ticker,
// but the ticks are even multiples of the requested period, and are delivered
// as shortly as possible after the clock reaches these timestamps.
// For example, with period=100ms a frame loop is woken up shortly after every
// tenth of a second, and the values received are always these multiples.
// Both tickers stop and close their channel when ctx is done.
package pace

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// untilNext returns the next aligned tick after now and how long to wait for it
func untilNext(now time.Time, period time.Duration) (time.Time, time.Duration) {
	diff := period - (time.Duration(now.UnixNano()) % period)
	return now.Add(diff), diff
}

// sleep waits for d on clk, returning false if ctx got done first
func sleep(ctx context.Context, clk clock.Clock, d time.Duration) bool {
	t := clk.Timer(d)
	select {
	case <-ctx.Done():
		t.Stop()
		return false
	case <-t.C:
		return true
	}
}

// AlignedTickLossy returns an aligned ticker that may drop ticks
// (if the consumer is slow or the clock jumps forward)
func AlignedTickLossy(ctx context.Context, period time.Duration, clk clock.Clock) <-chan time.Time {
	if clk == nil {
		clk = clock.New()
	}
	c := make(chan time.Time)
	go func() {
		defer close(c)
		for {
			ideal, diff := untilNext(clk.Now(), period)
			if !sleep(ctx, clk, diff) {
				return
			}
			select {
			case c <- ideal:
			default:
			}
		}
	}()
	return c
}

// AlignedTickLossless returns an aligned ticker that waits for slow receivers,
// and backfills later as necessary to publish any pending ticks, at possibly
// a much more aggressive schedule. (keeps ticking until fully caught up)
// Note: clock jumps may still result in dropped ticks.
func AlignedTickLossless(ctx context.Context, period time.Duration, clk clock.Clock) <-chan time.Time {
	if clk == nil {
		clk = clock.New()
	}
	c := make(chan time.Time)
	nsec := (clk.Now().UnixNano() / int64(period)) * int64(period)
	next := time.Unix(0, nsec).Add(period)
	send := func() bool {
		select {
		case c <- next:
			next = next.Add(period)
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(c)
		for {
			now := clk.Now()

			// catch up if the consumer has run behind the clock
			for now.After(next) {
				if !send() {
					return
				}
				now = clk.Now()
			}

			if !sleep(ctx, clk, next.Sub(now)) || !send() {
				return
			}
		}
	}()
	return c
}
