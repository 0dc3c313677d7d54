package pace

import (
	"context"
	"testing"
	"time"
)

func TestAlignedTickLossless(t *testing.T) {
	period := 100 * time.Millisecond
	lateToleration := 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// whatever time it is now, we expect the tick pointing to the next aligned tick
	tick := AlignedTickLossless(ctx, period, nil)
	now := time.Now()
	expTick := time.Unix(0, (1+now.UnixNano()/int64(period))*int64(period))
	select {
	case v0 := <-tick:
		if !v0.Equal(expTick) {
			t.Fatalf("expected v0 %v, got %v", expTick, v0)
		}
	case <-time.After(period + lateToleration):
		t.Fatalf("did not get tick v0 on time")
	}

	// sleep for 3 periods, we should then get these ticks immediately once we start consuming them
	time.Sleep(3 * period)

	for i := 1; i <= 3; i++ {
		expTick = expTick.Add(period)
		select {
		case v := <-tick:
			if !v.Equal(expTick) {
				t.Fatalf("expected v%d %v, got %v", i, expTick, v)
			}
		case <-time.After(lateToleration):
			t.Fatalf("did not get tick v%d on time", i)
		}
	}

	cancel()
	for range tick {
	}
}

func TestAlignedTickLossy(t *testing.T) {
	period := 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	tick := AlignedTickLossy(ctx, period, nil)

	v0 := <-tick
	if v0.UnixNano()%int64(period) != 0 {
		t.Fatalf("expected tick aligned to %v, got %v", period, v0)
	}

	// a slow consumer misses ticks rather than receiving a backlog
	time.Sleep(3 * period)
	v1 := <-tick
	if v1.Sub(v0) < 3*period {
		t.Fatalf("expected ticks in between to be dropped, got %v after %v", v1, v0)
	}

	cancel()
	for range tick {
	}
}
