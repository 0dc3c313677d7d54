package stats

import (
	"context"
	"time"

	"github.com/backpack-edge/backpack/pace"
)

// NewDevnull reports all metrics every second and discards the result,
// which keeps the resetting metrics bounded when no real output is used.
func NewDevnull(ctx context.Context) {
	go func() {
		buf := make([]byte, 0)
		for now := range pace.AlignedTickLossy(ctx, time.Second, nil) {
			buf = registry.report(nil, buf[:0], now)
		}
	}()
}
