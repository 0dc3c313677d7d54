package timepiece

import (
	"time"

	"github.com/benbjohnson/clock"
)

// LocalNow returns the current time of clk in the local time zone.
func LocalNow(clk clock.Clock) time.Time {
	return clk.Now().In(time.Local)
}

// FromPanoramaTimestamp converts a device media timestamp, expressed as
// seconds and microseconds since the epoch, to a time.Time.
func FromPanoramaTimestamp(sec, usec int64) time.Time {
	return time.Unix(sec, usec*int64(time.Microsecond))
}
