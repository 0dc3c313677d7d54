package stats

import (
	"time"

	"github.com/Dieterbe/artisanalhistogram/hist15s"
)

// LatencyHistogram15s32 tracks latency measurements up to 15s as 32 bit counters,
// e.g. how long pushing a frame into a pipeline takes
type LatencyHistogram15s32 struct {
	hist hist15s.Hist15s
}

func NewLatencyHistogram15s32(name string) *LatencyHistogram15s32 {
	return registry.getOrAdd(name, &LatencyHistogram15s32{
		hist: hist15s.New(),
	}).(*LatencyHistogram15s32)
}

func (l *LatencyHistogram15s32) Value(t time.Duration) {
	l.hist.AddDuration(t)
}

// ReportGraphite reports the summaries in milliseconds
func (l *LatencyHistogram15s32) ReportGraphite(prefix, buf []byte, now time.Time) []byte {
	snap := l.hist.Snapshot()
	r, ok := l.hist.Report(snap)
	if ok {
		buf = WriteUint32(buf, prefix, []byte("latency.min.gauge32"), r.Min/1000, now)
		buf = WriteUint32(buf, prefix, []byte("latency.mean.gauge32"), r.Mean/1000, now)
		buf = WriteUint32(buf, prefix, []byte("latency.median.gauge32"), r.Median/1000, now)
		buf = WriteUint32(buf, prefix, []byte("latency.p75.gauge32"), r.P75/1000, now)
		buf = WriteUint32(buf, prefix, []byte("latency.p90.gauge32"), r.P90/1000, now)
		buf = WriteUint32(buf, prefix, []byte("latency.max.gauge32"), r.Max/1000, now)
		buf = WriteUint32(buf, prefix, []byte("values.count32"), r.Count, now)
	}
	return buf
}
