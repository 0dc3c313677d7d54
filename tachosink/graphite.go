package tachosink

import (
	"io"
	"sync"
	"time"

	"github.com/backpack-edge/backpack/stats"
	"github.com/backpack-edge/backpack/timepiece"
	log "github.com/sirupsen/logrus"
	"github.com/spenczar/tdigest"
)

var graphiteQuantiles = []struct {
	key string
	q   float64
}{
	{"p50", 0.50},
	{"p90", 0.90},
	{"p99", 0.99},
}

// Graphite writes the statistics of each report as carbon plaintext lines
// <prefix>.<name>.<stat> <value> <unix ts>
type Graphite struct {
	prefix []byte
	w      io.Writer
	log    *log.Entry

	sync.Mutex
	buf []byte
}

func NewGraphite(prefix, name string, w io.Writer) *Graphite {
	p := name + "."
	if prefix != "" {
		if prefix[len(prefix)-1] != '.' {
			prefix += "."
		}
		p = prefix + p
	}
	return &Graphite{
		prefix: []byte(p),
		w:      w,
		log:    log.WithField("component", "tachosink").WithField("metric", name),
	}
}

// Lines renders the statistics of timer.
func (g *Graphite) Lines(buf []byte, ts time.Time, timer timepiece.Timer) []byte {
	buf = stats.WriteUint64(buf, g.prefix, []byte("count"), uint64(timer.Len()), ts)
	buf = stats.WriteFloat64(buf, g.prefix, []byte("sum"), timer.Sum(), ts)
	buf = stats.WriteFloat64(buf, g.prefix, []byte("min"), timer.Min(), ts)
	buf = stats.WriteFloat64(buf, g.prefix, []byte("mean"), timer.Mean(), ts)
	buf = stats.WriteFloat64(buf, g.prefix, []byte("max"), timer.Max(), ts)
	td := tdigest.New()
	for _, v := range timer.Values() {
		td.Add(v, 1)
	}
	for _, q := range graphiteQuantiles {
		buf = stats.WriteFloat64(buf, g.prefix, []byte(q.key), td.Quantile(q.q), ts)
	}
	return buf
}

// Stats writes the lines and returns them. Write errors are logged.
func (g *Graphite) Stats(ts time.Time, timer timepiece.Timer) any {
	g.Lock()
	defer g.Unlock()
	g.buf = g.Lines(g.buf[:0], ts, timer)
	out := append([]byte(nil), g.buf...)
	if g.w == nil {
		return out
	}
	if _, err := g.w.Write(g.buf); err != nil {
		g.log.Warnf("could not write stats: %s", err)
	}
	return out
}
