package stats

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/backpack-edge/backpack/pace"
	"github.com/jpillora/backoff"
	log "github.com/sirupsen/logrus"
)

var (
	queueItems      *Range32
	genDataDuration *Gauge32
	flushDuration   *LatencyHistogram15s32
	messageSize     *Gauge32
	connected       *Bool
)

// Graphite periodically sends all registered metrics to a carbon endpoint.
type Graphite struct {
	prefix []byte
	addr   string

	timeout    time.Duration
	toGraphite chan []byte
}

// NewGraphite starts reporting to addr every interval until ctx is done.
// bufferSize messages are held while the endpoint is unreachable.
func NewGraphite(ctx context.Context, prefix, addr string, interval time.Duration, bufferSize int, timeout time.Duration) *Graphite {
	if len(prefix) != 0 && prefix[len(prefix)-1] != '.' {
		prefix = prefix + "."
	}
	NewGauge32("stats.graphite.write_queue.size").Set(bufferSize)
	queueItems = NewRange32("stats.graphite.write_queue.items")
	// metric stats.generate_message is how long it takes to generate the stats
	genDataDuration = NewGauge32("stats.generate_message.duration")
	flushDuration = NewLatencyHistogram15s32("stats.graphite.flush")
	messageSize = NewGauge32("stats.message_size")
	connected = NewBool("stats.graphite.connected")

	g := &Graphite{
		prefix:     []byte(prefix),
		addr:       addr,
		toGraphite: make(chan []byte, bufferSize),
		timeout:    timeout,
	}
	go g.writer(ctx)
	go g.reporter(ctx, interval)
	return g
}

func (g *Graphite) reporter(ctx context.Context, interval time.Duration) {
	defer close(g.toGraphite)
	for now := range pace.AlignedTickLossy(ctx, interval, nil) {
		log.Debugf("stats flushing for %s to graphite", now)
		queueItems.Value(len(g.toGraphite))
		if cap(g.toGraphite) != 0 && len(g.toGraphite) == cap(g.toGraphite) {
			// no space in buffer, no use in doing any work
			continue
		}

		pre := time.Now()
		buf := registry.report(g.prefix, make([]byte, 0), now)
		genDataDuration.Set(int(time.Since(pre).Nanoseconds()))
		messageSize.Set(len(buf))

		select {
		case g.toGraphite <- buf:
		case <-ctx.Done():
			return
		}
		queueItems.Value(len(g.toGraphite))
	}
}

// writer submits the reports to graphite, one at a time, until the queue is closed.
// A report that could not be written is retried on a new connection.
func (g *Graphite) writer(ctx context.Context) {
	c := newCarbonConn(g.addr)
	defer c.close()
	for buf := range g.toGraphite {
		queueItems.Value(len(g.toGraphite))
		for {
			if !c.dial(ctx) {
				return
			}
			pre := time.Now()
			err := c.write(buf, g.timeout)
			if err == nil {
				flushDuration.Value(time.Since(pre))
				break
			}
			log.WithField("component", "stats").Warnf("failed to write to graphite: %s (took %s). will retry...", err, time.Since(pre))
			c.close()
		}
	}
}

// carbonConn is a plaintext carbon connection, redialed with backoff
type carbonConn struct {
	addr    string
	conn    net.Conn
	retry   *backoff.Backoff
	readers sync.WaitGroup
}

func newCarbonConn(addr string) *carbonConn {
	return &carbonConn{
		addr: addr,
		retry: &backoff.Backoff{
			Min:    time.Second,
			Max:    time.Minute,
			Factor: 2,
			Jitter: true,
		},
	}
}

// dial connects if needed and returns false if ctx got done first
func (c *carbonConn) dial(ctx context.Context) bool {
	for c.conn == nil {
		connected.Set(false)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.retry.Duration()):
		}
		conn, err := net.Dial("tcp", c.addr)
		if err != nil {
			log.WithField("component", "stats").Warnf("dialing %s failed: %s. will retry", c.addr, err)
			continue
		}
		log.WithField("component", "stats").Infof("now connected to %s", c.addr)
		c.retry.Reset()
		c.conn = conn
		c.readers.Add(1)
		go c.watch(conn)
	}
	connected.Set(true)
	return true
}

func (c *carbonConn) write(buf []byte, timeout time.Duration) error {
	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	_, err := c.conn.Write(buf)
	return err
}

func (c *carbonConn) close() {
	if c.conn == nil {
		return
	}
	c.conn.Close()
	c.readers.Wait()
	c.conn = nil
	connected.Set(false)
}

// watch reads from conn until it fails. Carbon never writes back, but a
// read is the only way to notice the remote closed the connection: writes
// keep succeeding locally while the peer answers with RST packets.
func (c *carbonConn) watch(conn net.Conn) {
	defer c.readers.Done()
	b := make([]byte, 1024)
	for {
		num, err := conn.Read(b)
		if num != 0 {
			log.WithField("component", "stats").Warnf("read unexpected data from %s: %s", c.addr, bytes.TrimSpace(b[:num]))
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			log.WithField("component", "stats").Infof("%s closed the connection", c.addr)
		} else {
			log.WithField("component", "stats").Debugf("connection to %s: %s", c.addr, err)
		}
		conn.Close()
		return
	}
}
