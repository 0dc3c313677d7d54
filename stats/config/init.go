package config

import (
	"context"
	"flag"
	"net"
	"strings"
	"time"

	"github.com/backpack-edge/backpack/stats"
	"github.com/grafana/globalconf"
	"github.com/raintank/dur"
	log "github.com/sirupsen/logrus"
)

var enabled bool
var prefix string
var addr string
var intervalStr string
var interval time.Duration
var bufferSize int
var timeout time.Duration

func ConfigSetup() {
	inStats := flag.NewFlagSet("stats", flag.ExitOnError)
	inStats.BoolVar(&enabled, "enabled", false, "enable sending graphite messages for instrumentation")
	inStats.StringVar(&prefix, "prefix", "backpack.stats.$instance", "stats prefix (will add trailing dot automatically if needed)")
	inStats.StringVar(&addr, "addr", "localhost:2003", "graphite address")
	inStats.StringVar(&intervalStr, "interval", "10s", "interval at which to send statistics")
	inStats.IntVar(&bufferSize, "buffer-size", 360, "how many messages (holding all measurements from one interval) to buffer up in case graphite endpoint is unavailable")
	inStats.DurationVar(&timeout, "timeout", 10*time.Second, "timeout after which a write is considered not successful")
	globalconf.Register("stats", inStats, flag.ExitOnError)
}

func ConfigProcess(instance string) {
	interval = time.Duration(dur.MustParseNDuration("stats.interval", intervalStr)) * time.Second
	if !enabled {
		return
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		log.Fatalf("stats: invalid addr %q: %s", addr, err)
	}
	if bufferSize < 1 {
		log.Fatalf("stats: buffer-size must be at least 1")
	}
	prefix = strings.Replace(prefix, "$instance", instance, -1)
}

func Start(ctx context.Context) {
	if !enabled {
		stats.NewDevnull(ctx)
		log.Warn("running backpack without instrumentation.")
		return
	}
	stats.NewMemoryReporter()
	if _, err := stats.NewProcessReporter(); err != nil {
		log.Warnf("stats: could not set up process reporter: %s", err)
	}
	stats.NewGraphite(ctx, prefix, addr, interval, bufferSize, timeout)
}
