// backpack-demo streams a synthetic test pattern to a RTSP loopback or to an
// AWS Kinesis Video Stream, and reports the frame rate and the processing
// time of the frame loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/backpack-edge/backpack/credentials"
	"github.com/backpack-edge/backpack/cvframe"
	"github.com/backpack-edge/backpack/gstream"
	"github.com/backpack-edge/backpack/logger"
	"github.com/backpack-edge/backpack/pace"
	"github.com/backpack-edge/backpack/skyline"
	statsConfig "github.com/backpack-edge/backpack/stats/config"
	"github.com/backpack-edge/backpack/tachosink"
	"github.com/backpack-edge/backpack/timepiece"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/grafana/globalconf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	version = "(none)"

	instance    = flag.String("instance", "", "instance identifier, used in stream names and emitted metrics. generated if empty")
	showVersion = flag.Bool("version", false, "print version string")
	confFile    = flag.String("config", "/etc/backpack/backpack.ini", "configuration file path")
	logLevel    = flag.String("log-level", "info", "log level. panic|fatal|error|warning|info|debug")

	mode         = flag.String("mode", "rtsp", "where to stream the test pattern. rtsp|kvs")
	sourceFPS    = flag.Float64("source-fps", 15, "frame rate of the test pattern")
	sourceWidth  = flag.Int("source-width", 640, "width of the test pattern")
	sourceHeight = flag.Int("source-height", 480, "height of the test pattern")
	metricsAddr  = flag.String("metrics-addr", ":9100", "address of the prometheus /metrics endpoint. empty to disable")
)

func main() {
	flag.Parse()

	// if the user just wants the version, give it and exit
	if *showVersion {
		fmt.Printf("backpack-demo (version: %s - runtime: %s)\n", version, runtime.Version())
		return
	}

	// Only try and parse the conf file if it exists
	path := ""
	if _, err := os.Stat(*confFile); err == nil {
		path = *confFile
	}
	config, err := globalconf.NewWithOptions(&globalconf.Options{
		Filename:  path,
		EnvPrefix: "BP_",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: configuration file error: %s", err)
		os.Exit(1)
	}

	skyline.ConfigSetup()
	timepiece.ConfigSetup()
	credentials.ConfigSetup()
	gstream.ConfigSetup()
	statsConfig.ConfigSetup()

	config.ParseAll()

	formatter := &logger.TextFormatter{}
	formatter.TimestampFormat = logger.DefaultTimestampFormat
	log.SetFormatter(formatter)
	lvl, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("failed to parse log-level, %s", err.Error())
	}
	log.SetLevel(lvl)
	log.Infof("logging level set to '%s'", *logLevel)

	if *instance == "" {
		*instance = uuid.New().String()[:8]
	}
	if *sourceFPS <= 0 || *sourceWidth <= 0 || *sourceHeight <= 0 {
		log.Fatalf("invalid test pattern %vfps %dx%d", *sourceFPS, *sourceWidth, *sourceHeight)
	}

	skyline.ConfigProcess()
	timepiece.ConfigProcess()
	gstream.ConfigProcess()
	statsConfig.ConfigProcess(*instance)
	if *mode == "kvs" {
		credentials.ConfigProcess()
	}

	log.Infof("backpack-demo %s starting, instance %s", version, *instance)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	statsConfig.Start(ctx)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				log.Errorf("metrics endpoint failed: %s", err)
			}
		}()
	}

	gstream.Init()
	clk := clock.New()
	alarm := timepiece.NewAlarmClock()

	var opener *gstream.Opener
	switch *mode {
	case "rtsp":
		mounts := gstream.NewMounts(gstream.CliConfig.RTSPPort)
		stream := gstream.NewRTSPStream(*instance, gstream.NewPortAllocator(gstream.CliConfig.LoopbackPort))
		mounts.Add(stream)
		log.Infof("serve the stream with a RTSP server: %s", mounts)
		for _, u := range mounts.URLs() {
			log.Infof("stream will be available at %s", u)
		}
		opener = gstream.NewOpener(stream.Pipeline)
	case "kvs":
		handler, err := credentials.NewHandler(*credentials.CliConfig, credentials.CliConfig.Provider(), nil, clk)
		if err != nil {
			log.Fatalf("could not get credentials: %s", err)
		}
		name := gstream.CliConfig.KVSStream
		if name == "" {
			name = "backpack-" + *instance
		}
		kvs, err := gstream.NewKVSStream(name, gstream.CliConfig.KVSRegion, handler)
		if err != nil {
			log.Fatal(err.Error())
		}
		opener = gstream.NewOpener(kvs.Pipeline)
		refresh, err := timepiece.NewOrdinalSchedule(1, timepiece.NewCallback(func() any {
			handler.CheckRefresh()
			return nil
		}, nil))
		if err != nil {
			log.Fatal(err.Error())
		}
		alarm.Add(refresh)
	default:
		log.Fatalf("unknown mode %q. rtsp|kvs", *mode)
	}

	ex := timepiece.CliConfig.Executor()
	interval := timepiece.CliConfig.StatsInterval
	frames, err := timepiece.NewTickerTachometer(sinks("frame_interval", *instance), interval, ex, clk)
	if err != nil {
		log.Fatal(err.Error())
	}
	loop, err := timepiece.NewStopWatchTachometer(sinks("frame_processing", *instance), interval, ex, clk)
	if err != nil {
		log.Fatal(err.Error())
	}
	// reports are also due when no frame goes through
	alarm.Add(frames.Schedule())
	alarm.Add(loop.Schedule())

	sky := skyline.New(*instance, skyline.CliConfig, opener, cvframe.NewResizer(), clk)
	sky.StartStreaming(skyline.Auto, skyline.Auto, skyline.Auto)

	pattern := cvframe.NewPattern(*sourceWidth, *sourceHeight)
	period := time.Duration(float64(time.Second) / *sourceFPS)
	for ts := range pace.AlignedTickLossy(ctx, period, clk) {
		loop.Measure(func() {
			frame := pattern.Next(ts)
			defer frame.Close()
			if sky.Put(frame) {
				frames.Tick()
			}
		})
		alarm.Tick()
	}

	log.Info("shutting down")
	sky.StopStreaming()
	frames.Flush()
	loop.Flush()
	if p, ok := ex.(*timepiece.Pool); ok {
		p.Wait()
	}
	log.Info("terminating backpack-demo")
}

// sinks reports a tachometer to prometheus and to the debug log in graphite format
func sinks(name, instance string) timepiece.StatsFunc {
	prom := tachosink.NewPrometheus("backpack", name, nil)
	graphite := tachosink.NewGraphite("backpack.demo."+instance, name, debugWriter{})
	return func(ts time.Time, timer timepiece.Timer) any {
		prom.Stats(ts, timer)
		return graphite.Stats(ts, timer)
	}
}

type debugWriter struct{}

func (debugWriter) Write(p []byte) (int, error) {
	log.WithField("component", "tachometer").Debug(string(p))
	return len(p), nil
}
