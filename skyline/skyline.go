// Package skyline streams frames to a video pipeline.
//
// A SkyLine is fed frames by the capture loop through Put, at the rate of the
// source. Frame rate and frame size of the output are static during a
// streaming session: they are either declared when calling StartStreaming, or
// measured during a warmup period over the first frames. The values of the
// last session are remembered, so a stream can be stopped and resumed without
// warming up again.
//
// The pipeline itself is provided by an Opener, see package gstream.
package skyline

import (
	"errors"
	"io"
	"math"
	"sync"

	"github.com/backpack-edge/backpack/stats"
	"github.com/backpack-edge/backpack/timepiece"
	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

const (
	// UseLast as fps, width or height means the value of the last streaming session.
	UseLast = -999
	// Auto as fps, width or height means the value is measured during the warmup.
	Auto = 0
)

// ErrNoWriter is reported when a frame is written while no pipeline is open.
var ErrNoWriter = errors.New("skyline: no pipeline is open")

var (
	// metric skyline.frames.put is the number of frames written to a pipeline
	framesPut = stats.NewCounter32("skyline.frames.put")
	// metric skyline.frames.dropped is the number of frames not written while not stopped
	framesDropped = stats.NewCounter32("skyline.frames.dropped")
	// metric skyline.pipeline.open_failures is the number of pipelines that could not be opened
	openFailures = stats.NewCounter32("skyline.pipeline.open_failures")
	// metric skyline.pipeline.write_failures is the number of frames the pipeline refused
	writeFailures = stats.NewCounter32("skyline.pipeline.write_failures")
	// metric skyline.streaming is the number of SkyLines currently streaming
	streaming = stats.NewGauge32("skyline.streaming")
	// metric skyline.pipeline.write is how long it takes to write a frame to the pipeline
	writeDuration = stats.NewLatencyHistogram15s32("skyline.pipeline.write")
)

// Frame is an image of the video. Concrete frames are produced and consumed
// by the Resizer and the Writer, SkyLine only looks at their size.
type Frame interface {
	Size() (width, height int)
}

// Resizer scales frames to the size of the video.
type Resizer interface {
	Resize(f Frame, width, height int) (Frame, error)
}

// Writer is an open pipeline.
type Writer interface {
	Write(f Frame) error
	Close() error
}

// Opener opens pipelines.
type Opener interface {
	Open(fps float64, width, height int) (Writer, error)
}

// SkyLine manages the lifecycle of a video pipeline fed frame by frame.
// All methods are safe for concurrent use.
type SkyLine struct {
	sync.Mutex
	cfg     Config
	opener  Opener
	resizer Resizer
	clk     clock.Clock
	log     *log.Entry
	warn    *throttle

	state     State
	meter     *timepiece.Ticker
	countdown int
	writer    Writer

	// parameters of the current session, Auto while unknown
	fps    float64
	width  int
	height int

	// parameters of the last successfully opened session
	lastFPS    float64
	lastWidth  int
	lastHeight int
}

// New returns a stopped SkyLine opening its pipelines with opener.
// A nil resizer passes the frames unchanged, a nil clk means the wall clock.
func New(name string, cfg Config, opener Opener, resizer Resizer, clk clock.Clock) *SkyLine {
	if clk == nil {
		clk = clock.New()
	}
	return &SkyLine{
		cfg:     cfg,
		opener:  opener,
		resizer: resizer,
		clk:     clk,
		log:     log.WithField("component", "skyline").WithField("stream", name),
		warn:    newThrottle(cfg.LogWindow, clk),
		meter:   timepiece.NewTicker(cfg.WarmupFrames+1, clk),
		state:   Stopped,
	}
}

// State returns the current state.
func (s *SkyLine) State() State {
	s.Lock()
	defer s.Unlock()
	return s.state
}

// Video returns the frame rate and frame size of the current session.
// Values not yet determined are Auto.
func (s *SkyLine) Video() (fps float64, width, height int) {
	s.Lock()
	defer s.Unlock()
	return s.fps, s.width, s.height
}

// Start is StartStreaming with the values of the last session.
func (s *SkyLine) Start() {
	s.StartStreaming(UseLast, UseLast, UseLast)
}

// StartStreaming (re)starts the streaming. Each parameter is either a declared
// value, UseLast or Auto; a negative value other than UseLast means Auto.
// If any value is left to be determined, a warmup is started, otherwise the
// pipeline is opened right away. A pipeline already open is closed first.
func (s *SkyLine) StartStreaming(fps float64, width, height int) {
	s.Lock()
	defer s.Unlock()

	s.fps = pickFPS(fps, s.lastFPS)
	s.width = pick(width, s.lastWidth)
	s.height = pick(height, s.lastHeight)
	s.closeStream()

	if s.fps == Auto || s.width == Auto || s.height == Auto {
		s.log.Info("starting frame rate meter warmup")
		s.setState(StartWarmup)
		return
	}
	s.log.Info("no frame rate meter warmup needed")
	s.tryOpen(s.fps, s.width, s.height)
}

func pickFPS(v, last float64) float64 {
	switch {
	case v == UseLast:
		return last
	case v < 0:
		return Auto
	}
	return v
}

func pick(v, last int) int {
	switch {
	case v == UseLast:
		return last
	case v < 0:
		return Auto
	}
	return v
}

// Put passes a frame to the stream. It returns true if the frame was
// effectively written to the pipeline. Frames put during the warmup are
// only measured. Errors are reported via the logs, rate limited.
func (s *SkyLine) Put(frame Frame) bool {
	s.Lock()
	defer s.Unlock()

	switch s.state {
	case Stopped:
		return false
	case Error:
		s.frameWarn("put-error", log.Fields{}, "put called in %s state", s.state)
	case StartWarmup:
		s.meter.Reset()
		s.meter.Tick()
		s.countdown = s.cfg.WarmupFrames
		s.setState(Warmup)
	case Warmup:
		s.meter.Tick()
		s.countdown--
		if s.countdown > 0 {
			break
		}
		fps, width, height := s.finishWarmup(frame)
		s.log.Infof("finished frame rate meter warmup. determined fps=%f, width=%d, height=%d", fps, width, height)
		if s.tryOpen(fps, width, height) {
			return s.putFrame(frame)
		}
	case Streaming:
		return s.putFrame(frame)
	}
	framesDropped.Inc()
	return false
}

// StopStreaming closes the pipeline. Frames put afterwards are discarded
// silently.
func (s *SkyLine) StopStreaming() {
	s.Lock()
	defer s.Unlock()
	s.closeStream()
	s.setState(Stopped)
}

// finishWarmup prefers the declared values over the measured ones
func (s *SkyLine) finishWarmup(frame Frame) (float64, int, int) {
	fps := s.fps
	if fps == Auto {
		fps = math.Round(s.meter.Freq())
	}
	fw, fh := frame.Size()
	width, height := s.width, s.height
	if width == Auto {
		width = fw
	}
	if height == Auto {
		height = fh
	}
	return fps, width, height
}

func (s *SkyLine) tryOpen(fps float64, width, height int) bool {
	s.fps, s.width, s.height = fps, width, height
	s.log.WithFields(log.Fields{"fps": fps, "width": width, "height": height}).Info("opening streaming pipeline")
	writer, err := s.opener.Open(fps, width, height)
	if err != nil {
		openFailures.Inc()
		s.log.Warnf("could not open streaming pipeline: %s", err)
		s.setState(Error)
		return false
	}
	s.writer = writer
	s.lastFPS, s.lastWidth, s.lastHeight = fps, width, height
	s.setState(Streaming)
	return true
}

func (s *SkyLine) closeStream() {
	if s.writer == nil {
		return
	}
	if err := s.writer.Close(); err != nil {
		s.log.Warnf("error closing streaming pipeline: %s", err)
	}
	s.writer = nil
}

func (s *SkyLine) putFrame(frame Frame) bool {
	if s.writer == nil {
		s.frameWarn("no-writer", log.Fields{}, "%s", ErrNoWriter)
		framesDropped.Inc()
		return false
	}
	out := frame
	if w, h := frame.Size(); s.resizer != nil && (w != s.width || h != s.height) {
		resized, err := s.resizer.Resize(frame, s.width, s.height)
		if err != nil {
			s.frameWarn("resize", log.Fields{"width": w, "height": h}, "could not resize frame: %s", err)
			framesDropped.Inc()
			return false
		}
		out = resized
		if c, ok := resized.(io.Closer); ok {
			defer c.Close()
		}
	}
	pre := s.clk.Now()
	err := s.writer.Write(out)
	writeDuration.Value(s.clk.Since(pre))
	if err != nil {
		writeFailures.Inc()
		framesDropped.Inc()
		s.frameWarn("write", log.Fields{}, "could not write frame to pipeline: %s", err)
		return false
	}
	framesPut.Inc()
	return true
}

func (s *SkyLine) setState(state State) {
	if state == s.state {
		return
	}
	if s.state == Streaming {
		streaming.Dec()
	}
	if state == Streaming {
		streaming.Inc()
	}
	s.log.Infof("state = %s", state)
	s.state = state
}

// frameWarn logs a warning at most once per log window and key
func (s *SkyLine) frameWarn(key string, fields log.Fields, format string, args ...interface{}) {
	if s.warn.allow(key) {
		s.log.WithFields(fields).Warnf(format, args...)
	}
}
