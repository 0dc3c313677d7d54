// Package gstream provides GStreamer pipelines for package skyline.
//
// Frames are pushed into an appsrc element named "src" as raw BGR buffers.
// The rest of the pipeline is described by a PipelineFunc, such as the
// Pipeline method of RTSPStream or KVSStream.
package gstream

import (
	"errors"
	"fmt"
	"sync"

	"github.com/backpack-edge/backpack/skyline"
	log "github.com/sirupsen/logrus"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// SourceName is the name of the appsrc element of every pipeline
const SourceName = "src"

var (
	// ErrNotRawFrame is returned when writing a frame that does not expose its pixels.
	ErrNotRawFrame = errors.New("gstream: frame does not provide raw BGR bytes")
	// ErrFrameSize is returned when writing a frame that does not match the caps of the pipeline.
	ErrFrameSize = errors.New("gstream: frame size does not match the pipeline")
)

var initOnce sync.Once

// Init initializes GStreamer. It is safe to call it many times.
func Init() {
	initOnce.Do(func() { gst.Init(nil) })
}

// RawFrame is a frame exposing its pixels as packed 8 bit BGR.
type RawFrame interface {
	skyline.Frame
	Bytes() []byte
}

// PipelineFunc returns the launch definition of a pipeline for the given video parameters.
type PipelineFunc func(fps float64, width, height int) (string, error)

// Opener opens GStreamer pipelines.
type Opener struct {
	Pipeline PipelineFunc
}

func NewOpener(pipeline PipelineFunc) *Opener {
	return &Opener{Pipeline: pipeline}
}

// Open parses the pipeline, configures its source for BGR frames of the
// given size and sets it playing.
func (o *Opener) Open(fps float64, width, height int) (skyline.Writer, error) {
	Init()
	def, err := o.Pipeline(fps, width, height)
	if err != nil {
		return nil, err
	}
	pipeline, err := gst.NewPipelineFromString(def)
	if err != nil {
		return nil, fmt.Errorf("gstream: could not create pipeline: %w", err)
	}
	elem, err := pipeline.GetElementByName(SourceName)
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("gstream: pipeline has no appsrc named %q: %w", SourceName, err)
	}
	src := app.SrcFromElement(elem)
	src.SetCaps(gst.NewCapsFromString(RawCaps(fps, width, height)))
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("gstream: could not start pipeline: %w", err)
	}
	return &Writer{
		pipeline: pipeline,
		src:      src,
		width:    width,
		height:   height,
	}, nil
}

// Writer pushes frames into a playing pipeline.
type Writer struct {
	pipeline *gst.Pipeline
	src      *app.Source
	width    int
	height   int
}

// Write pushes f, which must be a RawFrame of the size of the pipeline.
func (w *Writer) Write(f skyline.Frame) error {
	raw, ok := f.(RawFrame)
	if !ok {
		return ErrNotRawFrame
	}
	if fw, fh := raw.Size(); fw != w.width || fh != w.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, fw, fh, w.width, w.height)
	}
	data := raw.Bytes()
	if len(data) != w.width*w.height*3 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(data), w.width*w.height*3)
	}
	if ret := w.src.PushBuffer(gst.NewBufferFromBytes(data)); ret != gst.FlowOK {
		return fmt.Errorf("gstream: push buffer returned %v", ret)
	}
	return nil
}

// Close sends end of stream and stops the pipeline.
func (w *Writer) Close() error {
	if ret := w.src.EndStream(); ret != gst.FlowOK {
		log.WithField("component", "gstream").Debugf("end of stream returned %v", ret)
	}
	return w.pipeline.SetState(gst.StateNull)
}

// RawCaps returns the caps of the frames pushed into the appsrc.
func RawCaps(fps float64, width, height int) string {
	return fmt.Sprintf("video/x-raw,format=BGR,width=%d,height=%d,framerate=%s", width, height, Framerate(fps))
}

// Framerate renders fps as a GStreamer fraction, rounded to whole frames.
func Framerate(fps float64) string {
	return fmt.Sprintf("%d/1", wholeFPS(fps))
}

// CheckPlugin returns an error if the element factory name can not be
// instantiated, e.g. when kvssink is not found on GST_PLUGIN_PATH.
func CheckPlugin(name string) error {
	Init()
	elem, err := gst.NewElement(name)
	if err != nil {
		return fmt.Errorf("gstream: plugin %q is not available: %w", name, err)
	}
	elem.SetState(gst.StateNull)
	return nil
}
