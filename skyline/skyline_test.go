package skyline

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/smartystreets/goconvey/convey"
)

var errTest = errors.New("test error")

type fakeFrame struct {
	w, h   int
	closed bool
}

func (f *fakeFrame) Size() (int, int) { return f.w, f.h }

func (f *fakeFrame) Close() error {
	f.closed = true
	return nil
}

type fakeWriter struct {
	frames []Frame
	err    error
	closed bool
}

func (w *fakeWriter) Write(f Frame) error {
	if w.err != nil {
		return w.err
	}
	w.frames = append(w.frames, f)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type openCall struct {
	fps           float64
	width, height int
}

type fakeOpener struct {
	calls   []openCall
	writers []*fakeWriter
	err     error
}

func (o *fakeOpener) Open(fps float64, width, height int) (Writer, error) {
	o.calls = append(o.calls, openCall{fps, width, height})
	if o.err != nil {
		return nil, o.err
	}
	w := &fakeWriter{}
	o.writers = append(o.writers, w)
	return w, nil
}

func (o *fakeOpener) last() *fakeWriter {
	return o.writers[len(o.writers)-1]
}

type fakeResizer struct {
	resized []*fakeFrame
	err     error
}

func (r *fakeResizer) Resize(f Frame, width, height int) (Frame, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := &fakeFrame{w: width, h: height}
	r.resized = append(r.resized, out)
	return out, nil
}

func TestWarmup(t *testing.T) {
	Convey("Given a SkyLine without declared parameters", t, func() {
		mock := clock.NewMock()
		opener := &fakeOpener{}
		s := New("test", NewConfig(), opener, nil, mock)
		So(s.State(), ShouldEqual, Stopped)

		Convey("frames are discarded while stopped", func() {
			So(s.Put(&fakeFrame{w: 640, h: 480}), ShouldBeFalse)
			So(s.State(), ShouldEqual, Stopped)
		})

		Convey("starting the streaming starts a warmup", func() {
			s.Start()
			So(s.State(), ShouldEqual, StartWarmup)
			So(opener.calls, ShouldBeEmpty)

			Convey("frame rate and size are measured over the warmup frames", func() {
				frame := &fakeFrame{w: 640, h: 480}
				So(s.Put(frame), ShouldBeFalse)
				So(s.State(), ShouldEqual, Warmup)
				for i := 1; i < 100; i++ {
					mock.Add(time.Second / 15)
					So(s.Put(frame), ShouldBeFalse)
				}
				So(s.State(), ShouldEqual, Warmup)
				mock.Add(time.Second / 15)
				So(s.Put(frame), ShouldBeTrue)
				So(s.State(), ShouldEqual, Streaming)
				So(opener.calls, ShouldResemble, []openCall{{15, 640, 480}})
				fps, width, height := s.Video()
				So(fps, ShouldEqual, 15)
				So(width, ShouldEqual, 640)
				So(height, ShouldEqual, 480)
				So(opener.last().frames, ShouldHaveLength, 1)

				Convey("and streaming goes on", func() {
					So(s.Put(frame), ShouldBeTrue)
					So(opener.last().frames, ShouldHaveLength, 2)
				})
				Convey("a restart reuses the measured values", func() {
					s.StopStreaming()
					So(opener.last().closed, ShouldBeTrue)
					s.Start()
					So(s.State(), ShouldEqual, Streaming)
					So(opener.calls, ShouldResemble, []openCall{{15, 640, 480}, {15, 640, 480}})
				})
			})
		})
	})

	Convey("Given a SkyLine with a declared frame rate", t, func() {
		mock := clock.NewMock()
		opener := &fakeOpener{}
		cfg := NewConfig()
		cfg.WarmupFrames = 3
		s := New("test", cfg, opener, nil, mock)
		s.StartStreaming(25, Auto, Auto)
		So(s.State(), ShouldEqual, StartWarmup)

		Convey("only the frame size is measured", func() {
			frame := &fakeFrame{w: 320, h: 200}
			for i := 0; i < 3; i++ {
				mock.Add(time.Second)
				So(s.Put(frame), ShouldBeFalse)
			}
			mock.Add(time.Second)
			So(s.Put(frame), ShouldBeTrue)
			So(opener.calls, ShouldResemble, []openCall{{25, 320, 200}})
		})
	})
}

func TestStreaming(t *testing.T) {
	Convey("Given a SkyLine started with declared parameters", t, func() {
		mock := clock.NewMock()
		opener := &fakeOpener{}
		resizer := &fakeResizer{}
		s := New("test", NewConfig(), opener, resizer, mock)
		s.StartStreaming(15, 600, 400)

		Convey("the pipeline is opened without warmup", func() {
			So(s.State(), ShouldEqual, Streaming)
			So(opener.calls, ShouldResemble, []openCall{{15, 600, 400}})
		})
		Convey("frames of the video size are written as is", func() {
			frame := &fakeFrame{w: 600, h: 400}
			So(s.Put(frame), ShouldBeTrue)
			So(opener.last().frames[0], ShouldPointTo, frame)
			So(resizer.resized, ShouldBeEmpty)
		})
		Convey("other frames are resized and the resized copy released", func() {
			So(s.Put(&fakeFrame{w: 1280, h: 720}), ShouldBeTrue)
			So(resizer.resized, ShouldHaveLength, 1)
			So(opener.last().frames[0], ShouldPointTo, resizer.resized[0])
			So(resizer.resized[0].closed, ShouldBeTrue)
		})
		Convey("a resize failure drops the frame", func() {
			resizer.err = errTest
			So(s.Put(&fakeFrame{w: 1280, h: 720}), ShouldBeFalse)
			So(s.State(), ShouldEqual, Streaming)
		})
		Convey("a write failure drops the frame but keeps streaming", func() {
			opener.last().err = errTest
			So(s.Put(&fakeFrame{w: 600, h: 400}), ShouldBeFalse)
			So(s.State(), ShouldEqual, Streaming)
			opener.last().err = nil
			So(s.Put(&fakeFrame{w: 600, h: 400}), ShouldBeTrue)
		})
		Convey("restarting closes the previous pipeline", func() {
			first := opener.last()
			s.StartStreaming(30, UseLast, UseLast)
			So(first.closed, ShouldBeTrue)
			So(s.State(), ShouldEqual, Streaming)
			So(opener.calls[1], ShouldResemble, openCall{30, 600, 400})
		})
		Convey("restarting with auto values warms up again", func() {
			s.StartStreaming(UseLast, Auto, UseLast)
			So(s.State(), ShouldEqual, StartWarmup)
			fps, width, height := s.Video()
			So(fps, ShouldEqual, 15)
			So(width, ShouldEqual, Auto)
			So(height, ShouldEqual, 400)
		})
		Convey("stopping discards frames", func() {
			s.StopStreaming()
			So(s.State(), ShouldEqual, Stopped)
			So(opener.last().closed, ShouldBeTrue)
			So(s.Put(&fakeFrame{w: 600, h: 400}), ShouldBeFalse)
			s.StopStreaming()
			So(s.State(), ShouldEqual, Stopped)
		})
	})
}

func TestOpenFailure(t *testing.T) {
	Convey("Given a pipeline that can not be opened", t, func() {
		opener := &fakeOpener{err: errTest}
		s := New("test", NewConfig(), opener, nil, clock.NewMock())
		s.StartStreaming(15, 600, 400)

		Convey("the SkyLine is in error and discards frames", func() {
			So(s.State(), ShouldEqual, Error)
			for i := 0; i < 5; i++ {
				So(s.Put(&fakeFrame{w: 600, h: 400}), ShouldBeFalse)
			}
			So(s.State(), ShouldEqual, Error)
		})
		Convey("nothing is remembered for the next session", func() {
			s.StopStreaming()
			So(s.State(), ShouldEqual, Stopped)
			opener.err = nil
			s.Start()
			So(s.State(), ShouldEqual, StartWarmup)
		})
		Convey("a restart can succeed", func() {
			opener.err = nil
			s.StartStreaming(15, 600, 400)
			So(s.State(), ShouldEqual, Streaming)
		})
	})
}

func TestThrottle(t *testing.T) {
	Convey("a throttle allows one event per key and window", t, func() {
		mock := clock.NewMock()
		th := newThrottle(time.Minute, mock)
		So(th.allow("a"), ShouldBeTrue)
		So(th.allow("a"), ShouldBeFalse)
		So(th.allow("b"), ShouldBeTrue)
		mock.Add(30 * time.Second)
		So(th.allow("a"), ShouldBeFalse)
		mock.Add(31 * time.Second)
		So(th.allow("a"), ShouldBeTrue)
		So(th.allow("a"), ShouldBeFalse)
	})
	Convey("a zero window allows everything", t, func() {
		th := newThrottle(0, clock.NewMock())
		So(th.allow("a"), ShouldBeTrue)
		So(th.allow("a"), ShouldBeTrue)
	})
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Error:       "ERROR",
		Stopped:     "STOPPED",
		StartWarmup: "START_WARMUP",
		Warmup:      "WARMUP",
		Streaming:   "STREAMING",
		State(7):    "State(7)",
	}
	for state, exp := range cases {
		if state.String() != exp {
			t.Fatalf("expected %q, got %q", exp, state.String())
		}
	}
}
