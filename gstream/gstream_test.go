package gstream

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeCredentials struct{}

func (fakeCredentials) PluginConfig() string {
	return `access-key="AKIA1234" secret-key="s3cr3t"`
}

func (fakeCredentials) Mask(def string) string {
	def = strings.Replace(def, "AKIA1234", "*****", -1)
	return strings.Replace(def, "s3cr3t", "*****", -1)
}

func TestRTSPStream(t *testing.T) {
	Convey("Given RTSP streams sharing a port allocator", t, func() {
		ports := NewPortAllocator(5000)
		s1 := NewRTSPStream("stream1", ports)
		s2 := NewRTSPStream("/stream2", ports)

		Convey("paths start with a slash and ports are distinct", func() {
			So(s1.Path, ShouldEqual, "/stream1")
			So(s2.Path, ShouldEqual, "/stream2")
			So(s1.Port, ShouldEqual, 5000)
			So(s2.Port, ShouldEqual, 5001)
		})
		Convey("the application pipeline sends H.264 RTP to the loopback port", func() {
			def, err := s2.Pipeline(15, 640, 480)
			So(err, ShouldBeNil)
			So(def, ShouldEqual, "appsrc name=src is-live=true do-timestamp=true format=time ! queue ! videoconvert ! "+
				"video/x-raw,format=I420,width=640,height=480,framerate=15/1 ! "+
				"x264enc bframes=0 key-int-max=45 bitrate=500 tune=zerolatency ! "+
				"video/x-h264,stream-format=avc,alignment=au,profile=baseline ! h264parse ! rtph264pay ! "+
				"udpsink host=127.0.0.1 port=5001")
		})
		Convey("invalid parameters are rejected", func() {
			_, err := s1.Pipeline(0, 640, 480)
			So(err, ShouldNotBeNil)
		})
		Convey("the server pipeline reads from the loopback port", func() {
			So(s1.ServerPipeline(), ShouldEqual, "udpsrc port=5000 ! application/x-rtp,media=video,encoding-name=H264 ! rtph264depay ! rtph264pay name=pay0")
		})
		Convey("mounts list the stream URLs", func() {
			m := NewMounts(8554)
			m.Add(s2)
			m.Add(s1)
			So(m.URLs(), ShouldResemble, []string{"rtsp://127.0.0.1:8554/stream1", "rtsp://127.0.0.1:8554/stream2"})
			p, ok := m.Pipeline("/stream1")
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, s1.ServerPipeline())
			m.Remove("/stream1")
			So(m.String(), ShouldEqual, "<Mounts streams=[rtsp://127.0.0.1:8554/stream2]>")
		})
	})
}

func TestKVSStream(t *testing.T) {
	Convey("a KVS pipeline carries the stream settings and the credential config", t, func() {
		k := &KVSStream{Name: "front door", Region: "eu-west-1", StorageSize: 512, Credentials: fakeCredentials{}}
		def, err := k.Pipeline(14.6, 1280, 720)
		So(err, ShouldBeNil)
		So(def, ShouldEndWith, `kvssink storage-size=512 stream-name="front door" aws-region="eu-west-1" framerate=15 access-key="AKIA1234" secret-key="s3cr3t"`)
		So(def, ShouldContainSubstring, "framerate=15/1")
	})
	Convey("a KVS pipeline without credential config", t, func() {
		k := &KVSStream{Name: "s", Region: "r", StorageSize: 128}
		def, err := k.Pipeline(10, 10, 10)
		So(err, ShouldBeNil)
		So(def, ShouldEndWith, `kvssink storage-size=128 stream-name="s" aws-region="r" framerate=10`)
	})
}

func TestCaps(t *testing.T) {
	cases := []struct {
		fps  float64
		exp  string
		caps string
	}{
		{15, "15/1", "video/x-raw,format=BGR,width=4,height=2,framerate=15/1"},
		{29.97, "30/1", "video/x-raw,format=BGR,width=4,height=2,framerate=30/1"},
		{0.4, "0/1", "video/x-raw,format=BGR,width=4,height=2,framerate=0/1"},
	}
	for _, c := range cases {
		if got := Framerate(c.fps); got != c.exp {
			t.Fatalf("framerate of %v: expected %q, got %q", c.fps, c.exp, got)
		}
		if got := RawCaps(c.fps, 4, 2); got != c.caps {
			t.Fatalf("caps of %v: expected %q, got %q", c.fps, c.caps, got)
		}
	}
}

func TestMergePaths(t *testing.T) {
	cases := []struct {
		in  []string
		exp string
	}{
		{[]string{"", ""}, ""},
		{[]string{"/usr/lib", ""}, "/usr/lib"},
		{[]string{"/usr/lib:/opt/lib", "/opt/kvs/lib"}, "/usr/lib:/opt/lib:/opt/kvs/lib"},
		{[]string{"/usr/lib::/opt/lib", "/opt/lib:/usr/lib"}, "/usr/lib:/opt/lib"},
	}
	for _, c := range cases {
		if got := MergePaths(c.in...); got != c.exp {
			t.Fatalf("MergePaths(%q): expected %q, got %q", c.in, c.exp, got)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	Convey("Given a .env file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, DotEnvName)
		content := "GST_PLUGIN_PATH=/opt/kvs/build\nLD_LIBRARY_PATH=/opt/kvs/open-source/local/lib\nOTHER=x\n"
		So(os.WriteFile(path, []byte(content), 0644), ShouldBeNil)
		t.Setenv("GST_PLUGIN_PATH", "")
		t.Setenv("LD_LIBRARY_PATH", "/usr/lib:/opt/kvs/open-source/local/lib")
		t.Setenv("LD_PRELOAD", "")
		t.Setenv("GST_DEBUG_NO_COLOR", "")

		Convey("it is found from a sub directory", func() {
			sub := filepath.Join(dir, "a", "b")
			So(os.MkdirAll(sub, 0755), ShouldBeNil)
			So(FindDotEnv(sub), ShouldEqual, path)
		})
		Convey("loading it applies the GStreamer variables", func() {
			env, err := LoadEnv(path)
			So(err, ShouldBeNil)
			So(env["OTHER"], ShouldEqual, "x")
			So(os.Getenv("GST_PLUGIN_PATH"), ShouldEqual, "/opt/kvs/build")
			So(os.Getenv("LD_LIBRARY_PATH"), ShouldEqual, "/usr/lib:/opt/kvs/open-source/local/lib")
			So(os.Getenv("LD_PRELOAD"), ShouldEqual, "")
			So(os.Getenv("OTHER"), ShouldEqual, "")
		})
		Convey("a missing file is an error", func() {
			_, err := LoadEnv(filepath.Join(dir, "missing"))
			So(err, ShouldNotBeNil)
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
		})
	})
}
