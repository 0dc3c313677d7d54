package gstream

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Localhost is the interface RTSP streams are relayed on
const Localhost = "127.0.0.1"

// PortAllocator hands out the loopback UDP ports relaying RTSP streams
// to the server. Streams sharing a server must share an allocator.
type PortAllocator struct {
	sync.Mutex
	next int
}

// NewPortAllocator returns an allocator starting at first.
func NewPortAllocator(first int) *PortAllocator {
	return &PortAllocator{next: first}
}

// Next returns a port not handed out before.
func (p *PortAllocator) Next() int {
	p.Lock()
	defer p.Unlock()
	port := p.next
	p.next++
	return port
}

// RTSPStream encodes frames to H.264 and sends the RTP packets to a
// loopback port, where the RTSP server picks them up.
type RTSPStream struct {
	Path string
	Port int
}

// NewRTSPStream returns a stream served at path, taking its loopback port from ports.
func NewRTSPStream(path string, ports *PortAllocator) *RTSPStream {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &RTSPStream{
		Path: path,
		Port: ports.Next(),
	}
}

// Pipeline is a PipelineFunc for the application side of the stream.
func (r *RTSPStream) Pipeline(fps float64, width, height int) (string, error) {
	if fps <= 0 || width <= 0 || height <= 0 {
		return "", fmt.Errorf("gstream: invalid video parameters fps=%v width=%d height=%d", fps, width, height)
	}
	def := strings.Join([]string{
		appSource,
		"queue",
		"videoconvert",
		encodedCaps(fps, width, height),
		h264Encoder,
		h264Caps,
		"h264parse",
		"rtph264pay",
		fmt.Sprintf("udpsink host=%s port=%d", Localhost, r.Port),
	}, " ! ")
	log.WithField("component", "gstream").Infof("RTSP application pipeline definition: %s", def)
	return def, nil
}

// ServerPipeline is the launch line a RTSP server uses to serve the stream.
func (r *RTSPStream) ServerPipeline() string {
	return strings.Join([]string{
		fmt.Sprintf("udpsrc port=%d", r.Port),
		"application/x-rtp,media=video,encoding-name=H264",
		"rtph264depay",
		"rtph264pay name=pay0",
	}, " ! ")
}

// Mounts tracks the streams of a RTSP server by mount path.
type Mounts struct {
	sync.Mutex
	port    int
	streams map[string]string
}

// NewMounts returns the mounts of a server listening on port.
func NewMounts(port int) *Mounts {
	return &Mounts{
		port:    port,
		streams: make(map[string]string),
	}
}

func (m *Mounts) Port() int {
	return m.port
}

// Add registers the server pipeline of a stream.
func (m *Mounts) Add(stream *RTSPStream) {
	m.Lock()
	m.streams[stream.Path] = stream.ServerPipeline()
	m.Unlock()
	log.WithField("component", "gstream").Infof("adding pipeline to mount point %q", stream.Path)
}

// Remove unregisters the stream at path.
func (m *Mounts) Remove(path string) {
	m.Lock()
	delete(m.streams, path)
	m.Unlock()
}

// Pipeline returns the server pipeline mounted at path.
func (m *Mounts) Pipeline(path string) (string, bool) {
	m.Lock()
	defer m.Unlock()
	p, ok := m.streams[path]
	return p, ok
}

// URLs returns the URLs of the streams, sorted.
func (m *Mounts) URLs() []string {
	m.Lock()
	urls := make([]string, 0, len(m.streams))
	for path := range m.streams {
		urls = append(urls, fmt.Sprintf("rtsp://%s:%d%s", Localhost, m.port, path))
	}
	m.Unlock()
	sort.Strings(urls)
	return urls
}

func (m *Mounts) String() string {
	return "<Mounts streams=[" + strings.Join(m.URLs(), ", ") + "]>"
}
