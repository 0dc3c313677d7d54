package gstream

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// KVSPlugin is the GStreamer element of the Kinesis Video Streams producer
const KVSPlugin = "kvssink"

// PluginConfig provides the credential settings of kvssink.
type PluginConfig interface {
	// PluginConfig returns the kvssink properties carrying the credentials
	PluginConfig() string
	// Mask hides the credentials in def, for logging
	Mask(def string) string
}

// KVSStream sends frames to an AWS Kinesis Video Stream.
type KVSStream struct {
	Name        string
	Region      string
	StorageSize int // MB
	Credentials PluginConfig
}

// NewKVSStream returns a stream after checking kvssink can be loaded.
func NewKVSStream(name, region string, credentials PluginConfig) (*KVSStream, error) {
	if err := CheckPlugin(KVSPlugin); err != nil {
		return nil, fmt.Errorf("%w. check that it is installed and GST_PLUGIN_PATH points to it", err)
	}
	return &KVSStream{
		Name:        name,
		Region:      region,
		StorageSize: 512,
		Credentials: credentials,
	}, nil
}

// Pipeline is a PipelineFunc for the stream.
func (k *KVSStream) Pipeline(fps float64, width, height int) (string, error) {
	if fps <= 0 || width <= 0 || height <= 0 {
		return "", fmt.Errorf("gstream: invalid video parameters fps=%v width=%d height=%d", fps, width, height)
	}
	props := []string{
		fmt.Sprintf("storage-size=%d", k.StorageSize),
		fmt.Sprintf("stream-name=%q", k.Name),
		fmt.Sprintf("aws-region=%q", k.Region),
		fmt.Sprintf("framerate=%d", wholeFPS(fps)),
	}
	if k.Credentials != nil {
		if c := k.Credentials.PluginConfig(); c != "" {
			props = append(props, c)
		}
	}
	def := strings.Join([]string{
		appSource,
		"videoconvert",
		encodedCaps(fps, width, height),
		h264Encoder,
		h264Caps,
		KVSPlugin + " " + strings.Join(props, " "),
	}, " ! ")
	safe := def
	if k.Credentials != nil {
		safe = k.Credentials.Mask(def)
	}
	log.WithField("component", "gstream").Infof("KVS pipeline definition: %s", safe)
	return def, nil
}
