package gstream

import (
	"errors"
	"flag"
	"os"

	"github.com/grafana/globalconf"
	log "github.com/sirupsen/logrus"
)

// CliConfig is the GStreamer configuration. It is instantiated with default values which can then be changed.
var CliConfig = NewConfig()

type Config struct {
	DotEnv       string
	GstDebug     string
	GstDebugFile string

	RTSPPort     int
	LoopbackPort int

	KVSStream string
	KVSRegion string
}

func NewConfig() *Config {
	return &Config{
		RTSPPort:     8554,
		LoopbackPort: 5000,
		KVSRegion:    "us-east-1",
	}
}

func (cfg *Config) Validate() error {
	if cfg.RTSPPort < 1 || cfg.RTSPPort > 65535 {
		return errors.New("rtsp-port must be a valid port number")
	}
	if cfg.LoopbackPort < 1 || cfg.LoopbackPort > 65535 {
		return errors.New("loopback-port must be a valid port number")
	}
	return nil
}

// ConfigSetup sets up and registers a FlagSet in globalconf for gstream and returns it
func ConfigSetup() *flag.FlagSet {
	fs := flag.NewFlagSet("gstream", flag.ExitOnError)
	fs.StringVar(&CliConfig.DotEnv, "dotenv", CliConfig.DotEnv, "path of the .env file holding GST_PLUGIN_PATH, LD_LIBRARY_PATH and LD_PRELOAD. searched in the working directory and its parents if empty")
	fs.StringVar(&CliConfig.GstDebug, "gst-debug", CliConfig.GstDebug, "GStreamer log level configuration (GST_DEBUG)")
	fs.StringVar(&CliConfig.GstDebugFile, "gst-debug-file", CliConfig.GstDebugFile, "redirect GStreamer logs to this file (GST_DEBUG_FILE)")
	fs.IntVar(&CliConfig.RTSPPort, "rtsp-port", CliConfig.RTSPPort, "port of the RTSP server")
	fs.IntVar(&CliConfig.LoopbackPort, "loopback-port", CliConfig.LoopbackPort, "first loopback UDP port relaying the RTSP streams")
	fs.StringVar(&CliConfig.KVSStream, "kvs-stream", CliConfig.KVSStream, "name of the Kinesis Video Stream")
	fs.StringVar(&CliConfig.KVSRegion, "kvs-region", CliConfig.KVSRegion, "AWS region of the Kinesis Video Stream")
	globalconf.Register("gstream", fs, flag.ExitOnError)
	return fs
}

// ConfigProcess validates CliConfig and prepares the GStreamer environment.
// If an error is discovered this will exit with status set to 1.
func ConfigProcess() {
	if err := CliConfig.Validate(); err != nil {
		log.Fatalf("gstream: Config validation error. %s", err)
	}
	if CliConfig.GstDebugFile != "" {
		os.Setenv("GST_DEBUG_FILE", CliConfig.GstDebugFile)
	}
	if CliConfig.GstDebug != "" {
		os.Setenv("GST_DEBUG", CliConfig.GstDebug)
	}
	path := CliConfig.DotEnv
	if path == "" {
		path = FindDotEnv(".")
	}
	if path == "" {
		log.WithField("component", "gstream").Warn("dotenv configuration file was not found")
	} else if _, err := LoadEnv(path); err != nil {
		log.WithField("component", "gstream").Warn(err.Error())
	}
	CheckEnv()
}
