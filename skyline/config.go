package skyline

import (
	"errors"
	"flag"
	"time"

	"github.com/grafana/globalconf"
	log "github.com/sirupsen/logrus"
)

// CliConfig is the SkyLine configuration. It is instantiated with default values which can then be changed.
var CliConfig = NewConfig()

// Config holds the settings shared by all SkyLine instances
type Config struct {
	// frames put during the warmup before the frame rate is determined
	WarmupFrames int
	// at most one identical warning per LogWindow
	LogWindow time.Duration
}

// NewConfig returns a Config with default values set.
func NewConfig() Config {
	return Config{
		WarmupFrames: 100,
		LogWindow:    time.Minute,
	}
}

func (cfg Config) Validate() error {
	if cfg.WarmupFrames < 1 {
		return errors.New("warmup-frames must be at least 1")
	}
	if cfg.LogWindow < 0 {
		return errors.New("log-window must not be negative")
	}
	return nil
}

// ConfigSetup sets up and registers a FlagSet in globalconf for skyline and returns it
func ConfigSetup() *flag.FlagSet {
	fs := flag.NewFlagSet("skyline", flag.ExitOnError)
	fs.IntVar(&CliConfig.WarmupFrames, "warmup-frames", CliConfig.WarmupFrames, "number of frames used to measure the frame rate and size when they are not declared")
	fs.DurationVar(&CliConfig.LogWindow, "log-window", CliConfig.LogWindow, "minimum interval between two identical per-frame warnings")
	globalconf.Register("skyline", fs, flag.ExitOnError)
	return fs
}

// ConfigProcess validates CliConfig. If an error is discovered this will exit with status set to 1.
func ConfigProcess() {
	if err := CliConfig.Validate(); err != nil {
		log.Fatalf("skyline: Config validation error. %s", err)
	}
}
