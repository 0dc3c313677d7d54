package timepiece

import (
	"errors"
	"flag"
	"time"

	"github.com/grafana/globalconf"
	"github.com/raintank/dur"
	log "github.com/sirupsen/logrus"
)

// CliConfig is the tachometer configuration. It is instantiated with default values which can then be changed.
var CliConfig = NewConfig()

type Config struct {
	// StatsInterval is how often tachometers report
	StatsInterval time.Duration
	// Workers is the number of goroutines running asynchronous reports, 0 for synchronous reports
	Workers int

	statsIntervalStr string
}

func NewConfig() *Config {
	return &Config{
		StatsInterval:    DefaultStatsInterval,
		Workers:          1,
		statsIntervalStr: "1min",
	}
}

func (cfg *Config) Validate() error {
	if cfg.StatsInterval <= 0 {
		return errors.New("stats-interval must be positive")
	}
	if cfg.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	return nil
}

// Executor returns the executor for tachometer reports, nil for synchronous reports.
func (cfg *Config) Executor() Executor {
	if cfg.Workers == 0 {
		return nil
	}
	return NewPool(cfg.Workers)
}

// ConfigSetup sets up and registers a FlagSet in globalconf for tachometers and returns it
func ConfigSetup() *flag.FlagSet {
	fs := flag.NewFlagSet("tachometer", flag.ExitOnError)
	fs.StringVar(&CliConfig.statsIntervalStr, "stats-interval", CliConfig.statsIntervalStr, "interval at which tachometers report their statistics")
	fs.IntVar(&CliConfig.Workers, "workers", CliConfig.Workers, "goroutines sending the tachometer reports. 0 reports from the measured loop itself")
	globalconf.Register("tachometer", fs, flag.ExitOnError)
	return fs
}

// ConfigProcess parses and validates CliConfig. If an error is discovered this will exit with status set to 1.
func ConfigProcess() {
	CliConfig.StatsInterval = time.Duration(dur.MustParseNDuration("tachometer.stats-interval", CliConfig.statsIntervalStr)) * time.Second
	if err := CliConfig.Validate(); err != nil {
		log.Fatalf("tachometer: Config validation error. %s", err)
	}
}
