package credentials

import (
	"errors"
	"flag"
	"time"

	"github.com/grafana/globalconf"
	"github.com/raintank/dur"
	log "github.com/sirupsen/logrus"
)

// RefreshBeforeExpiration is how long before their expiry credentials are refreshed by default
const RefreshBeforeExpiration = 2 * time.Minute

// FileRefreshGrace is added to the next update to declare the expiration of the
// credentials file, giving the refresh some time to complete before kvssink
// reads the file again.
const FileRefreshGrace = time.Minute

// CliConfig is the credentials configuration. It is instantiated with default values which can then be changed.
var CliConfig = NewConfig()

type Config struct {
	Mode          Mode
	Path          string
	Grace         time.Duration
	RefreshBefore time.Duration
	Timeout       time.Duration
	RetryMin      time.Duration
	RetryMax      time.Duration

	// static credentials, taken from the environment if empty
	AccessKey string
	SecretKey string

	modeStr          string
	graceStr         string
	refreshBeforeStr string
}

func NewConfig() *Config {
	return &Config{
		Mode:             File,
		Path:             "/tmp/credentials.txt",
		Grace:            FileRefreshGrace,
		RefreshBefore:    RefreshBeforeExpiration,
		Timeout:          10 * time.Second,
		RetryMin:         100 * time.Millisecond,
		RetryMax:         5 * time.Minute,
		modeStr:          "file",
		graceStr:         "1min",
		refreshBeforeStr: "2min",
	}
}

func (cfg *Config) Validate() error {
	if cfg.Mode == File && cfg.Path == "" {
		return errors.New("path is required in file mode")
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	if cfg.RetryMin <= 0 || cfg.RetryMax < cfg.RetryMin {
		return errors.New("retry-min must be greater than 0 and not greater than retry-max")
	}
	return nil
}

// Provider returns the static credentials if configured, the environment otherwise.
func (cfg *Config) Provider() Provider {
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		return Static{AccessKey: cfg.AccessKey, SecretKey: cfg.SecretKey}
	}
	return Env{}
}

// ConfigSetup sets up and registers a FlagSet in globalconf for credentials and returns it
func ConfigSetup() *flag.FlagSet {
	fs := flag.NewFlagSet("credentials", flag.ExitOnError)
	fs.StringVar(&CliConfig.modeStr, "mode", CliConfig.modeStr, "how credentials are passed to kvssink (file|env|inline)")
	fs.StringVar(&CliConfig.Path, "path", CliConfig.Path, "path of the kvssink credentials file in file mode")
	fs.StringVar(&CliConfig.graceStr, "file-grace", CliConfig.graceStr, "declared expiration of the credentials file after their next update")
	fs.StringVar(&CliConfig.refreshBeforeStr, "refresh-before", CliConfig.refreshBeforeStr, "refresh credentials so long before they expire")
	fs.DurationVar(&CliConfig.Timeout, "timeout", CliConfig.Timeout, "timeout of a credentials retrieval")
	fs.DurationVar(&CliConfig.RetryMin, "retry-min", CliConfig.RetryMin, "first wait after a failed refresh")
	fs.DurationVar(&CliConfig.RetryMax, "retry-max", CliConfig.RetryMax, "maximum wait after failed refreshes")
	fs.StringVar(&CliConfig.AccessKey, "access-key", CliConfig.AccessKey, "static AWS access key id. not recommended outside of tests")
	fs.StringVar(&CliConfig.SecretKey, "secret-key", CliConfig.SecretKey, "static AWS secret access key. not recommended outside of tests")
	globalconf.Register("credentials", fs, flag.ExitOnError)
	return fs
}

// ConfigProcess parses and validates CliConfig. If an error is discovered this will exit with status set to 1.
func ConfigProcess() {
	mode, err := ParseMode(CliConfig.modeStr)
	if err != nil {
		log.Fatalf("credentials: Config validation error. %s", err)
	}
	CliConfig.Mode = mode
	CliConfig.Grace = time.Duration(dur.MustParseNDuration("credentials.file-grace", CliConfig.graceStr)) * time.Second
	CliConfig.RefreshBefore = time.Duration(dur.MustParseNDuration("credentials.refresh-before", CliConfig.refreshBeforeStr)) * time.Second
	if err := CliConfig.Validate(); err != nil {
		log.Fatalf("credentials: Config validation error. %s", err)
	}
}
