package gstream

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/subosito/gotenv"
)

// DotEnvName is the name of the file searched by FindDotEnv
const DotEnvName = ".env"

// FindDotEnv looks for a .env file in dir and its parents.
// It returns the empty string if there is none.
func FindDotEnv(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, DotEnvName)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadEnv reads the GStreamer environment from a .env file and applies it
// to the process environment: GST_PLUGIN_PATH and LD_PRELOAD are replaced,
// LD_LIBRARY_PATH is appended to the existing one.
// Other variables of the file are returned but not applied.
func LoadEnv(path string) (gotenv.Env, error) {
	os.Setenv("GST_DEBUG_NO_COLOR", "1")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gstream: dotenv configuration file was not found: %w", err)
	}
	defer f.Close()
	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("gstream: could not parse %s: %w", path, err)
	}
	log.WithField("component", "gstream").Infof("loaded env config from %s: %v", path, env)
	if v, ok := env["GST_PLUGIN_PATH"]; ok {
		os.Setenv("GST_PLUGIN_PATH", v)
	}
	if v, ok := env["LD_LIBRARY_PATH"]; ok {
		os.Setenv("LD_LIBRARY_PATH", MergePaths(os.Getenv("LD_LIBRARY_PATH"), v))
	}
	if v, ok := env["LD_PRELOAD"]; ok {
		os.Setenv("LD_PRELOAD", v)
	}
	return env, nil
}

// MergePaths joins colon separated path lists, dropping empty and duplicate
// elements while keeping the first occurrence order.
func MergePaths(lists ...string) string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, p := range strings.Split(list, ":") {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}

// CheckEnv logs the environment GStreamer runs with.
func CheckEnv() {
	logger := log.WithField("component", "gstream")
	check := func(name string, warn bool) {
		if v := os.Getenv(name); v != "" {
			logger.Infof("%s=%s", name, v)
		} else if warn {
			logger.Warnf("%s environment variable is not defined", name)
		}
	}
	check("GST_PLUGIN_PATH", true)
	check("LD_LIBRARY_PATH", true)
	check("GST_DEBUG", false)
	check("GST_DEBUG_FILE", false)

	now := time.Now()
	logger.Infof("local time on host: %s", now.Format(time.RFC3339))
	logger.Infof("UTC time on host: %s", now.UTC().Format(time.RFC3339))
}
