package credentials

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrRefreshableInline is returned when inline mode is used with refreshable
// credentials: once passed to kvssink they can not be refreshed.
var ErrRefreshableInline = errors.New("credentials: inline mode must not be used with refreshable credentials")

// Mode is how credentials are passed to kvssink.
type Mode int

const (
	// File writes the credentials to a file kvssink reads through its
	// credential-path property. It works with refreshable credentials.
	File Mode = iota
	// Environment exports the AWS_* environment variables. kvssink does not
	// read them again, so refreshed credentials are not picked up.
	Environment
	// Inline puts static credentials in the kvssink properties.
	Inline
)

func (m Mode) String() string {
	switch m {
	case File:
		return "file"
	case Environment:
		return "env"
	case Inline:
		return "inline"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the names returned by String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "file":
		return File, nil
	case "env", "environment":
		return Environment, nil
	case "inline":
		return Inline, nil
	}
	return 0, fmt.Errorf("credentials: unknown mode %q (file|env|inline)", s)
}

var (
	secretKeyRe = regexp.MustCompile(`secret-key="[^"]*"`)
	accessKeyRe = regexp.MustCompile(`access-key="[^"]*"`)
)

// Mask hides inline credentials in a pipeline definition.
func Mask(def string) string {
	def = secretKeyRe.ReplaceAllString(def, `secret-key="*****"`)
	return accessKeyRe.ReplaceAllString(def, `access-key="*****"`)
}

// pluginConfig returns the kvssink properties of the mode
func pluginConfig(m Mode, path string, c Credentials) string {
	switch m {
	case File:
		return fmt.Sprintf("credential-path=%q", path)
	case Inline:
		return fmt.Sprintf("access-key=%q secret-key=%q", c.AccessKey, c.SecretKey)
	}
	return ""
}

// fileContent is the kvssink credentials file format. The declared
// expiration of refreshable credentials is their next update plus grace.
func fileContent(c Credentials, nextUpdate time.Time, grace time.Duration) string {
	if nextUpdate.IsZero() {
		return strings.Join([]string{"CREDENTIALS", c.AccessKey, c.SecretKey}, "\t")
	}
	return strings.Join([]string{
		"CREDENTIALS",
		c.AccessKey,
		FormatTime(nextUpdate.Add(grace)),
		c.SecretKey,
		c.Token,
	}, "\t")
}

// writeFile replaces path atomically
func writeFile(path, content string) error {
	tmp, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func setEnv(c Credentials) {
	os.Setenv("AWS_ACCESS_KEY_ID", c.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", c.SecretKey)
	if c.Refreshable() {
		os.Setenv("AWS_SESSION_TOKEN", c.Token)
	}
}
