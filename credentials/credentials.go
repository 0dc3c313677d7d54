// Package credentials keeps the AWS credentials of the Kinesis Video Streams
// producer up to date.
//
// A Handler retrieves credentials from a Provider and hands them over to
// kvssink in one of three ways (see Mode). Refreshable credentials are
// refreshed some time before they expire: the refresh is scheduled on a
// timepiece.AtSchedule that the frame loop ticks by calling CheckRefresh.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Credentials is a set of AWS credentials.
// Static credentials have no token and a zero Expiry.
type Credentials struct {
	AccessKey string
	SecretKey string
	Token     string
	Expiry    time.Time
}

// Refreshable reports whether the credentials expire.
func (c Credentials) Refreshable() bool {
	return !c.Expiry.IsZero()
}

// String hides all but the first characters of the secrets.
func (c Credentials) String() string {
	if !c.Refreshable() {
		return fmt.Sprintf("<Credentials access_key=%s secret_key=%s>", prefix(c.AccessKey), prefix(c.SecretKey))
	}
	return fmt.Sprintf("<Credentials access_key=%s secret_key=%s token=%s expiry=%s>",
		prefix(c.AccessKey), prefix(c.SecretKey), prefix(c.Token), FormatTime(c.Expiry))
}

func prefix(s string) string {
	if len(s) <= 5 {
		return s + "..."
	}
	return s[:5] + "..."
}

// TimeFormat is the layout of expiration times in the kvssink credentials file
const TimeFormat = "2006-01-02T15:04:05Z"

// FormatTime renders t in UTC with TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Provider retrieves credentials.
type Provider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// ErrNoCredentials is returned by providers that have no credentials to give.
var ErrNoCredentials = errors.New("credentials: no credentials found")

// Static always provides the same credentials.
type Static Credentials

func (s Static) Retrieve(ctx context.Context) (Credentials, error) {
	if s.AccessKey == "" || s.SecretKey == "" {
		return Credentials{}, ErrNoCredentials
	}
	return Credentials(s), nil
}

// Env provides the credentials of the standard AWS environment variables.
// AWS_CREDENTIAL_EXPIRATION, in RFC 3339 format, makes them refreshable.
type Env struct{}

func (Env) Retrieve(ctx context.Context) (Credentials, error) {
	c := Credentials{
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Token:     os.Getenv("AWS_SESSION_TOKEN"),
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return Credentials{}, ErrNoCredentials
	}
	if exp := os.Getenv("AWS_CREDENTIAL_EXPIRATION"); exp != "" {
		t, err := time.Parse(time.RFC3339, exp)
		if err != nil {
			return Credentials{}, fmt.Errorf("credentials: invalid AWS_CREDENTIAL_EXPIRATION: %w", err)
		}
		c.Expiry = t
	}
	return c, nil
}
