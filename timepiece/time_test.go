package timepiece

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestFromPanoramaTimestamp(t *testing.T) {
	got := FromPanoramaTimestamp(1600000000, 250000)
	exp := time.Unix(1600000000, 250*int64(time.Millisecond))
	if !got.Equal(exp) {
		t.Fatalf("expected %s, got %s", exp, got)
	}
}

func TestLocalNow(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(90 * time.Second)
	got := LocalNow(mock)
	if got.Location() != time.Local {
		t.Fatalf("expected local time, got %s", got.Location())
	}
	if got.Unix() != 90 {
		t.Fatalf("expected unix time 90, got %d", got.Unix())
	}
}

func TestConfigExecutor(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %s", err)
	}
	if cfg.Executor() == nil {
		t.Fatalf("expected a pool with the default config")
	}
	cfg.Workers = 0
	if cfg.Executor() != nil {
		t.Fatalf("expected synchronous reports without workers")
	}
}
