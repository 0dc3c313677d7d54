package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/backpack-edge/backpack/stats"
	"github.com/backpack-edge/backpack/timepiece"
	"github.com/benbjohnson/clock"
	"github.com/jpillora/backoff"
	log "github.com/sirupsen/logrus"
)

var (
	// metric credentials.refresh.ok is the number of successful credential refreshes
	refreshOK = stats.NewCounter32("credentials.refresh.ok")
	// metric credentials.refresh.failed is the number of failed credential refreshes
	refreshFailed = stats.NewCounter32("credentials.refresh.failed")
)

// Handler refreshes credentials and saves them for kvssink.
//
// Call CheckRefresh periodically, ideally with each frame sent to the stream.
// When the credentials are not due for a refresh it costs next to nothing.
type Handler struct {
	cfg      Config
	provider Provider
	clk      clock.Clock
	log      *log.Entry
	schedule *timepiece.AtSchedule

	sync.Mutex
	retry      *backoff.Backoff
	creds      Credentials
	nextUpdate time.Time
}

// NewHandler retrieves the credentials once and saves them. Refreshes run
// on ex; a nil ex means a dedicated single worker pool.
// An error is returned if the first retrieval or save fails.
func NewHandler(cfg Config, provider Provider, ex timepiece.Executor, clk clock.Clock) (*Handler, error) {
	if clk == nil {
		clk = clock.New()
	}
	if ex == nil {
		ex = timepiece.NewPool(1)
	}
	h := &Handler{
		cfg:      cfg,
		provider: provider,
		clk:      clk,
		log:      log.WithField("component", "credentials").WithField("mode", cfg.Mode.String()),
		retry: &backoff.Backoff{
			Min:    cfg.RetryMin,
			Max:    cfg.RetryMax,
			Factor: 2,
			Jitter: true,
		},
	}
	h.schedule = timepiece.NewAtSchedule(time.Time{}, timepiece.NewCallback(func() any {
		return h.refresh()
	}, ex), clk)
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h, nil
}

// CheckRefresh refreshes the credentials if they are due.
func (h *Handler) CheckRefresh() {
	h.schedule.Tick()
}


// Credentials returns the last retrieved credentials.
func (h *Handler) Credentials() Credentials {
	h.Lock()
	defer h.Unlock()
	return h.creds
}

// NextUpdate returns when the credentials will be refreshed, zero if never.
func (h *Handler) NextUpdate() time.Time {
	h.Lock()
	defer h.Unlock()
	return h.nextUpdate
}

// PluginConfig returns the kvssink properties passing the credentials.
func (h *Handler) PluginConfig() string {
	h.Lock()
	defer h.Unlock()
	return pluginConfig(h.cfg.Mode, h.cfg.Path, h.creds)
}

// Mask hides credentials in a pipeline definition, for logging.
func (h *Handler) Mask(def string) string {
	return Mask(def)
}

func (h *Handler) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.Timeout)
	defer cancel()
	creds, err := h.provider.Retrieve(ctx)
	if err == nil && creds.Refreshable() && h.cfg.Mode == Inline {
		err = ErrRefreshableInline
	}
	var nextUpdate time.Time
	if err == nil {
		nextUpdate = h.plan(creds)
		err = h.save(creds, nextUpdate)
	}

	h.Lock()
	defer h.Unlock()
	if err != nil {
		refreshFailed.Inc()
		wait := h.retry.Duration()
		h.log.Warnf("could not refresh credentials: %s. will retry in %s", err, wait)
		h.schedule.SetAt(h.clk.Now().Add(wait))
		return err
	}
	refreshOK.Inc()
	h.retry.Reset()
	h.creds = creds
	h.nextUpdate = nextUpdate
	h.schedule.SetAt(nextUpdate)
	return nil
}

// plan returns the next update of creds, zero for static credentials
func (h *Handler) plan(creds Credentials) time.Time {
	if !creds.Refreshable() {
		h.log.Infof("credentials are static: %s", creds)
		return time.Time{}
	}
	h.log.Infof("got credentials: %s", creds)
	next := creds.Expiry.Add(-h.cfg.RefreshBefore)
	h.log.Infof("next update: %s", FormatTime(next))
	if now := timepiece.LocalNow(h.clk); next.Before(now) {
		h.log.Warnf("next update time is in the past! current_time=%s, next_update=%s, expiry=%s",
			FormatTime(now), FormatTime(next), FormatTime(creds.Expiry))
	}
	return next
}

func (h *Handler) save(creds Credentials, nextUpdate time.Time) error {
	switch h.cfg.Mode {
	case File:
		if err := writeFile(h.cfg.Path, fileContent(creds, nextUpdate, h.cfg.Grace)); err != nil {
			return fmt.Errorf("credentials: could not write %s: %w", h.cfg.Path, err)
		}
		if !nextUpdate.IsZero() {
			h.log.Infof("credentials file expiration: %s", FormatTime(nextUpdate.Add(h.cfg.Grace)))
		}
		h.log.Infof("updated %s", h.cfg.Path)
	case Environment:
		setEnv(creds)
	case Inline:
	default:
		return fmt.Errorf("credentials: unknown mode %s", h.cfg.Mode)
	}
	return nil
}
