// Package feed fetches the external live occupancy feed.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"parkkean-backend/config"
	"parkkean-backend/internal/observability"
	"parkkean-backend/internal/parse"
)

// maxBodyBytes caps how much of a feed response is read.
const maxBodyBytes = 8 << 20

// Client fetches and normalizes live lot snapshots. Its configuration is fixed at construction.
type Client struct {
	cfg     config.FeedConfig
	client  *http.Client
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewClient creates a feed client. metrics may be nil. The request deadline is applied per call
// from cfg.Timeout rather than on the http.Client.
func NewClient(cfg config.FeedConfig, metrics *observability.Metrics, clock clockwork.Clock) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Feed client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultFeedTimeoutMS * time.Millisecond
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Transport: transport},
		metrics: metrics,
		clock:   clock,
	}
}

// Enabled reports whether a feed URL is configured.
func (c *Client) Enabled() bool {
	return c.cfg.URL != ""
}

// FetchSnapshot performs one bounded GET against the feed. It returns the
// normalized lots and true, or nil and false when there is no usable data.
// Failures are logged, never returned.
func (c *Client) FetchSnapshot(ctx context.Context) ([]parse.LiveLot, bool) {
	if !c.Enabled() {
		c.record(observability.OutcomeDisabled)
		return nil, false
	}

	target, err := url.Parse(c.cfg.URL)
	if err != nil || !target.IsAbs() || target.Host == "" {
		log.Printf("Warning: live feed URL %q is not an absolute URL; skipping fetch", c.cfg.URL)
		c.record(observability.OutcomeInvalidURL)
		return nil, false
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
		}
	}()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		log.Printf("Error creating live feed request: %v", err)
		c.record(observability.OutcomeError)
		return nil, false
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.fail(reqCtx, "request", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Error fetching live feed: unexpected status %d", resp.StatusCode)
		c.record(observability.OutcomeBadStatus)
		return nil, false
	}

	var payload any
	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		if reqCtx.Err() != nil {
			c.fail(reqCtx, "read", err)
		} else {
			log.Printf("Error decoding live feed response: %v", err)
			c.record(observability.OutcomeDecodeError)
		}
		return nil, false
	}

	lots := parse.NormalizeLots(payload, c.clock.Now(), c.cfg.Location)
	if len(lots) == 0 {
		log.Printf("Live feed returned no usable lots")
		c.record(observability.OutcomeEmpty)
		return nil, false
	}

	c.record(observability.OutcomeSuccess)
	if c.metrics != nil {
		c.metrics.FeedLots.Observe(float64(len(lots)))
	}
	return lots, true
}

func (c *Client) fail(reqCtx context.Context, stage string, err error) {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		log.Printf("Live feed %s timed out after %s", stage, c.cfg.Timeout)
		c.record(observability.OutcomeTimeout)
		return
	}
	log.Printf("Error during live feed %s: %v", stage, err)
	c.record(observability.OutcomeError)
}

func (c *Client) record(outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.FeedFetches.WithLabelValues(outcome).Inc()
}
