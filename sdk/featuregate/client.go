// Package featuregate is a client SDK for the feature gate service. It
// resolves flags over the public HTTP API, caches verdicts locally and polls
// the config version so admin changes surface before the TTL runs out.
package featuregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v5"
)

const (
	// DefaultTTL matches the server-side verdict cache.
	DefaultTTL = 5 * time.Minute
	// DefaultPollInterval is how often the config version is checked.
	DefaultPollInterval = 15 * time.Second
)

// Options configures the Client
type Options struct {
	// TTL bounds how long a cached verdict may serve; default 5 minutes
	CacheTTL time.Duration
	// PollInterval is how often the config version is checked; default 15s
	PollInterval time.Duration
	// HTTPClient overrides the default client, mainly for tests
	HTTPClient *http.Client
	// SubscriptionTier, when set, is sent with every status request so the
	// server can skip its own tier lookup
	SubscriptionTier string
	// Optional callback fired when a version change drops the local cache
	OnChange func(version int64)
}

// Client is a feature gate SDK instance
type Client struct {
	mu       sync.RWMutex
	baseURL  string
	http     *http.Client
	ttl      time.Duration
	interval time.Duration
	tier     string
	onChange func(int64)

	lastVersion int64
	// local verdict cache: flag key + "::" + user id
	verdicts map[string]verdict

	cancelRoot context.CancelFunc
	wg         sync.WaitGroup
}

type verdict struct {
	enabled bool
	fetched time.Time
}

type statusResponse struct {
	FlagKey string `json:"flag_key"`
	Enabled bool   `json:"enabled"`
}

type versionResponse struct {
	Version int64 `json:"version"`
}

// New creates and starts a Client. baseURL must point at the public API,
// e.g. http://gate.internal:8081.
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("baseURL must be an absolute http(s) URL")
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     client,
		ttl:      ttl,
		interval: interval,
		tier:     opts.SubscriptionTier,
		onChange: opts.OnChange,
		verdicts: make(map[string]verdict),
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	c.cancelRoot = cancelRoot

	// start version poller
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runPoller(rootCtx)
	}()

	return c, nil
}

// Close stops the background poller
func (c *Client) Close() error {
	if c.cancelRoot != nil {
		c.cancelRoot()
	}
	c.wg.Wait()
	return nil
}

// IsEnabled resolves a flag for a user. Unknown flags and transport trouble
// resolve to false, so the result is always safe to act on.
func (c *Client) IsEnabled(ctx context.Context, flagKey string, userID string) bool {
	key := flagKey + "::" + userID

	c.mu.RLock()
	v, ok := c.verdicts[key]
	c.mu.RUnlock()
	if ok && time.Since(v.fetched) < c.ttl {
		return v.enabled
	}

	enabled, err := c.fetchStatus(ctx, flagKey, userID)
	if err != nil {
		// failures are not cached, the next call retries
		return false
	}

	c.mu.Lock()
	c.verdicts[key] = verdict{enabled: enabled, fetched: time.Now()}
	c.mu.Unlock()
	return enabled
}

// Version returns the last config version seen by the poller
func (c *Client) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastVersion
}

func (c *Client) fetchStatus(ctx context.Context, flagKey string, userID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status/"+url.PathEscape(flagKey), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("X-User-Id", userID)
	if c.tier != "" {
		req.Header.Set("X-Subscription-Tier", c.tier)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("status request failed: %s", resp.Status)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Enabled, nil
}

func (c *Client) fetchVersion(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("version request failed: %s", resp.Status)
	}

	var body versionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body.Version, nil
}

func (c *Client) runPoller(ctx context.Context) {
	// persistent poll loop with backoff on failure
	op := backoff.NewExponentialBackOff()
	op.InitialInterval = 500 * time.Millisecond
	op.MaxInterval = 10 * time.Second

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		version, err := c.fetchVersion(ctx)
		if err != nil {
			sleep := op.NextBackOff()
			if sleep == backoff.Stop {
				sleep = op.MaxInterval
			}
			timer.Reset(sleep)
			continue
		}
		// reset backoff on successful poll
		op.Reset()
		c.applyVersion(version)
		timer.Reset(c.interval)
	}
}

func (c *Client) applyVersion(version int64) {
	c.mu.Lock()
	if version <= c.lastVersion {
		c.mu.Unlock()
		return
	}
	c.lastVersion = version
	c.verdicts = make(map[string]verdict)
	c.mu.Unlock()

	if c.onChange != nil {
		go c.onChange(version)
	}
}
