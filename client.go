// Package quyc implements a streaming-first HTTP client: a protocol
// dispatch core spanning HTTP/1.1, HTTP/2, and HTTP/3, a response cache
// with conditional revalidation, and a streaming JSONPath engine for
// extracting typed values out of a response body as it arrives rather
// than after it's fully buffered.
package quyc

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/nolan-howard/quyc/internal/auth"
	"github.com/nolan-howard/quyc/internal/cache"
	"github.com/nolan-howard/quyc/internal/config"
	"github.com/nolan-howard/quyc/internal/cookie"
	"github.com/nolan-howard/quyc/internal/dns"
	"github.com/nolan-howard/quyc/internal/retry"
	"github.com/nolan-howard/quyc/internal/stats"
	"github.com/nolan-howard/quyc/internal/transport"
)

// Client is the entry point for issuing requests. A zero Client is not
// usable; construct one with New.
type Client struct {
	cfg        config.Config
	dispatcher *transport.Dispatcher
	cache      *cache.Store
	jar        *cookie.Jar
	auth       auth.Provider
	retry      retry.Policy
	stats      *stats.Collector
	protocol   transport.Protocol
}

// Option configures a Client constructed by New.
type Option func(*Client)

// WithAuth attaches an auth.Provider applied to every outgoing request.
func WithAuth(p auth.Provider) Option {
	return func(c *Client) { c.auth = p }
}

// WithRetryPolicy overrides the default retry.Policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithProtocol pins every request to a specific protocol engine instead
// of the dispatcher's auto-negotiation.
func WithProtocol(p transport.Protocol) Option {
	return func(c *Client) { c.protocol = p }
}

// WithStatsCollector attaches a Prometheus stats.Collector.
func WithStatsCollector(s *stats.Collector) Option {
	return func(c *Client) { c.stats = s }
}

// New builds a Client from cfg, applying any Options.
func New(cfg config.Config, opts ...Option) *Client {
	resolver := dns.NewResolver(cfg.Network.PreferIPv6)
	dialCfg := transport.DialConfig{
		FallbackDelay: cfg.Network.HappyEyeballsDelay,
		Timeout:       cfg.Network.ConnectTimeout,
		Resolver:      resolver,
	}

	c := &Client{
		cfg:        cfg,
		dispatcher: transport.NewDispatcher(dialCfg, transport.DefaultH3Config()),
		cache:      cache.NewStore(cache.NewMemoryBackend(), cfg.Cache.MaxTotalSizeBytes),
		jar:        cookie.NewJar(),
		auth:       auth.None{},
		retry: retry.Policy{
			MaxAttempts:       cfg.Retry.MaxAttempts,
			InitialDelay:      time.Duration(cfg.Retry.InitialDelayMs) * time.Millisecond,
			MaxDelay:          time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond,
			BackoffMultiplier: cfg.Retry.BackoffMultiplier,
			JitterFactor:      cfg.Retry.JitterFactor,
		},
		protocol: transport.ProtocolAuto,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil)
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, rawURL string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPost, rawURL, body)
}

// Put issues a PUT request with the given body.
func (c *Client) Put(ctx context.Context, rawURL string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPut, rawURL, body)
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, rawURL string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, rawURL, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, rawURL, nil)
}

// Do builds and sends a request, consulting the cache for GET requests
// and retrying per the Client's retry.Policy on a retryable failure.
func (c *Client) Do(ctx context.Context, method, rawURL string, body []byte) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if method == http.MethodGet {
		if entry, ok := c.cache.Get(cache.Key(u), time.Now()); ok && entry.Fresh(time.Now()) {
			if c.stats != nil {
				c.stats.CacheHits.Inc()
			}
			return responseFromCacheEntry(entry), nil
		}
		if c.stats != nil {
			c.stats.CacheMisses.Inc()
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if c.stats != nil {
				c.stats.RetryAttempts.Inc()
			}
			select {
			case <-time.After(retry.Delay(attempt, c.retry)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.attempt(ctx, method, u, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retry.IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method string, u *url.URL, body []byte) (*Response, error) {
	req, err := newRequest(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	c.auth.Apply(req.Header)
	if cookies := c.jar.Cookies(u); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	ch, proto, err := c.dispatcher.Dispatch(req, c.protocol)
	if err != nil {
		if c.stats != nil {
			label := proto
			if label == "" {
				label = "unknown"
			}
			c.stats.ConnectionFailures.WithLabelValues(label).Inc()
		}
		return nil, err
	}
	if c.stats != nil {
		c.stats.ConnectionsEstablished.WithLabelValues(proto).Inc()
	}

	resp := collectResponse(u, proto, ch)
	c.jar.SetCookies(u, resp.Header)

	if method == http.MethodGet && resp.StatusCode == http.StatusOK {
		if entry := entryFromResponse(u, resp); entry != nil {
			c.cache.Put(entry)
		}
	}
	return resp, nil
}
