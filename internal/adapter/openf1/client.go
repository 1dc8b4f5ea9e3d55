// Package openf1 implements domain.Source over the OpenF1 REST API
// (https://openf1.org). Responses are JSON arrays keyed by query parameters;
// an empty result is returned either as [] or as a 404.
package openf1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
)

// DefaultBaseURL is the public OpenF1 endpoint.
const DefaultBaseURL = "https://api.openf1.org/v1"

// Cache stores raw response payloads by request key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// Client implements domain.Source using the OpenF1 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	metrics    *observability.Metrics
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an OpenF1 client. Pass a nil cache to always hit the network.
func NewClient(baseURL string, timeout time.Duration, cache Cache, metrics *observability.Metrics, clock clockwork.Clock, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:   cache,
		metrics: metrics,
		clock:   clock,
		logger:  logger,
	}
}

// get decodes the JSON array served at endpoint into out, consulting the
// cache first. Only non-empty payloads are cached so a session that is not
// yet published can be fetched again on the next run.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	key := endpoint + "?" + params.Encode()

	if c.cache != nil {
		payload, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		} else if ok {
			return decode(endpoint, payload, out)
		}
	}

	payload, err := c.fetch(ctx, endpoint, key)
	if err != nil {
		return err
	}
	if err := decode(endpoint, payload, out); err != nil {
		return err
	}

	if c.cache != nil && !isEmptyArray(payload) {
		if err := c.cache.Put(ctx, key, payload); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+key, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.metrics.UpstreamRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("openf1 request", "endpoint", endpoint, "key", key, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return []byte("[]"), nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openf1 API error: %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return payload, nil
}

func decode(endpoint string, payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func isEmptyArray(payload []byte) bool {
	return bytes.Equal(bytes.TrimSpace(payload), []byte("[]"))
}
