// Package client implements the odata.Service transport over HTTP and
// keeps a registry of opened services indexed by name and URL.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/packfeed/packfeed/pkg/odata"
)

// Config holds the settings for one feed service connection.
type Config struct {
	// URL is the service root, e.g. "https://feed.example.com/api/v2".
	URL string `json:"url"`

	// Username and Password enable basic auth when both are set.
	Username string `json:"username"`
	Password string `json:"password"`

	// APIKey is sent as the X-ApiKey header when set.
	APIKey string `json:"api_key"`

	// Timeout bounds each HTTP request. Zero selects a default.
	Timeout time.Duration `json:"timeout"`

	// MaxRetries caps transport-level retries for connection failures.
	// HTTP error statuses are never retried.
	MaxRetries int `json:"max_retries"`
}

// Validate checks the config for the problems we can catch before the
// first request.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("service URL must be set")
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return errors.Errorf("service URL %q must use http or https", c.URL)
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	return nil
}

const defaultTimeout = 30 * time.Second

// Client is an HTTP-backed odata.Service.
type Client struct {
	conf Config
	http *http.Client
	log  *logrus.Entry
}

// New builds a client from the given configuration.
func New(conf Config) (*Client, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid service config")
	}
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	conf.URL = strings.TrimSuffix(conf.URL, "/")
	return &Client{
		conf: conf,
		http: &http.Client{Timeout: timeout},
		log:  logrus.WithField("component", "feed-client").WithField("service", conf.URL),
	}, nil
}

// ServiceURL returns the service root.
func (c *Client) ServiceURL() string {
	return c.conf.URL
}

// Execute fetches one page. Connection-level failures are retried with
// exponential backoff up to the configured cap; a non-success HTTP
// status fails immediately as a StatusError.
func (c *Client) Execute(ctx context.Context, query string, rawURL bool) (*odata.Response, error) {
	url := query
	if !rawURL {
		url = c.conf.URL + "/" + query
	}

	requestID := uuid.New().String()
	c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        url,
	}).Debug("executing feed request")

	var resp *odata.Response
	operation := func() error {
		var err error
		resp, err = c.doRequest(ctx, url, requestID)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.conf.MaxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", url)
	}
	return resp, nil
}

func (c *Client) doRequest(ctx context.Context, url, requestID string) (*odata.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("X-Request-ID", requestID)
	if c.conf.APIKey != "" {
		req.Header.Set("X-ApiKey", c.conf.APIKey)
	}
	if c.conf.Username != "" && c.conf.Password != "" {
		req.SetBasicAuth(c.conf.Username, c.conf.Password)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		// Connection-level failure; worth a retry.
		return nil, err
	}
	defer func() {
		if cerr := httpResp.Body.Close(); cerr != nil {
			c.log.WithError(cerr).Warn("failed to close response body")
		}
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, backoff.Permanent(&StatusError{Code: httpResp.StatusCode, URL: url})
	}
	return &odata.Response{Body: body}, nil
}

// StatusError reports a non-success HTTP status from the feed service.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed service returned %d for %s", e.Code, e.URL)
}
