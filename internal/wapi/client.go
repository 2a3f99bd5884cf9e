// Package wapi implements a read-only client for the grid manager's WAPI.
// It covers exactly what the report pipeline needs: authenticated JSON GETs
// and the paged discovered-device fetch.
package wapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ipamtools/ipamdrift/internal/config"
	"github.com/ipamtools/ipamdrift/internal/errors"
	"github.com/ipamtools/ipamdrift/internal/logging"
)

const (
	defaultTimeout  = 30 * time.Second
	maxIdleConns    = 10
	idleConnTimeout = 30 * time.Second

	// Error bodies longer than this are truncated before logging.
	maxErrorBodyBytes = 2048
)

// Client provides authenticated HTTP access to the appliance WAPI.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a WAPI client from grid connection settings.
func NewClient(grid *config.GridConfig) (*Client, error) {
	if grid.Host == "" {
		return nil, errors.ErrConfigMissing("grid.host")
	}
	if grid.Username == "" {
		return nil, errors.ErrConfigMissing("grid.username")
	}

	timeout := grid.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:    maxIdleConns,
			IdleConnTimeout: idleConnTimeout,
			TLSClientConfig: &tls.Config{
				// Grid managers routinely run self-signed certs.
				InsecureSkipVerify: !grid.VerifyTLS, // #nosec G402
				MinVersion:         tls.VersionTLS12,
			},
		},
	}

	return &Client{
		baseURL:    grid.BaseURL(),
		username:   grid.Username,
		password:   grid.Password,
		httpClient: httpClient,
		userAgent:  "ipamdrift/1.0",
	}, nil
}

// BaseURL returns the appliance API base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON performs a GET against an object endpoint and decodes the JSON
// response into v. Only 200 and 201 are treated as success.
func (c *Client) GetJSON(ctx context.Context, object string, query url.Values, v interface{}) error {
	requestURL := c.baseURL + "/" + object
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return errors.WrapWAPIErrorWithEndpoint(errors.CodeRequestFailed,
			"failed to create HTTP request", object, err)
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	logging.Debug("WAPI request", "endpoint", object, "url", requestURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// http.Client.Timeout failures surface as a net.Error, not as a
		// context deadline on ctx.
		var netErr net.Error
		switch {
		case stderrors.Is(err, context.DeadlineExceeded),
			stderrors.As(err, &netErr) && netErr.Timeout():
			return errors.WrapWAPIErrorWithEndpoint(errors.CodeTimeout,
				"request timed out", object, err)
		case stderrors.Is(err, context.Canceled):
			return errors.WrapWAPIErrorWithEndpoint(errors.CodeCanceled,
				"request canceled", object, err)
		}
		return errors.ErrRequestFailed(object, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body := readErrorBody(resp.Body)
		logging.Debug("WAPI error body", "endpoint", object, "status", resp.StatusCode, "body", body)

		if resp.StatusCode == http.StatusUnauthorized {
			return errors.ErrAuthFailed(object).WithStatus(resp.StatusCode)
		}
		return errors.NewWAPIErrorWithEndpoint(errors.CodeRequestFailed,
			fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode), object).
			WithStatus(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.WrapWAPIErrorWithEndpoint(errors.CodeResponseInvalid,
			"failed to decode response body", object, err)
	}

	return nil
}

// readErrorBody drains a failed response body for logging, truncated so a
// misbehaving appliance cannot flood the log.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
