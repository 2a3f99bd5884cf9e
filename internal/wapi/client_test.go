package wapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipamtools/ipamdrift/internal/config"
	"github.com/ipamtools/ipamdrift/internal/errors"
)

// newTestClient starts a TLS server with the given handler and returns a
// client pointed at it. The server uses a self-signed cert, which is exactly
// the situation verify_tls=false exists for.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	grid := &config.GridConfig{
		Host:        strings.TrimPrefix(server.URL, "https://"),
		WAPIVersion: "v2.12",
		Username:    "admin",
		Password:    "infoblox",
		VerifyTLS:   false,
		Timeout:     5 * time.Second,
	}

	client, err := NewClient(grid)
	require.NoError(t, err)
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("valid settings", func(t *testing.T) {
		grid := &config.GridConfig{
			Host:        "gm.example.net",
			WAPIVersion: "v2.12",
			Username:    "admin",
		}
		client, err := NewClient(grid)
		require.NoError(t, err)
		assert.Equal(t, "https://gm.example.net/wapi/v2.12", client.BaseURL())
	})

	t.Run("missing host", func(t *testing.T) {
		_, err := NewClient(&config.GridConfig{Username: "admin"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
	})

	t.Run("missing username", func(t *testing.T) {
		_, err := NewClient(&config.GridConfig{Host: "gm.example.net"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
	})
}

func TestGetJSON(t *testing.T) {
	t.Run("success decodes payload", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/wapi/v2.12/grid", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		}))

		var out map[string]string
		err := client.GetJSON(context.Background(), "grid", nil, &out)
		require.NoError(t, err)
		assert.Equal(t, "ok", out["status"])
	})

	t.Run("sends basic auth and headers", func(t *testing.T) {
		var gotUser, gotPass string
		var gotOK bool
		var gotRequestID, gotAccept string

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, gotOK = r.BasicAuth()
			gotRequestID = r.Header.Get("X-Request-ID")
			gotAccept = r.Header.Get("Accept")
			_, _ = w.Write([]byte(`{}`))
		}))

		var out map[string]interface{}
		require.NoError(t, client.GetJSON(context.Background(), "grid", nil, &out))

		assert.True(t, gotOK, "request should carry basic auth")
		assert.Equal(t, "admin", gotUser)
		assert.Equal(t, "infoblox", gotPass)
		assert.NotEmpty(t, gotRequestID)
		assert.Equal(t, "application/json", gotAccept)
	})

	t.Run("encodes query parameters", func(t *testing.T) {
		var gotQuery url.Values
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{}`))
		}))

		query := url.Values{}
		query.Set("_paging", "1")
		query.Set("_max_results", "100")

		var out map[string]interface{}
		require.NoError(t, client.GetJSON(context.Background(), "discovery:device", query, &out))
		assert.Equal(t, "1", gotQuery.Get("_paging"))
		assert.Equal(t, "100", gotQuery.Get("_max_results"))
	})

	t.Run("unauthorized maps to auth error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Authorization Required", http.StatusUnauthorized)
		}))

		var out map[string]interface{}
		err := client.GetJSON(context.Background(), "grid", nil, &out)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeAuthFailed))

		var wapiErr *errors.WAPIError
		require.ErrorAs(t, err, &wapiErr)
		assert.Equal(t, http.StatusUnauthorized, wapiErr.StatusCode)
	})

	t.Run("server error maps to request failed", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		var out map[string]interface{}
		err := client.GetJSON(context.Background(), "grid", nil, &out)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeRequestFailed))

		var wapiErr *errors.WAPIError
		require.ErrorAs(t, err, &wapiErr)
		assert.Equal(t, http.StatusInternalServerError, wapiErr.StatusCode)
	})

	t.Run("malformed body maps to response invalid", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))

		var out map[string]interface{}
		err := client.GetJSON(context.Background(), "grid", nil, &out)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeResponseInvalid))
	})

	t.Run("client timeout maps to timeout code", func(t *testing.T) {
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		t.Cleanup(server.Close)

		grid := &config.GridConfig{
			Host:        strings.TrimPrefix(server.URL, "https://"),
			WAPIVersion: "v2.12",
			Username:    "admin",
			Timeout:     100 * time.Millisecond,
		}
		client, err := NewClient(grid)
		require.NoError(t, err)

		var out map[string]interface{}
		err = client.GetJSON(context.Background(), "grid", nil, &out)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeTimeout),
			"configured request timeout should map to TIMEOUT, got %v", err)
	})

	t.Run("context deadline maps to timeout code", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		var out map[string]interface{}
		err := client.GetJSON(ctx, "grid", nil, &out)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeTimeout))
	})

	t.Run("canceled context maps to canceled code", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out map[string]interface{}
		err := client.GetJSON(ctx, "grid", nil, &out)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeCanceled))
	})
}

func TestReadErrorBody(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		got := readErrorBody(strings.NewReader("  error text \n"))
		assert.Equal(t, "error text", got)
	})

	t.Run("truncates long bodies", func(t *testing.T) {
		got := readErrorBody(strings.NewReader(strings.Repeat("x", 10000)))
		assert.Len(t, got, maxErrorBodyBytes)
	})
}
