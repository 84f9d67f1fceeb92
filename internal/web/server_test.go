package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tally/internal/domain"
	"go.uber.org/zap"
)

type stubBalance struct {
	total decimal.Decimal
	err   error
}

func (s stubBalance) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.total, s.err
}

type memStore struct {
	creds domain.Credentials
}

func (m *memStore) Save(creds domain.Credentials) error {
	m.creds = creds
	return nil
}

func (m *memStore) Credentials() (domain.Credentials, error) {
	return m.creds, nil
}

func newTestServer(balance balanceService, store credentialStore) *httptest.Server {
	s := NewServer("127.0.0.1:0", balance, store, zap.NewNop())
	return httptest.NewServer(s.Handler())
}

func TestHandleBalance(t *testing.T) {
	t.Run("returns the total formatted to two decimals", func(t *testing.T) {
		srv := newTestServer(stubBalance{total: decimal.RequireFromString("50100")}, &memStore{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/balance")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Equal(t, "50100.00", payload["balance"])
	})

	t.Run("relays aggregation errors verbatim", func(t *testing.T) {
		srv := newTestServer(stubBalance{err: errors.New("api key or secret key is not set")}, &memStore{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/balance")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Equal(t, "api key or secret key is not set", payload["error"])
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		srv := newTestServer(stubBalance{}, &memStore{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/balance", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandleCredentials(t *testing.T) {
	t.Run("saves and reads back without echoing the secret", func(t *testing.T) {
		store := &memStore{}
		srv := newTestServer(stubBalance{}, store)
		defer srv.Close()

		body := strings.NewReader(`{"api_key": "my-key", "secret_key": "my-secret"}`)
		resp, err := http.Post(srv.URL+"/api/credentials", "application/json", body)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		assert.Equal(t, "my-key", store.creds.APIKey)
		assert.Equal(t, "my-secret", store.creds.SecretKey)

		resp, err = http.Get(srv.URL + "/api/credentials")
		require.NoError(t, err)
		defer resp.Body.Close()

		var payload map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Equal(t, "my-key", payload["api_key"])
		assert.Equal(t, true, payload["configured"])
		assert.NotContains(t, payload, "secret_key")
	})

	t.Run("rejects broken payloads", func(t *testing.T) {
		srv := newTestServer(stubBalance{}, &memStore{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/credentials", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPages(t *testing.T) {
	srv := newTestServer(stubBalance{}, &memStore{})
	defer srv.Close()

	t.Run("popup page has refresh and settings controls", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		page := string(raw)
		assert.Contains(t, page, `id="refresh"`)
		assert.Contains(t, page, `id="settingsLink"`)
		assert.Contains(t, page, credentialsMissingMessage)
	})

	t.Run("settings page has both inputs", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/settings")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		page := string(raw)
		assert.Contains(t, page, `id="apiKey"`)
		assert.Contains(t, page, `id="secretKey"`)
	})

	t.Run("settings page rejects non-GET methods", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/settings", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("unknown paths are 404", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/nope")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
