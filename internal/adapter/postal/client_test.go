package postal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericrodrz/rci-service/internal/observability"
)

func testClient(serverURL string) *Client {
	return &Client{
		token:      "test-token",
		httpClient: &http.Client{Timeout: time.Second},
		baseURL:    serverURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestLocateZIP(t *testing.T) {
	t.Run("resolves context hierarchy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/78701.json", r.URL.Path)
			assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
			assert.Equal(t, "us", r.URL.Query().Get("country"))
			assert.Equal(t, "postcode", r.URL.Query().Get("types"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"features": [{
					"text": "78701",
					"place_name": "Austin, Texas 78701, United States",
					"context": [
						{"id": "place.100", "text": "Austin"},
						{"id": "district.200", "text": "Travis County"},
						{"id": "region.300", "text": "Texas", "short_code": "US-TX"}
					]
				}]
			}`))
		}))
		defer srv.Close()

		loc, err := testClient(srv.URL).LocateZIP(context.Background(), "78701")
		require.NoError(t, err)
		assert.Equal(t, "Austin", loc.PlaceName)
		assert.Equal(t, "Travis County", loc.CountyName)
		assert.Equal(t, "TX", loc.StateCode)
		assert.Equal(t, "Texas", loc.StateName)
		assert.True(t, loc.Found())
	})

	t.Run("locality fills place when no place entry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"features": [{
					"text": "99547",
					"context": [
						{"id": "locality.1", "text": "Atka"},
						{"id": "region.2", "text": "Alaska", "short_code": "US-AK"}
					]
				}]
			}`))
		}))
		defer srv.Close()

		loc, err := testClient(srv.URL).LocateZIP(context.Background(), "99547")
		require.NoError(t, err)
		assert.Equal(t, "Atka", loc.PlaceName)
		assert.Equal(t, "AK", loc.StateCode)
	})

	t.Run("unknown ZIP returns zero location", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"features": []}`))
		}))
		defer srv.Close()

		loc, err := testClient(srv.URL).LocateZIP(context.Background(), "00000")
		require.NoError(t, err)
		assert.False(t, loc.Found())
	})

	t.Run("API error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).LocateZIP(context.Background(), "78701")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).LocateZIP(context.Background(), "78701")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode response")
	})
}
