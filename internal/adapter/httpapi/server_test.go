package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericrodrz/rci-service/internal/hazard"
	"github.com/ericrodrz/rci-service/internal/observability"
	"github.com/ericrodrz/rci-service/internal/rci"
)

type stubLocator struct {
	loc rci.Location
}

func (s *stubLocator) LocateZIP(context.Context, string) (rci.Location, error) {
	return s.loc, nil
}

type failingReadiness struct{}

func (failingReadiness) CheckReadiness(context.Context) error {
	return errors.New("snapshot not built")
}

func testServer(t *testing.T, locator rci.Locator) *Server {
	t.Helper()

	snap, err := hazard.BuildSnapshot([]hazard.RawTableRow{
		{StateAbbreviation: "CA", CountyName: "Los Angeles County", PlaceName: "Los Angeles", Population: "4,000,000", PlanApprovalDate: "2023-05-01"},
		{StateAbbreviation: "CA", CountyName: "Los Angeles County", PlaceName: "Pasadena", Population: "140,000", PlanApprovalDate: "2022-01-15"},
	})
	require.NoError(t, err)
	store := &hazard.Store{}
	store.Publish(snap)

	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	calc := rci.NewCalculator(store, locator, nil, nil, nil, logger, metrics)
	return NewServer(":0", calc, store, metrics, logger)
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t, nil)

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

		assert.Equal(t, 200, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("readyz with snapshot", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		assert.Equal(t, 200, rec.Code)
	})

	t.Run("readyz before snapshot", func(t *testing.T) {
		metrics := observability.NewMetricsForTesting()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		calc := rci.NewCalculator(&hazard.Store{}, nil, nil, nil, nil, logger, metrics)
		notReady := NewServer(":0", calc, failingReadiness{}, metrics, logger)

		rec := httptest.NewRecorder()
		notReady.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		assert.Equal(t, 503, rec.Code)
		assert.Contains(t, rec.Body.String(), "not ready")
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}

func TestRCIEndpoint(t *testing.T) {
	t.Run("known ZIP", func(t *testing.T) {
		srv := testServer(t, &stubLocator{loc: rci.Location{
			PlaceName:  "Los Angeles",
			CountyName: "Los Angeles County",
			StateCode:  "CA",
			StateName:  "California",
		}})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/rci/90001", nil))

		require.Equal(t, 200, rec.Code)
		var res rci.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "90001", res.ZIP)
		assert.Equal(t, hazard.LevelTown, res.HazardLevel)
		require.NotNil(t, res.HazardScore)
		assert.Equal(t, 100.0, *res.HazardScore)
		require.NotNil(t, res.RCI)
		assert.Equal(t, 100.0, *res.RCI)
	})

	t.Run("invalid ZIP is a 400", func(t *testing.T) {
		srv := testServer(t, &stubLocator{})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/rci/not-a-zip", nil))

		assert.Equal(t, 400, rec.Code)
	})

	t.Run("unknown ZIP is a 404", func(t *testing.T) {
		srv := testServer(t, &stubLocator{})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/rci/00001", nil))

		assert.Equal(t, 404, rec.Code)
	})

	t.Run("geocoding disabled is a 501", func(t *testing.T) {
		srv := testServer(t, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/rci/90001", nil))

		assert.Equal(t, 501, rec.Code)
	})
}

func TestCoverageEndpoints(t *testing.T) {
	t.Run("ZIP path falls back to global for unknown geography", func(t *testing.T) {
		srv := testServer(t, &stubLocator{})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/coverage/00001", nil))

		require.Equal(t, 200, rec.Code)
		var res rci.CoverageResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, hazard.LevelGlobalFallback, res.Level)
		assert.Equal(t, 50.5, res.Score)
	})

	t.Run("query params resolve an explicit triple", func(t *testing.T) {
		srv := testServer(t, nil)

		q := url.Values{"state": {"CA"}, "county": {"Los Angeles County"}, "place": {"Pasadena"}}
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/coverage?"+q.Encode(), nil))

		require.Equal(t, 200, rec.Code)
		var res rci.CoverageResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, hazard.LevelTown, res.Level)
		assert.Equal(t, 1.0, res.Score)
	})
}
