package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtnetz/stops_core/internal/stops"
)

type fakeService struct {
	collect         func(ctx context.Context, q stops.Query) (*geojson.FeatureCollection, error)
	withinRadius    func(ctx context.Context, lat, lon float64, radiusM int) (*geojson.FeatureCollection, error)
	platformsByLine func(ctx context.Context, lineID int) (*geojson.FeatureCollection, error)
	listLines       func(ctx context.Context, verkehrsmittel string) ([]stops.LineInfo, error)
}

func (f *fakeService) Collect(ctx context.Context, q stops.Query) (*geojson.FeatureCollection, error) {
	return f.collect(ctx, q)
}

func (f *fakeService) WithinRadius(ctx context.Context, lat, lon float64, radiusM int) (*geojson.FeatureCollection, error) {
	return f.withinRadius(ctx, lat, lon, radiusM)
}

func (f *fakeService) PlatformsByLine(ctx context.Context, lineID int) (*geojson.FeatureCollection, error) {
	return f.platformsByLine(ctx, lineID)
}

func (f *fakeService) ListLines(ctx context.Context, verkehrsmittel string) ([]stops.LineInfo, error) {
	return f.listLines(ctx, verkehrsmittel)
}

func newApp(svc StopsService) *fiber.App {
	h := NewHandler(svc)
	app := fiber.New()
	app.Get("/stops", h.Stops)
	app.Get("/stops/radius", h.StopsRadius)
	app.Get("/steige", h.Steige)
	app.Get("/lines", h.Lines)
	return app
}

func body(t *testing.T, resp io.Reader) string {
	t.Helper()
	raw, err := io.ReadAll(resp)
	require.NoError(t, err)
	return string(raw)
}

func TestStopsEndpoint(t *testing.T) {
	t.Run("no parameters selects default mode", func(t *testing.T) {
		var got stops.Query
		app := newApp(&fakeService{
			collect: func(_ context.Context, q stops.Query) (*geojson.FeatureCollection, error) {
				got = q
				return geojson.NewFeatureCollection(), nil
			},
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/stops", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, stops.ModeDefault, got.Mode)
		assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, body(t, resp.Body))
	})

	t.Run("lineId selects by-line mode", func(t *testing.T) {
		var got stops.Query
		app := newApp(&fakeService{
			collect: func(_ context.Context, q stops.Query) (*geojson.FeatureCollection, error) {
				got = q
				return geojson.NewFeatureCollection(), nil
			},
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/stops?lineId=301&stationIds=5,7", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, stops.ModeByLine, got.Mode)
		assert.Equal(t, 301, got.LineID)
	})

	t.Run("stationIds parsed with malformed tokens dropped", func(t *testing.T) {
		var got stops.Query
		app := newApp(&fakeService{
			collect: func(_ context.Context, q stops.Query) (*geojson.FeatureCollection, error) {
				got = q
				return geojson.NewFeatureCollection(), nil
			},
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/stops?stationIds=5,abc,7", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, stops.ModeByIDs, got.Mode)
		assert.Equal(t, []int{5, 7}, got.IDs)
	})

	t.Run("service failure surfaces as 500 with message", func(t *testing.T) {
		app := newApp(&fakeService{
			collect: func(_ context.Context, _ stops.Query) (*geojson.FeatureCollection, error) {
				return nil, errors.New("geometry decode failed: invalid WKB payload")
			},
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/stops", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)

		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(body(t, resp.Body)), &payload))
		assert.Contains(t, payload["error"], "geometry decode failed")
	})
}

func TestStopsRadiusEndpoint(t *testing.T) {
	t.Run("passes coordinates through", func(t *testing.T) {
		app := newApp(&fakeService{
			withinRadius: func(_ context.Context, lat, lon float64, radiusM int) (*geojson.FeatureCollection, error) {
				assert.Equal(t, 48.2082, lat)
				assert.Equal(t, 16.3721, lon)
				assert.Equal(t, 300, radiusM)
				return geojson.NewFeatureCollection(), nil
			},
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/stops/radius?lat=48.2082&lon=16.3721&radius=300", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	tests := []struct {
		name string
		url  string
	}{
		{"missing coordinates", "/stops/radius"},
		{"latitude out of range", "/stops/radius?lat=95&lon=16.37"},
		{"longitude not a number", "/stops/radius?lat=48.2&lon=east"},
		{"radius too large", "/stops/radius?lat=48.2&lon=16.37&radius=9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(&fakeService{})
			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}

func TestSteigeEndpoint(t *testing.T) {
	t.Run("requires lineId", func(t *testing.T) {
		app := newApp(&fakeService{})
		resp, err := app.Test(httptest.NewRequest("GET", "/steige", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("delegates to the service", func(t *testing.T) {
		app := newApp(&fakeService{
			platformsByLine: func(_ context.Context, lineID int) (*geojson.FeatureCollection, error) {
				assert.Equal(t, 301, lineID)
				return geojson.NewFeatureCollection(), nil
			},
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/steige?lineId=301", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestLinesEndpoint(t *testing.T) {
	app := newApp(&fakeService{
		listLines: func(_ context.Context, verkehrsmittel string) ([]stops.LineInfo, error) {
			assert.Equal(t, "ptMetro", verkehrsmittel)
			return []stops.LineInfo{}, nil
		},
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/lines?verkehrsmittel=ptMetro", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"lines":[],"total":0}`, body(t, resp.Body))
}
