package geometry

import (
	"encoding/hex"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeHex builds the hex EWKB form PostGIS returns for a geometry column
func encodeHex(t *testing.T, geom orb.Geometry, srid int) string {
	t.Helper()
	raw, err := ewkb.Marshal(geom, srid)
	require.NoError(t, err)
	return hex.EncodeToString(raw)
}

func TestDecodePoint(t *testing.T) {
	t.Run("plain WKB point", func(t *testing.T) {
		// POINT(16 48), little endian, no SRID
		g, err := Decode("01010000000000000000003040" + "0000000000004840")
		require.NoError(t, err)
		assert.Equal(t, geojson.GeometryPoint, g.Type)
		assert.InDelta(t, 16.0, g.Point[0], 1e-9)
		assert.InDelta(t, 48.0, g.Point[1], 1e-9)
	})

	t.Run("EWKB point with SRID 4326", func(t *testing.T) {
		src := orb.Point{16.37208, 48.20849} // Stephansplatz
		g, err := Decode(encodeHex(t, src, 4326))
		require.NoError(t, err)
		assert.Equal(t, geojson.GeometryPoint, g.Type)
		assert.InDelta(t, src[0], g.Point[0], 1e-9)
		assert.InDelta(t, src[1], g.Point[1], 1e-9)
	})
}

func TestDecodePreservesShape(t *testing.T) {
	t.Run("linestring", func(t *testing.T) {
		src := orb.LineString{{16.37, 48.20}, {16.38, 48.21}, {16.40, 48.22}}
		g, err := Decode(encodeHex(t, src, 4326))
		require.NoError(t, err)
		assert.Equal(t, geojson.GeometryLineString, g.Type)
		require.Len(t, g.LineString, 3)
		assert.InDelta(t, 16.38, g.LineString[1][0], 1e-9)
		assert.InDelta(t, 48.21, g.LineString[1][1], 1e-9)
	})

	t.Run("polygon", func(t *testing.T) {
		src := orb.Polygon{{{16.3, 48.1}, {16.5, 48.1}, {16.5, 48.3}, {16.3, 48.1}}}
		g, err := Decode(encodeHex(t, src, 4326))
		require.NoError(t, err)
		assert.Equal(t, geojson.GeometryPolygon, g.Type)
		require.Len(t, g.Polygon, 1)
		assert.Len(t, g.Polygon[0], 4)
	})

	t.Run("multipoint", func(t *testing.T) {
		src := orb.MultiPoint{{16.3, 48.1}, {16.4, 48.2}}
		g, err := Decode(encodeHex(t, src, 4326))
		require.NoError(t, err)
		assert.Equal(t, geojson.GeometryMultiPoint, g.Type)
		assert.Len(t, g.MultiPoint, 2)
	})
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"not hex at all", "zzzz"},
		{"odd length hex", "010"},
		{"truncated payload", "0101000000"},
		{"unknown geometry tag", "0163000000"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Decode(tt.hex)
			assert.Nil(t, g)
			require.Error(t, err)
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}
