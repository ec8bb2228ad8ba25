package geometry

import (
	"encoding/hex"
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
)

// DecodeError indicates a malformed or unsupported WKB geometry value.
// It aborts the whole feature collection rather than a single feature:
// partial geographic output is worse than a clear failure.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geometry decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("geometry decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode turns a hex-encoded WKB/EWKB value (the textual form PostGIS
// returns for geometry columns) into a GeoJSON geometry
func Decode(hexWKB string) (*geojson.Geometry, error) {
	raw, err := hex.DecodeString(hexWKB)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid hex encoding", Err: err}
	}

	geom, _, err := ewkb.Unmarshal(raw)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid WKB payload", Err: err}
	}

	gj, err := toGeoJSON(geom)
	if err != nil {
		return nil, err
	}
	return gj, nil
}

// toGeoJSON converts an orb geometry into its GeoJSON representation,
// preserving whatever shape the binary encoding specified
func toGeoJSON(geom orb.Geometry) (*geojson.Geometry, error) {
	switch g := geom.(type) {
	case orb.Point:
		return geojson.NewPointGeometry(pointCoords(g)), nil
	case orb.MultiPoint:
		coords := make([][]float64, len(g))
		for i, p := range g {
			coords[i] = pointCoords(p)
		}
		return geojson.NewMultiPointGeometry(coords...), nil
	case orb.LineString:
		return geojson.NewLineStringGeometry(lineCoords(g)), nil
	case orb.MultiLineString:
		lines := make([][][]float64, len(g))
		for i, ls := range g {
			lines[i] = lineCoords(ls)
		}
		return geojson.NewMultiLineStringGeometry(lines...), nil
	case orb.Polygon:
		return geojson.NewPolygonGeometry(polygonCoords(g)), nil
	case orb.MultiPolygon:
		polys := make([][][][]float64, len(g))
		for i, p := range g {
			polys[i] = polygonCoords(p)
		}
		return geojson.NewMultiPolygonGeometry(polys...), nil
	case orb.Collection:
		members := make([]*geojson.Geometry, len(g))
		for i, m := range g {
			gj, err := toGeoJSON(m)
			if err != nil {
				return nil, err
			}
			members[i] = gj
		}
		return geojson.NewCollectionGeometry(members...), nil
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported geometry type %T", geom)}
	}
}

func pointCoords(p orb.Point) []float64 {
	return []float64{p[0], p[1]}
}

func lineCoords(ls orb.LineString) [][]float64 {
	coords := make([][]float64, len(ls))
	for i, p := range ls {
		coords[i] = pointCoords(p)
	}
	return coords
}

func polygonCoords(poly orb.Polygon) [][][]float64 {
	rings := make([][][]float64, len(poly))
	for i, ring := range poly {
		rings[i] = lineCoords(orb.LineString(ring))
	}
	return rings
}
