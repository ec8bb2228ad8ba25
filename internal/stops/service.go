package stops

import (
	"context"
	"fmt"
	"sync"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stadtnetz/stops_core/internal/geometry"
	"github.com/stadtnetz/stops_core/internal/models"
)

// Service resolves station sets and assembles them into GeoJSON feature
// collections. It holds no state across requests beyond the store handle.
type Service struct {
	store Store
}

// NewService creates a new stops service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Collect runs the full pipeline for one stops request: resolve the station
// set for the query's mode, fetch station rows and line memberships, and
// assemble the ordered feature collection
func (s *Service) Collect(ctx context.Context, q Query) (*geojson.FeatureCollection, error) {
	ids, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	// An empty station set is a valid result, not an error
	if len(ids) == 0 {
		return geojson.NewFeatureCollection(), nil
	}

	unique := uniqueIDs(ids)

	// The two fetches only depend on the resolved set, so they run in
	// parallel; the merge below is keyed by resolver order either way
	var (
		stations    []models.Station
		memberships map[int][]int
		stationsErr error
		linesErr    error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stations, stationsErr = s.store.StationsByID(ctx, unique)
	}()
	go func() {
		defer wg.Done()
		memberships, linesErr = s.store.LineMemberships(ctx, unique)
	}()
	wg.Wait()

	if stationsErr != nil {
		return nil, fmt.Errorf("fetch stations: %w", stationsErr)
	}
	if linesErr != nil {
		return nil, fmt.Errorf("fetch line memberships: %w", linesErr)
	}

	return assembleStations(ids, stations, memberships)
}

// resolve maps the query's mode to its resolution strategy
func (s *Service) resolve(ctx context.Context, q Query) ([]int, error) {
	switch q.Mode {
	case ModeByLine:
		ids, err := s.store.StationIDsByLine(ctx, q.LineID)
		if err != nil {
			return nil, fmt.Errorf("resolve by line: %w", err)
		}
		return ids, nil
	case ModeByIDs:
		return q.IDs, nil
	default:
		ids, err := s.store.DefaultStationIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve default set: %w", err)
		}
		return ids, nil
	}
}

// assembleStations emits one feature per resolved station, in resolver order
// with first-occurrence dedup. Ids without a matching row are stale
// references and are skipped; a geometry decode failure aborts the whole
// collection.
func assembleStations(ids []int, stations []models.Station, memberships map[int][]int) (*geojson.FeatureCollection, error) {
	byID := make(map[int]models.Station, len(stations))
	for _, st := range stations {
		byID[st.ID] = st
	}

	fc := geojson.NewFeatureCollection()
	seen := make(map[int]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		st, ok := byID[id]
		if !ok {
			continue
		}

		geom, err := geometry.Decode(st.Geom)
		if err != nil {
			return nil, err
		}

		lineIDs := memberships[id]
		if lineIDs == nil {
			lineIDs = []int{}
		}

		f := geojson.NewFeature(geom)
		f.Properties["haltestellen_id"] = st.ID
		f.Properties["diva"] = st.Diva
		f.Properties["name"] = st.Name
		f.Properties["linien_ids"] = lineIDs
		fc.AddFeature(f)
	}

	return fc, nil
}

// WithinRadius returns stations around a point as features. The distance
// search itself lives in a stored procedure on the database side.
func (s *Service) WithinRadius(ctx context.Context, lat, lon float64, radiusM int) (*geojson.FeatureCollection, error) {
	stations, err := s.store.StationsWithinRadius(ctx, lat, lon, radiusM)
	if err != nil {
		return nil, fmt.Errorf("fetch stations within radius: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for _, st := range stations {
		geom, err := geometry.Decode(st.Geom)
		if err != nil {
			return nil, err
		}

		f := geojson.NewFeature(geom)
		f.Properties["haltestellen_id"] = st.ID
		f.Properties["diva"] = st.Diva
		f.Properties["name"] = st.Name
		f.Properties["distance_m"] = st.DistanceM
		fc.AddFeature(f)
	}

	return fc, nil
}

// PlatformsByLine returns platform-level features for one line, both
// directions, in direction-then-sequence order
func (s *Service) PlatformsByLine(ctx context.Context, lineID int) (*geojson.FeatureCollection, error) {
	steige, err := s.store.SteigeByLine(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("fetch platforms: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for _, st := range steige {
		geom, err := geometry.Decode(st.Geom)
		if err != nil {
			return nil, err
		}

		f := geojson.NewFeature(geom)
		f.Properties["steig_id"] = st.ID
		f.Properties["fk_linien_id"] = st.LineID
		f.Properties["fk_haltestellen_id"] = st.StationID
		f.Properties["richtung"] = string(st.Richtung)
		f.Properties["reihenfolge"] = st.Reihenfolge
		f.Properties["bereich"] = st.Bereich
		f.Properties["steig"] = st.Steig
		f.Properties["rbl_nummer"] = st.RBLNummer
		fc.AddFeature(f)
	}

	return fc, nil
}

// ListLines lists lines with platform counts, optionally filtered by
// transport mode
func (s *Service) ListLines(ctx context.Context, verkehrsmittel string) ([]LineInfo, error) {
	lines, err := s.store.Lines(ctx, verkehrsmittel)
	if err != nil {
		return nil, fmt.Errorf("fetch lines: %w", err)
	}
	return lines, nil
}

// uniqueIDs keeps the first occurrence of each id, preserving order
func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
