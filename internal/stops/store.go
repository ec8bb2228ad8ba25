package stops

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stadtnetz/stops_core/internal/models"
)

const (
	// directionOutbound is the fixed Richtung used for by-line resolution
	directionOutbound = "H"
	// defaultVerkehrsmittel is the hardcoded mode for the default station
	// subset and for line membership
	defaultVerkehrsmittel = string(models.ModeMetro)
)

// Store is the persistence boundary the stops service depends on
type Store interface {
	StationIDsByLine(ctx context.Context, lineID int) ([]int, error)
	DefaultStationIDs(ctx context.Context) ([]int, error)
	StationsByID(ctx context.Context, ids []int) ([]models.Station, error)
	LineMemberships(ctx context.Context, ids []int) (map[int][]int, error)
	StationsWithinRadius(ctx context.Context, lat, lon float64, radiusM int) ([]models.RadiusStation, error)
	SteigeByLine(ctx context.Context, lineID int) ([]models.Steig, error)
	Lines(ctx context.Context, verkehrsmittel string) ([]LineInfo, error)
}

// LineInfo is a line row enriched with its platform count
type LineInfo struct {
	models.Line
	SteigeCount int
}

// PGStore implements Store on a Postgres/PostGIS pool
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a new Postgres-backed store
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// StationIDsByLine returns the station ids of a line's outbound platforms
// in platform sequence order. Duplicates are kept: two platforms of the same
// line can share a station, and the assembler collapses by id.
func (s *PGStore) StationIDsByLine(ctx context.Context, lineID int) ([]int, error) {
	query := `
		SELECT fk_haltestellen_id
		FROM steige
		WHERE fk_linien_id = $1 AND richtung = $2
		ORDER BY reihenfolge ASC
	`

	rows, err := s.pool.Query(ctx, query, lineID, directionOutbound)
	if err != nil {
		return nil, fmt.Errorf("query steige by line: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan steige row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read steige rows: %w", err)
	}

	return ids, nil
}

// DefaultStationIDs returns each station served by the fixed transport mode
// exactly once; order is not significant here
func (s *PGStore) DefaultStationIDs(ctx context.Context) ([]int, error) {
	query := `
		SELECT DISTINCT s.fk_haltestellen_id
		FROM steige s
		INNER JOIN linien l ON l.id = s.fk_linien_id
		WHERE l.verkehrsmittel = $1
	`

	rows, err := s.pool.Query(ctx, query, defaultVerkehrsmittel)
	if err != nil {
		return nil, fmt.Errorf("query default stations: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan station id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read station ids: %w", err)
	}

	return ids, nil
}

// StationsByID returns the full station rows for an id set. Return order is
// whatever the store yields; callers must not rely on it.
func (s *PGStore) StationsByID(ctx context.Context, ids []int) ([]models.Station, error) {
	query := `
		SELECT id, diva, name, geom::text
		FROM haltestellen
		WHERE id = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query haltestellen: %w", err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.ID, &st.Diva, &st.Name, &st.Geom); err != nil {
			return nil, fmt.Errorf("scan haltestelle row: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read haltestellen rows: %w", err)
	}

	return stations, nil
}

// LineMemberships maps each station id to the lines of the fixed transport
// mode serving it. The query deduplicates (station, line) pairs and orders
// them, so each list is distinct and deterministic.
func (s *PGStore) LineMemberships(ctx context.Context, ids []int) (map[int][]int, error) {
	query := `
		SELECT DISTINCT s.fk_haltestellen_id, s.fk_linien_id
		FROM steige s
		INNER JOIN linien l ON l.id = s.fk_linien_id
		WHERE s.fk_haltestellen_id = ANY($1) AND l.verkehrsmittel = $2
		ORDER BY s.fk_haltestellen_id, s.fk_linien_id
	`

	rows, err := s.pool.Query(ctx, query, ids, defaultVerkehrsmittel)
	if err != nil {
		return nil, fmt.Errorf("query line memberships: %w", err)
	}
	defer rows.Close()

	memberships := make(map[int][]int)
	for rows.Next() {
		var stationID, lineID int
		if err := rows.Scan(&stationID, &lineID); err != nil {
			return nil, fmt.Errorf("scan membership row: %w", err)
		}
		memberships[stationID] = append(memberships[stationID], lineID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read membership rows: %w", err)
	}

	return memberships, nil
}

// StationsWithinRadius delegates the distance search entirely to the
// haltestellen_im_umkreis stored procedure; no distance math happens here
func (s *PGStore) StationsWithinRadius(ctx context.Context, lat, lon float64, radiusM int) ([]models.RadiusStation, error) {
	query := `
		SELECT id, diva, name, geom::text, distance_m
		FROM haltestellen_im_umkreis($1, $2, $3)
		ORDER BY distance_m
	`

	rows, err := s.pool.Query(ctx, query, lon, lat, radiusM)
	if err != nil {
		return nil, fmt.Errorf("query stations within radius: %w", err)
	}
	defer rows.Close()

	var stations []models.RadiusStation
	for rows.Next() {
		var st models.RadiusStation
		if err := rows.Scan(&st.ID, &st.Diva, &st.Name, &st.Geom, &st.DistanceM); err != nil {
			return nil, fmt.Errorf("scan radius row: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read radius rows: %w", err)
	}

	return stations, nil
}

// SteigeByLine returns every platform of a line, both directions, ordered
// by direction then sequence
func (s *PGStore) SteigeByLine(ctx context.Context, lineID int) ([]models.Steig, error) {
	query := `
		SELECT id, fk_linien_id, fk_haltestellen_id, richtung, reihenfolge,
		       bereich, steig, rbl_nummer, geom::text
		FROM steige
		WHERE fk_linien_id = $1
		ORDER BY richtung, reihenfolge ASC
	`

	rows, err := s.pool.Query(ctx, query, lineID)
	if err != nil {
		return nil, fmt.Errorf("query steige: %w", err)
	}
	defer rows.Close()

	var steige []models.Steig
	for rows.Next() {
		var st models.Steig
		var richtung string
		if err := rows.Scan(&st.ID, &st.LineID, &st.StationID, &richtung, &st.Reihenfolge,
			&st.Bereich, &st.Steig, &st.RBLNummer, &st.Geom); err != nil {
			return nil, fmt.Errorf("scan steig row: %w", err)
		}
		st.Richtung = models.Richtung(richtung)
		steige = append(steige, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read steige rows: %w", err)
	}

	return steige, nil
}

// Lines lists lines with their platform counts, optionally filtered by
// transport mode
func (s *PGStore) Lines(ctx context.Context, verkehrsmittel string) ([]LineInfo, error) {
	query := `
		SELECT l.id, l.bezeichnung, l.verkehrsmittel, COUNT(st.id) AS steige_count
		FROM linien l
		LEFT JOIN steige st ON st.fk_linien_id = l.id
	`

	args := []interface{}{}
	if verkehrsmittel != "" {
		query += " WHERE l.verkehrsmittel = $1"
		args = append(args, verkehrsmittel)
	}
	query += `
		GROUP BY l.id, l.bezeichnung, l.verkehrsmittel
		ORDER BY l.bezeichnung
	`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query linien: %w", err)
	}
	defer rows.Close()

	var lines []LineInfo
	for rows.Next() {
		var li LineInfo
		var mode string
		if err := rows.Scan(&li.ID, &li.Bezeichnung, &mode, &li.SteigeCount); err != nil {
			return nil, fmt.Errorf("scan linie row: %w", err)
		}
		li.Verkehrsmittel = models.Verkehrsmittel(mode)
		lines = append(lines, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read linien rows: %w", err)
	}

	return lines, nil
}
