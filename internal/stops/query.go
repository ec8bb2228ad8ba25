package stops

import (
	"strconv"
	"strings"
)

// Mode selects exactly one station resolution strategy
type Mode int

const (
	// ModeByLine resolves stations from a line's outbound platforms,
	// ordered by platform sequence
	ModeByLine Mode = iota
	// ModeByIDs resolves stations from an explicit caller-supplied id list
	ModeByIDs
	// ModeDefault resolves the curated subset: every station served by the
	// fixed transport mode
	ModeDefault
)

// Query is the parsed request: one mode plus the argument that mode needs
type Query struct {
	Mode   Mode
	LineID int
	IDs    []int
}

// ParseQuery selects the resolution mode from the raw query parameters.
// Priority: lineId first, then stationIds, then default. Contradictory
// parameters are resolved by this priority, never rejected.
func ParseQuery(lineID, stationIDs string) Query {
	if lineID != "" {
		if id, err := strconv.Atoi(strings.TrimSpace(lineID)); err == nil {
			return Query{Mode: ModeByLine, LineID: id}
		}
	}
	if stationIDs != "" {
		return Query{Mode: ModeByIDs, IDs: ParseStationIDs(stationIDs)}
	}
	return Query{Mode: ModeDefault}
}

// ParseStationIDs splits a comma-separated id list, dropping tokens that are
// not integers. Partial success is fine here: the caller controls the list.
func ParseStationIDs(raw string) []int {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
