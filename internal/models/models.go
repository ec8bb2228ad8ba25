package models

// Verkehrsmittel represents the transport mode of a line
type Verkehrsmittel string

const (
	ModeMetro    Verkehrsmittel = "ptMetro"
	ModeTram     Verkehrsmittel = "ptTram"
	ModeBusCity  Verkehrsmittel = "ptBusCity"
	ModeBusNight Verkehrsmittel = "ptBusNight"
)

// Richtung is the direction tag on a platform ("H" outbound, "R" return)
type Richtung string

const (
	RichtungH Richtung = "H"
	RichtungR Richtung = "R"
)

// Station represents a physical stop location (Haltestelle)
// Geom holds the hex-encoded WKB geometry exactly as PostGIS returns it
type Station struct {
	ID   int
	Diva *int
	Name *string
	Geom string
}

// Line represents a transit line
type Line struct {
	ID             int
	Bezeichnung    string
	Verkehrsmittel Verkehrsmittel
}

// Steig represents a platform: one boarding point of one line at one station.
// Reihenfolge is the platform's sequence position along the line's route.
type Steig struct {
	ID          int
	LineID      int
	StationID   int
	Richtung    Richtung
	Reihenfolge int
	Bereich     *int
	Steig       *string
	RBLNummer   *int
	Geom        string
}

// RadiusStation is a station row returned by the radius stored procedure,
// carrying the distance the procedure computed
type RadiusStation struct {
	Station
	DistanceM float64
}
