package api

import (
	"context"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stadtnetz/stops_core/internal/cache"
	"github.com/stadtnetz/stops_core/internal/db"
	"github.com/stadtnetz/stops_core/internal/stops"
)

// StopsService is what the handlers need from the stops domain layer
type StopsService interface {
	Collect(ctx context.Context, q stops.Query) (*geojson.FeatureCollection, error)
	WithinRadius(ctx context.Context, lat, lon float64, radiusM int) (*geojson.FeatureCollection, error)
	PlatformsByLine(ctx context.Context, lineID int) (*geojson.FeatureCollection, error)
	ListLines(ctx context.Context, verkehrsmittel string) ([]stops.LineInfo, error)
}

// Handler bundles the HTTP handlers with their injected service
type Handler struct {
	stops StopsService
}

// NewHandler creates a new API handler
func NewHandler(svc StopsService) *Handler {
	return &Handler{stops: svc}
}

// Stops handles the /stops endpoint. Query modes: lineId takes priority,
// then stationIds, then the default subset; contradictory parameters are
// resolved by that priority rather than rejected.
func (h *Handler) Stops(c *fiber.Ctx) error {
	q := stops.ParseQuery(c.Query("lineId"), c.Query("stationIds"))

	fc, err := h.stops.Collect(c.Context(), q)
	if err != nil {
		log.Printf("Stops collection failed: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fc)
}

// StopsRadius handles the /stops/radius endpoint
func (h *Handler) StopsRadius(c *fiber.Ctx) error {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	radiusStr := c.Query("radius", "500")

	if latStr == "" || lonStr == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "missing required parameters: lat and lon",
		})
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid latitude",
		})
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid longitude",
		})
	}

	radius, err := strconv.Atoi(radiusStr)
	if err != nil || radius < 0 || radius > 5000 {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid radius (must be between 0 and 5000 meters)",
		})
	}

	fc, err := h.stops.WithinRadius(c.Context(), lat, lon, radius)
	if err != nil {
		log.Printf("Radius search failed: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fc)
}

// Steige handles the /steige endpoint: platform-level features for one line
func (h *Handler) Steige(c *fiber.Ctx) error {
	lineID, err := strconv.Atoi(c.Query("lineId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "missing or invalid required parameter: lineId",
		})
	}

	fc, err := h.stops.PlatformsByLine(c.Context(), lineID)
	if err != nil {
		log.Printf("Platform collection failed: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fc)
}

// LinesResponse represents the response for the lines listing
type LinesResponse struct {
	Lines []LineEntry `json:"lines"`
	Total int         `json:"total"`
}

// LineEntry represents one line in the listing
type LineEntry struct {
	ID             int    `json:"id"`
	Bezeichnung    string `json:"bezeichnung"`
	Verkehrsmittel string `json:"verkehrsmittel"`
	SteigeCount    int    `json:"steige_count"`
}

// Lines handles the /lines endpoint
func (h *Handler) Lines(c *fiber.Ctx) error {
	verkehrsmittel := c.Query("verkehrsmittel") // Optional mode filter

	result, err := h.stops.ListLines(c.Context(), verkehrsmittel)
	if err != nil {
		log.Printf("Lines listing failed: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	lines := make([]LineEntry, 0, len(result))
	for _, li := range result {
		lines = append(lines, LineEntry{
			ID:             li.ID,
			Bezeichnung:    li.Bezeichnung,
			Verkehrsmittel: string(li.Verkehrsmittel),
			SteigeCount:    li.SteigeCount,
		})
	}

	return c.JSON(LinesResponse{
		Lines: lines,
		Total: len(lines),
	})
}

// Health handles the /health endpoint
func Health(c *fiber.Ctx) error {
	ctx := c.Context()

	// Check database
	dbErr := db.HealthCheck(ctx)
	dbStatus := "ok"
	if dbErr != nil {
		dbStatus = dbErr.Error()
	}

	// Check Redis
	redisErr := cache.HealthCheck(ctx)
	redisStatus := "ok"
	if redisErr != nil {
		redisStatus = redisErr.Error()
	}

	// Overall status
	status := "healthy"
	httpStatus := 200
	if dbErr != nil || redisErr != nil {
		status = "unhealthy"
		httpStatus = 503
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
