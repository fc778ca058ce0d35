package geo

import (
	"encoding/json"
	"fmt"

	"github.com/seaplan/mplan/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ParseVertices parses a JSON array of [lat, lon] pairs in decimal degrees into locations.
// Input format: "[[lat1,lon1],[lat2,lon2],...]"
func ParseVertices(input string) ([]core.Location, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse vertices JSON: %w", err)
	}

	if len(coords) < 3 {
		return nil, fmt.Errorf("polygon must have at least 3 vertices, got %d", len(coords))
	}

	out := make([]core.Location, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("vertex %d has insufficient values", i)
		}
		if coord[0] < -90 || coord[0] > 90 || coord[1] < -180 || coord[1] > 180 {
			return nil, fmt.Errorf("vertex %d: %w", i, ErrInvalidCoordinates)
		}
		out[i] = core.NewLocation(coord[0], coord[1])
	}

	return out, nil
}

// VerticesPolygon closes the vertex ring and returns it as a polygon in EPSG:4326.
func VerticesPolygon(vertices []core.Location) (geom.Polygon, error) {
	if len(vertices) < 3 {
		return geom.Polygon{}, fmt.Errorf("polygon must have at least 3 vertices, got %d", len(vertices))
	}
	flat := make([]float64, 0, (len(vertices)+1)*2)
	for _, v := range vertices {
		abs := v.Absolute()
		flat = append(flat, abs.Longitude, abs.Latitude)
	}
	flat = append(flat, flat[0], flat[1])

	ring, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("invalid polygon ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("invalid polygon: %w", err)
	}
	return poly, nil
}
