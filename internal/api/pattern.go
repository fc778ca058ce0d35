package api

import (
	"fmt"

	"github.com/seaplan/mplan/internal/geo"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/pattern"
	"github.com/seaplan/mplan/pkg/core"
)

// PathReference returns the location path points are offset from.
func PathReference(m maneuver.Maneuver) core.Location {
	if l, ok := m.(maneuver.Located); ok {
		return l.Location()
	}
	if s, ok := m.(maneuver.StartLocated); ok {
		return s.StartLocation()
	}
	return core.NewLocation(0, 0)
}

// patternResponse describes the path of m. Oversized patterns are rejected before any point is
// generated.
func patternResponse(m maneuver.Maneuver, path maneuver.PathProvider) (PatternResponse, error) {
	if err := maneuver.CheckPath(m); err != nil {
		return PatternResponse{}, err
	}
	ref := PathReference(m)
	start, err := geo.LocationPoint(ref)
	if err != nil {
		return PatternResponse{}, fmt.Errorf("%s reference: %w", m.Kind(), err)
	}
	points := path.Points()
	line, err := geo.PathLineString(ref, points)
	if err != nil {
		return PatternResponse{}, fmt.Errorf("%s path: %w", m.Kind(), err)
	}
	resp := PatternResponse{
		Kind:       m.Kind(),
		Points:     points,
		PathLength: pattern.PathLength(points),
		Reference:  start.AsText(),
		WKT:        line.AsText(),
	}
	if resp.Points == nil {
		resp.Points = []core.OffsetPoint{}
	}
	if d, ok := maneuver.EstimatedDuration(m); ok {
		resp.EstimatedDuration = &d
	}
	return resp, nil
}
