package maneuver

import "github.com/seaplan/mplan/internal/pattern"

// EstimatedDuration returns how long m is expected to take, in seconds: the time to travel
// its path at its speed plus any fixed hold duration. It reports false when m has neither
// a path nor a duration, has a path but no usable speed, or has a path too long to generate.
func EstimatedDuration(m Maneuver) (float64, bool) {
	if CheckPath(m) != nil {
		return 0, false
	}
	var total float64
	known := false

	if p, ok := m.(PathProvider); ok {
		if length := pattern.PathLength(p.Points()); length > 0 {
			s, ok := m.(SpeedBearer)
			if !ok {
				return 0, false
			}
			mps := s.Speed().MPS()
			if mps <= 0 {
				return 0, false
			}
			total += length / mps
		}
		known = true
	}
	if t, ok := m.(Timed); ok {
		total += float64(t.Duration())
		known = true
	}
	return total, known
}
