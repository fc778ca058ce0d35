package maneuver

import (
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// ErrZeroSpeed is returned when times are derived from a speed that is not positive.
var ErrZeroSpeed = errors.New("speed must be positive")

// track is an ordered list of offsets from a start location, shared by the path variants.
type track struct {
	position
	propulsion
	points []core.OffsetPoint
}

func defaultTrack() track {
	return track{position: position{loc: core.NewLocation(0, 0)}, propulsion: defaultPropulsion()}
}

// StartLocation is the location the offsets are relative to.
func (t *track) StartLocation() core.Location { return t.loc }

// EndLocation is the start location translated by the last offset.
func (t *track) EndLocation() core.Location {
	if len(t.points) == 0 {
		return t.loc
	}
	last := t.points[len(t.points)-1]
	return t.loc.Translate(last.North, last.East, last.Down)
}

// Points returns a copy of the offsets.
func (t *track) Points() []core.OffsetPoint { return slices.Clone(t.points) }

func (t *track) validate() []ValidationError {
	var errs []ValidationError
	if len(t.points) == 0 {
		errs = append(errs, ValidationError{Field: "points", Message: "path is empty"})
	}
	return append(errs, validateSpeed(t.speed)...)
}

type trackPayload struct {
	XMLName    xml.Name
	Kind       string                 `xml:"kind,attr,omitempty"`
	BasePoint  *document.LocatedPoint `xml:"basePoint"`
	Trajectory *nedOffsets            `xml:"trajectory"`
	Path       *nedOffsets            `xml:"path"`
	Speed      *document.Speed        `xml:"speed"`
	Velocity   *document.Speed        `xml:"velocity"`
}

type nedOffsets struct {
	Offsets []document.NEDOffset `xml:"nedOffsets"`
}

func (t *track) payload(kind string, timed bool) *trackPayload {
	offsets := &nedOffsets{Offsets: make([]document.NEDOffset, len(t.points))}
	for i, pt := range t.points {
		o := document.NEDOffset{North: pt.North, East: pt.East, Depth: pt.Down}
		if timed {
			o.Time = document.Float(pt.Time)
		}
		offsets.Offsets[i] = o
	}
	p := &trackPayload{
		XMLName:   xmlName(kind),
		Kind:      "automatic",
		BasePoint: document.NewLocatedPoint(t.loc, document.Float(0)),
		Speed:     t.element(),
	}
	if timed {
		p.Trajectory = offsets
	} else {
		p.Path = offsets
	}
	return p
}

// decodeTrack reads either point container. Points without a time offset get core.NoTime.
func decodeTrack(kind string, raw *document.Payload) (track, error) {
	p := &trackPayload{}
	if err := decodePayload(raw, p); err != nil {
		return track{}, err
	}
	def := defaultTrack()
	loc, err := locatedPoint(kind, "basePoint", p.BasePoint)
	if err != nil {
		return track{}, err
	}
	prop, err := decodePropulsion(kind, p.Speed, p.Velocity, def.propulsion)
	if err != nil {
		return track{}, err
	}

	var offsets []document.NEDOffset
	switch {
	case p.Trajectory != nil:
		offsets = p.Trajectory.Offsets
	case p.Path != nil:
		offsets = p.Path.Offsets
	}
	var points []core.OffsetPoint
	for _, o := range offsets {
		pt := core.OffsetPoint{North: o.North, East: o.East, Down: o.Depth, Time: core.NoTime}
		if o.Time != nil {
			pt.Time = *o.Time
		}
		points = append(points, pt)
	}
	return track{position: position{loc: loc}, propulsion: prop, points: points}, nil
}

// FollowTrajectory follows timed offsets. In memory and in documents each point time is the
// delta from the previous point; on the wire times are absolute from the maneuver start.
type FollowTrajectory struct {
	Base
	track
}

// NewFollowTrajectory returns an empty FollowTrajectory.
func NewFollowTrajectory(ids IDSource) *FollowTrajectory {
	return &FollowTrajectory{Base: newBase(ids, KindFollowTrajectory), track: defaultTrack()}
}

func (f *FollowTrajectory) Kind() string                      { return KindFollowTrajectory }
func (f *FollowTrajectory) Clone() Maneuver                   { return deep.MustCopy(f) }
func (f *FollowTrajectory) ValidateParams() []ValidationError { return f.validate() }
func (f *FollowTrajectory) EncodePayload() any                { return f.payload(KindFollowTrajectory, true) }

// SetPoints stores a copy of points. Times are deltas in seconds.
func (f *FollowTrajectory) SetPoints(points []core.OffsetPoint) { f.points = slices.Clone(points) }

// RecalculateTimes sets each point time to the travel time from the previous point at the
// commanded speed.
func (f *FollowTrajectory) RecalculateTimes() error {
	mps := f.speed.MPS()
	if !(mps > 0) {
		return fmt.Errorf("failed to recalculate times: %w", ErrZeroSpeed)
	}
	var prev core.OffsetPoint
	for i, pt := range f.points {
		d := math.Sqrt(sq(pt.North-prev.North) + sq(pt.East-prev.East) + sq(pt.Down-prev.Down))
		f.points[i].Time = d / mps
		prev = pt
	}
	return nil
}

func sq(v float64) float64 { return v * v }

func (f *FollowTrajectory) DecodePayload(raw *document.Payload) (func(), error) {
	t, err := decodeTrack(KindFollowTrajectory, raw)
	if err != nil {
		return nil, err
	}
	for i := range t.points {
		if t.points[i].Time == core.NoTime {
			t.points[i].Time = 0
		}
	}
	return func() { f.track = t }, nil
}

func (f *FollowTrajectory) ToWire() (wire.Message, error) {
	custom, err := f.wireCustom(KindFollowTrajectory)
	if err != nil {
		return nil, err
	}
	msg := wire.FollowTrajectory{
		Timeout: wire.EncodeTimeout(f.MaxTime),
		Points:  make([]wire.TrajectoryPoint, len(f.points)),
		Custom:  custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(f.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(f.speed)
	var elapsed float64
	for i, pt := range f.points {
		elapsed += math.Max(pt.Time, 0)
		msg.Points[i] = wire.TrajectoryPoint{X: pt.North, Y: pt.East, Z: pt.Down, T: elapsed}
	}
	return msg, nil
}

func (f *FollowTrajectory) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.FollowTrajectory)
	if !ok {
		return wrongMessage(f, msg)
	}
	loc, err := locationFromWire(KindFollowTrajectory, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	var (
		points []core.OffsetPoint
		prev   float64
	)
	for i, pt := range w.Points {
		if pt.T < prev {
			return fmt.Errorf("%w: %s: point %d time %v before %v", ErrParse, KindFollowTrajectory, i, pt.T, prev)
		}
		points = append(points, core.OffsetPoint{North: pt.X, East: pt.Y, Down: pt.Z, Time: pt.T - prev})
		prev = pt.T
	}
	next := *f
	next.Base = f.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindFollowTrajectory, w.Speed, w.SpeedUnits)
	next.points = points
	*f = next
	return nil
}

// FollowPath follows untimed offsets.
type FollowPath struct {
	Base
	track
}

// NewFollowPath returns an empty FollowPath.
func NewFollowPath(ids IDSource) *FollowPath {
	return &FollowPath{Base: newBase(ids, KindFollowPath), track: defaultTrack()}
}

func (f *FollowPath) Kind() string                      { return KindFollowPath }
func (f *FollowPath) Clone() Maneuver                   { return deep.MustCopy(f) }
func (f *FollowPath) ValidateParams() []ValidationError { return f.validate() }
func (f *FollowPath) EncodePayload() any                { return f.payload(KindFollowPath, false) }

// SetPoints stores a copy of points with their times cleared.
func (f *FollowPath) SetPoints(points []core.OffsetPoint) {
	f.points = slices.Clone(points)
	for i := range f.points {
		f.points[i].Time = core.NoTime
	}
}

func (f *FollowPath) DecodePayload(raw *document.Payload) (func(), error) {
	t, err := decodeTrack(KindFollowPath, raw)
	if err != nil {
		return nil, err
	}
	for i := range t.points {
		t.points[i].Time = core.NoTime
	}
	return func() { f.track = t }, nil
}

func (f *FollowPath) ToWire() (wire.Message, error) {
	custom, err := f.wireCustom(KindFollowPath)
	if err != nil {
		return nil, err
	}
	return pathMessage(f.MaxTime, &f.track, f.points, custom), nil
}

func pathMessage(maxTime int, t *track, points []core.OffsetPoint, custom string) wire.FollowPath {
	msg := wire.FollowPath{
		Timeout: wire.EncodeTimeout(maxTime),
		Points:  make([]wire.PathPoint, len(points)),
		Custom:  custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(t.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(t.speed)
	for i, pt := range points {
		msg.Points[i] = wire.PathPoint{X: pt.North, Y: pt.East, Z: pt.Down}
	}
	return msg
}

func (f *FollowPath) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.FollowPath)
	if !ok {
		return wrongMessage(f, msg)
	}
	loc, err := locationFromWire(KindFollowPath, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	var points []core.OffsetPoint
	for _, pt := range w.Points {
		points = append(points, core.OffsetPoint{North: pt.X, East: pt.Y, Down: pt.Z, Time: core.NoTime})
	}
	next := *f
	next.Base = f.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindFollowPath, w.Speed, w.SpeedUnits)
	next.points = points
	*f = next
	return nil
}
