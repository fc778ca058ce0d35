package maneuver

import (
	"testing"
	"time"

	"github.com/seaplan/mplan/internal/pattern"
	"github.com/seaplan/mplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIDs(t *testing.T) {
	ids := &SequenceIDs{}
	assert.Equal(t, "Goto1", NewGoto(ids).ID)
	assert.Equal(t, "Loiter2", NewLoiter(ids).ID)
	assert.NotEmpty(t, NewGoto(nil).ID)
	assert.NotEqual(t, NewGoto(nil).ID, NewGoto(nil).ID)
}

func TestNew_Defaults(t *testing.T) {
	g := NewGoto(nil)
	assert.Equal(t, DefaultMaxTime, g.MaxTime)
	assert.Equal(t, core.NewSpeed(1000, core.RPM), g.Speed())
	assert.Equal(t, 100.0, g.SpeedTolerance())

	l := NewLoiter(nil)
	assert.Equal(t, 15.0, l.Radius())
	assert.Equal(t, 60, l.Duration())
	assert.Equal(t, LoiterCircular, l.LoiterType())

	e := NewElevator(nil)
	assert.Equal(t, 5.0, e.Radius())

	p := NewPopUp(nil)
	assert.Equal(t, 10.0, p.RadiusTolerance())
	assert.Equal(t, 300, p.Duration())
}

func TestClone_SharesNothing(t *testing.T) {
	f := NewFollowTrajectory(nil)
	f.SetPoints([]core.OffsetPoint{{North: 1, Time: 1}})
	f.SetCustomValue("a", "1", core.HintNumber)
	f.SetStartActions([]core.Action{{Name: "x", Params: []core.Param{{Name: "p", Value: "1"}}}})

	c := f.Clone().(*FollowTrajectory)
	require.Equal(t, f, c)

	f.SetPoints([]core.OffsetPoint{{North: 9}})
	f.SetCustomValue("a", "2", core.HintNumber)
	f.SetStartActions(nil)
	f.MaxTime = 1

	assert.Equal(t, []core.OffsetPoint{{North: 1, Time: 1}}, c.Points())
	v, _ := c.Custom().Get("a")
	assert.Equal(t, "1", v)
	assert.Len(t, c.StartActions(), 1)
	assert.Equal(t, DefaultMaxTime, c.MaxTime)
}

func TestClone_CoverArea(t *testing.T) {
	a := NewCoverArea(nil)
	a.SetPolygon([]core.Location{core.NewLocation(1, 1), core.NewLocation(1, 2), core.NewLocation(2, 2)})
	c := a.Clone().(*CoverArea)
	a.SetPolygon(nil)
	assert.Len(t, c.Polygon(), 3)
}

func TestAccessors_Copy(t *testing.T) {
	g := NewGoto(nil)
	g.SetCustomValue("a", "1", core.HintNumber)
	custom := g.Custom()
	custom[0].Value = "changed"
	v, _ := g.Custom().Get("a")
	assert.Equal(t, "1", v)
}

func TestCapabilities(t *testing.T) {
	var (
		_ Located      = NewGoto(nil)
		_ SpeedBearer  = NewGoto(nil)
		_ PathProvider = NewRowsPattern(nil)
		_ StartLocated = NewFollowPath(nil)
		_ StartLocated = NewElevator(nil)
		_ Timed        = NewLoiter(nil)
		_ Validator    = NewDock(nil)
	)

	_, located := Maneuver(NewHeadingSpeedDepth(nil)).(Located)
	assert.False(t, located)
	_, timed := Maneuver(NewGoto(nil)).(Timed)
	assert.False(t, timed)
	_, speed := Maneuver(NewTeleoperation(nil)).(SpeedBearer)
	assert.False(t, speed)
}

func TestLoiter_LocationRadius(t *testing.T) {
	l := NewLoiter(nil)
	loc := core.NewLocation(41, -8)
	loc.Radius = 40
	l.SetLocation(loc)
	assert.Equal(t, 40.0, l.Radius())
	assert.Equal(t, 40.0, l.Location().Radius)

	l.SetLocation(core.NewLocation(41, -8))
	assert.Equal(t, 40.0, l.Radius())
}

func TestTrack_EndLocation(t *testing.T) {
	f := NewFollowPath(nil)
	start := core.NewLocation(41, -8)
	f.SetLocation(start)
	assert.Equal(t, start, f.EndLocation())

	f.SetPoints([]core.OffsetPoint{{North: 10}, {North: 100, East: 50}})
	end := f.EndLocation()
	n, e, _ := end.Offsets()
	assert.Equal(t, 100.0, n)
	assert.Equal(t, 50.0, e)
	assert.InDelta(t, 111.8, start.HorizontalDistance(end), 0.5)
}

func TestPattern_StartAndEnd(t *testing.T) {
	r := NewRowsPattern(nil)
	r.SetLocation(core.NewLocation(41, -8))
	points := r.Points()
	require.NotEmpty(t, points)

	first, last := points[0], points[len(points)-1]
	sn, se, _ := r.StartLocation().Offsets()
	en, ee, _ := r.EndLocation().Offsets()
	assert.Equal(t, first.North, sn)
	assert.Equal(t, first.East, se)
	assert.Equal(t, last.North, en)
	assert.Equal(t, last.East, ee)
}

func TestPattern_ZeroWidth(t *testing.T) {
	r := NewRowsPattern(nil)
	r.SetWidth(0)
	assert.Len(t, r.Points(), 1)
}

func TestElevator_StartLocation(t *testing.T) {
	e := NewElevator(nil)
	e.SetLocation(core.NewLocation(41, -8).WithZ(30, core.ZDepth))
	e.SetStartZ(0, core.ZDepth)
	assert.Equal(t, 0.0, e.StartLocation().Z)
	assert.Equal(t, 30.0, e.EndLocation().Z)
}

func TestScheduledGoto_ArrivalTime(t *testing.T) {
	s := NewScheduledGoto(nil)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ArrivalTime(), 2*time.Second)

	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	s.SetArrivalTime(at)
	assert.True(t, at.Equal(s.ArrivalTime()))
}

func TestRecalculateTimes(t *testing.T) {
	f := NewFollowTrajectory(nil)
	f.SetSpeed(core.NewSpeed(2, core.MetersPS))
	f.SetPoints([]core.OffsetPoint{{North: 10}, {North: 10, East: 20}, {North: 10, East: 20, Down: 6}})
	require.NoError(t, f.RecalculateTimes())

	points := f.Points()
	assert.InDelta(t, 5, points[0].Time, 1e-12)
	assert.InDelta(t, 10, points[1].Time, 1e-12)
	assert.InDelta(t, 3, points[2].Time, 1e-12)

	f.SetSpeed(core.NewSpeed(0, core.MetersPS))
	assert.ErrorIs(t, f.RecalculateTimes(), ErrZeroSpeed)
}

func TestEstimatedDuration(t *testing.T) {
	l := NewLoiter(nil)
	d, ok := EstimatedDuration(l)
	assert.True(t, ok)
	assert.Equal(t, 60.0, d)

	f := NewFollowPath(nil)
	f.SetSpeed(core.NewSpeed(2, core.MetersPS))
	f.SetPoints([]core.OffsetPoint{{}, {North: 30, East: 40}})
	d, ok = EstimatedDuration(f)
	assert.True(t, ok)
	assert.InDelta(t, 25, d, 1e-12)

	r := NewRowsPattern(nil)
	r.SetSpeed(core.NewSpeed(1.3, core.MetersPS))
	d, ok = EstimatedDuration(r)
	assert.True(t, ok)
	assert.InDelta(t, pattern.PathLength(r.Points())/1.3, d, 1e-9)

	f.SetSpeed(core.NewSpeed(0, core.RPM))
	_, ok = EstimatedDuration(f)
	assert.False(t, ok)

	_, ok = EstimatedDuration(NewGoto(nil))
	assert.False(t, ok)
}

func fields(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() Maneuver
		want  []string
	}{
		{"valid goto", func() Maneuver { return NewGoto(nil) }, []string{}},
		{"negative speed", func() Maneuver {
			g := NewGoto(nil)
			g.SetSpeed(core.NewSpeed(-1, core.MetersPS))
			return g
		}, []string{"speed"}},
		{"bad timing", func() Maneuver {
			g := NewGoto(nil)
			g.MinTime, g.MaxTime = -1, 0
			return g
		}, []string{"minTime", "maxTime"}},
		{"bad hint", func() Maneuver {
			g := NewGoto(nil)
			g.SetCustomValue("depth", "deep", core.HintNumber)
			return g
		}, []string{"custom.depth"}},
		{"alternation out of range", func() Maneuver {
			r := NewRowsPattern(nil)
			r.SetAlternation(250)
			return r
		}, []string{"alternationPercentage"}},
		{"zero hstep", func() Maneuver {
			r := NewRows(nil)
			r.SetHStep(0)
			return r
		}, []string{"hstep"}},
		{"dock without target", func() Maneuver { return NewDock(nil) }, []string{"target"}},
		{"cover area without polygon", func() Maneuver { return NewCoverArea(nil) }, []string{"polygon"}},
		{"cover area triangle", func() Maneuver {
			c := NewCoverArea(nil)
			c.SetPolygon([]core.Location{core.NewLocation(0, 0), core.NewLocation(0, 1), core.NewLocation(1, 1)})
			return c
		}, []string{}},
		{"takeoff pitch", func() Maneuver {
			tk := NewTakeoff(nil)
			tk.SetTakeoffPitch(95)
			return tk
		}, []string{"takeoffPitch"}},
		{"land glide slope", func() Maneuver {
			l := NewLand(nil)
			l.SetGlideSlope(120)
			return l
		}, []string{"glideSlope"}},
		{"unknown delayed behavior", func() Maneuver {
			s := NewScheduledGoto(nil)
			s.SetDelayed("Panic")
			return s
		}, []string{"delayed"}},
		{"empty trajectory", func() Maneuver { return NewFollowTrajectory(nil) }, []string{"points"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields(Validate(tt.build())))
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
		ok    bool
	}{
		{"Clockwise", DirectionClockwise, true},
		{"counter-clockwise", DirectionCounterClockwise, true},
		{"  Into the wind ", DirectionIntoWind, true},
		{"widdershins", DirectionClockwise, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDirection(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCanonicalKind(t *testing.T) {
	assert.Equal(t, KindHeadingSpeedDepth, CanonicalKind("HeadingVelocityDepth"))
	assert.Equal(t, KindGoto, CanonicalKind(KindGoto))
}
