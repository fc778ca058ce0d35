package maneuver

import (
	"errors"
	"testing"

	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripDocument(t *testing.T, m, into Maneuver) {
	t.Helper()
	data, err := ExportDocument(m)
	require.NoError(t, err)
	require.NoError(t, ImportDocument(data, into), "document:\n%s", data)
}

func withCommon(m Maneuver) Maneuver {
	b := m.Common()
	b.MinTime = 5
	b.MaxTime = 900
	b.Initial = true
	b.XPos, b.YPos = 12.5, -3
	b.SetCustomValue("sampling", "10", core.HintNumber)
	b.SetCustomValue("sidescan", "true", core.HintBoolean)
	b.SetStartActions([]core.Action{{Name: "camera", Params: []core.Param{{Name: "mode", Value: "on"}}}})
	b.SetEndActions([]core.Action{{Name: "camera", Params: []core.Param{{Name: "mode", Value: "off"}}}})
	return m
}

func TestGoto_Document(t *testing.T) {
	ids := &SequenceIDs{}
	g := NewGoto(ids)
	g.SetLocation(core.NewLocation(41, -8).WithZ(10, core.ZDepth))
	g.SetSpeed(core.NewSpeed(1.5, core.MetersPS))

	data, err := ExportDocument(g)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, `<Goto kind="automatic">`)
	assert.Contains(t, doc, "<latitude>41</latitude>")
	assert.Contains(t, doc, "<longitude>-8</longitude>")
	assert.Contains(t, doc, "<depth>10</depth>")
	assert.Contains(t, doc, `unit="m/s">1.5</speed>`)
	assert.Contains(t, doc, "<maxTime>10000</maxTime>")

	back := NewGoto(ids)
	require.NoError(t, ImportDocument(data, back))
	assert.Equal(t, g, back)
}

func TestDocument_RoundTrip(t *testing.T) {
	ids := &SequenceIDs{}
	at := core.NewLocation(41.18, -8.7).WithZ(3, core.ZDepth)

	tests := []struct {
		name  string
		build func() Maneuver
		fresh func() Maneuver
	}{
		{"goto", func() Maneuver {
			g := NewGoto(ids)
			g.SetLocation(at)
			g.SetRadiusTolerance(4)
			g.Roll, g.Pitch, g.Yaw = 1, 2, 90
			return g
		}, func() Maneuver { return NewGoto(ids) }},
		{"launch", func() Maneuver {
			l := NewLaunch(ids)
			l.SetLocation(at)
			return l
		}, func() Maneuver { return NewLaunch(ids) }},
		{"drop", func() Maneuver {
			d := NewDrop(ids)
			d.SetLocation(at)
			d.SetSpeed(core.NewSpeed(50, core.Percentage))
			return d
		}, func() Maneuver { return NewDrop(ids) }},
		{"loiter", func() Maneuver {
			l := NewLoiter(ids)
			l.SetLocation(at)
			l.SetRadius(40)
			l.SetLoiterType(LoiterRacetrack)
			l.SetDirection(DirectionCounterClockwise)
			l.SetBearing(45)
			l.SetLength(120)
			return l
		}, func() Maneuver { return NewLoiter(ids) }},
		{"station keeping", func() Maneuver {
			s := NewStationKeeping(ids)
			s.SetLocation(at)
			s.SetKeepSafe(true)
			s.SetPopupPeriod(300)
			return s
		}, func() Maneuver { return NewStationKeeping(ids) }},
		{"follow trajectory", func() Maneuver {
			f := NewFollowTrajectory(ids)
			f.SetLocation(at)
			f.SetPoints([]core.OffsetPoint{{North: 10, Time: 5}, {North: 10, East: 20, Down: 1, Time: 12.5}})
			return f
		}, func() Maneuver { return NewFollowTrajectory(ids) }},
		{"follow path", func() Maneuver {
			f := NewFollowPath(ids)
			f.SetLocation(at)
			f.SetPoints([]core.OffsetPoint{{North: 10}, {North: 10, East: 20}})
			return f
		}, func() Maneuver { return NewFollowPath(ids) }},
		{"rows", func() Maneuver {
			r := NewRows(ids)
			r.SetLocation(at)
			r.SetWidth(150)
			r.SetCrossAngle(10)
			r.SetAlternation(80)
			r.SetFirstCurveRight(false)
			return r
		}, func() Maneuver { return NewRows(ids) }},
		{"rows pattern", func() Maneuver {
			r := NewRowsPattern(ids)
			r.SetLocation(at)
			r.SetBearing(30)
			r.SetSSRangeShadow(40)
			return r
		}, func() Maneuver { return NewRowsPattern(ids) }},
		{"ri pattern", func() Maneuver {
			r := NewRIPattern(ids)
			r.SetLocation(at)
			r.SetHStep(20)
			r.SetSquareCurve(false)
			return r
		}, func() Maneuver { return NewRIPattern(ids) }},
		{"cross hatch", func() Maneuver {
			c := NewCrossHatchPattern(ids)
			c.SetLocation(at)
			c.SetCurveOffset(5)
			return c
		}, func() Maneuver { return NewCrossHatchPattern(ids) }},
		{"expanding square", func() Maneuver {
			e := NewExpandingSquarePattern(ids)
			e.SetLocation(at)
			e.SetFirstCurveRight(false)
			return e
		}, func() Maneuver { return NewExpandingSquarePattern(ids) }},
		{"magnetometer", func() Maneuver {
			m := NewMagnetometer(ids)
			m.SetLocation(at)
			m.SetBearing(20)
			m.SetFirstClockwise(false)
			return m
		}, func() Maneuver { return NewMagnetometer(ids) }},
		{"compass calibration", func() Maneuver {
			c := NewCompassCalibration(ids)
			c.SetLocation(at)
			c.SetDirection(DirectionIntoWind)
			c.SetRadius(8)
			return c
		}, func() Maneuver { return NewCompassCalibration(ids) }},
		{"elevator", func() Maneuver {
			e := NewElevator(ids)
			e.SetLocation(at)
			e.SetStartZ(20, core.ZAltitude)
			e.SetUseCurrentLocation(true)
			return e
		}, func() Maneuver { return NewElevator(ids) }},
		{"popup", func() Maneuver {
			p := NewPopUp(ids)
			p.SetLocation(at)
			p.SetCurrPos(true)
			p.SetStationKeep(false)
			return p
		}, func() Maneuver { return NewPopUp(ids) }},
		{"heading speed depth", func() Maneuver {
			h := NewHeadingSpeedDepth(ids)
			h.SetHeading(270)
			h.SetZ(15, core.ZAltitude)
			h.SetUseSpeed(false)
			h.SetDuration(45)
			return h
		}, func() Maneuver { return NewHeadingSpeedDepth(ids) }},
		{"yoyo", func() Maneuver {
			y := NewYoYo(ids)
			y.SetLocation(at)
			y.SetAmplitude(4)
			return y
		}, func() Maneuver { return NewYoYo(ids) }},
		{"scheduled goto", func() Maneuver {
			s := NewScheduledGoto(ids)
			s.SetLocation(at)
			s.SetTravelZ(5, core.ZAltitude)
			s.SetDelayed(DelayedSkip)
			return s
		}, func() Maneuver { return NewScheduledGoto(ids) }},
		{"takeoff", func() Maneuver {
			tk := NewTakeoff(ids)
			tk.SetLocation(core.NewLocation(41.18, -8.7).WithZ(60, core.ZHeight))
			tk.SetTakeoffPitch(12)
			return tk
		}, func() Maneuver { return NewTakeoff(ids) }},
		{"land", func() Maneuver {
			l := NewLand(ids)
			l.SetLocation(core.NewLocation(41.18, -8.7).WithZ(0, core.ZHeight))
			l.SetBearing(180)
			l.SetGlideSlope(8)
			return l
		}, func() Maneuver { return NewLand(ids) }},
		{"dock", func() Maneuver {
			d := NewDock(ids)
			d.SetLocation(at)
			d.SetTarget("station-1")
			return d
		}, func() Maneuver { return NewDock(ids) }},
		{"teleoperation", func() Maneuver { return NewTeleoperation(ids) },
			func() Maneuver { return NewTeleoperation(ids) }},
		{"follow reference", func() Maneuver {
			f := NewFollowReference(ids)
			f.SetControlSource(0x2001)
			f.SetLoiterRadius(35)
			return f
		}, func() Maneuver { return NewFollowReference(ids) }},
		{"cover area", func() Maneuver {
			c := NewCoverArea(ids)
			c.SetLocation(at)
			c.SetPolygon([]core.Location{
				core.NewLocation(41.18, -8.7),
				core.NewLocation(41.19, -8.7),
				core.NewLocation(41.19, -8.69),
			})
			return c
		}, func() Maneuver { return NewCoverArea(ids) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := withCommon(tt.build())
			back := tt.fresh()
			roundTripDocument(t, m, back)
			assert.Equal(t, m, back)
		})
	}
}

func TestImportDocument_LeavesTargetOnFailure(t *testing.T) {
	const missingPoint = `<node><id>Goto9</id><maneuver><minTime>0</minTime><maxTime>60</maxTime>
<Goto kind="automatic"><speed unit="m/s">2</speed></Goto></maneuver></node>`

	g := withCommon(NewGoto(&SequenceIDs{})).(*Goto)
	g.SetLocation(core.NewLocation(41, -8))
	before := g.Clone()

	err := ImportDocument([]byte(missingPoint), g)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Equal(t, before, g)
}

func TestImportDocument_KindMismatch(t *testing.T) {
	data, err := ExportDocument(NewLoiter(nil))
	require.NoError(t, err)
	assert.ErrorIs(t, ImportDocument(data, NewGoto(nil)), ErrParse)
}

func TestImportDocument_Malformed(t *testing.T) {
	assert.ErrorIs(t, ImportDocument([]byte("<node><id>x"), NewGoto(nil)), ErrParse)
}

func TestImportDocument_Legacy(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		into  Maneuver
		check func(t *testing.T, m Maneuver)
	}{
		{
			name: "velocity element",
			doc: `<node><id>g</id><maneuver><Goto kind="automatic">
<finalPoint type="pointType"><point><coordinate><latitude>41</latitude><longitude>-8</longitude><depth>2</depth></coordinate></point></finalPoint>
<velocity tolerance="10" type="float" unit="RPM">1200</velocity></Goto></maneuver></node>`,
			into: NewGoto(nil),
			check: func(t *testing.T, m Maneuver) {
				g := m.(*Goto)
				assert.Equal(t, core.NewSpeed(1200, core.RPM), g.Speed())
				assert.Equal(t, 10.0, g.SpeedTolerance())
			},
		},
		{
			name: "speed without unit reads as m/s",
			doc: `<node><id>g</id><maneuver><Goto kind="automatic">
<finalPoint type="pointType"><point><coordinate><latitude>41</latitude><longitude>-8</longitude></coordinate></point></finalPoint>
<speed>1.2</speed></Goto></maneuver></node>`,
			into: NewGoto(nil),
			check: func(t *testing.T, m Maneuver) {
				assert.Equal(t, core.NewSpeed(1.2, core.MetersPS), m.(*Goto).Speed())
			},
		},
		{
			name: "misspelled loiter length",
			doc: `<node><id>l</id><maneuver><Loiter kind="automatic">
<basePoint type="pointType"><point><coordinate><latitude>41</latitude><longitude>-8</longitude></coordinate></point></basePoint>
<duration>30</duration><trajectory><radius>20</radius><radiusTolerance>2</radiusTolerance><type>Circular</type><lenght>55</lenght><bearing>0</bearing><direction>Counter-Clockwise</direction></trajectory>
</Loiter></maneuver></node>`,
			into: NewLoiter(nil),
			check: func(t *testing.T, m Maneuver) {
				l := m.(*Loiter)
				assert.Equal(t, 55.0, l.Length())
				assert.Equal(t, DirectionCounterClockwise, l.Direction())
				assert.Equal(t, 30, l.Duration())
			},
		},
		{
			name: "heading velocity depth",
			doc: `<node><id>h</id><maneuver><HeadingVelocityDepth kind="automatic" useVelocity="false">
<depth>4</depth><duration>20</duration><heading>90</heading></HeadingVelocityDepth></maneuver></node>`,
			into: NewHeadingSpeedDepth(nil),
			check: func(t *testing.T, m Maneuver) {
				h := m.(*HeadingSpeedDepth)
				assert.False(t, h.UseSpeed())
				assert.True(t, h.UseHeading())
				assert.Equal(t, 90.0, h.Heading())
				z, units := h.Z()
				assert.Equal(t, 4.0, z)
				assert.Equal(t, core.ZDepth, units)
			},
		},
		{
			name: "elevator initial point",
			doc: `<node><id>e</id><maneuver><Elevator kind="automatic">
<initialPoint type="pointType"><point><coordinate><latitude>41</latitude><longitude>-8</longitude><depth>0</depth></coordinate></point></initialPoint>
<endZ>12</endZ><startZUnits>DEPTH</startZUnits><radius>7</radius></Elevator></maneuver></node>`,
			into: NewElevator(nil),
			check: func(t *testing.T, m Maneuver) {
				e := m.(*Elevator)
				assert.Equal(t, 12.0, e.StartZ())
				assert.Equal(t, core.ZDepth, e.StartZUnits())
				assert.Equal(t, 7.0, e.Radius())
				assert.Equal(t, 41.0, e.Location().Latitude)
			},
		},
		{
			name: "compass calibration named direction",
			doc: `<node><id>c</id><maneuver><CompassCalibration kind="automatic">
<initialPoint type="pointType"><point><coordinate><latitude>41</latitude><longitude>-8</longitude></coordinate></point></initialPoint>
<radius>6</radius><direction>Counter Clockwise</direction></CompassCalibration></maneuver></node>`,
			into: NewCompassCalibration(nil),
			check: func(t *testing.T, m Maneuver) {
				c := m.(*CompassCalibration)
				assert.Equal(t, DirectionCounterClockwise, c.Direction())
				assert.Equal(t, 300, c.Duration())
			},
		},
		{
			name: "degree minute second coordinates",
			doc: `<node><id>g</id><maneuver><Goto kind="automatic">
<finalPoint type="pointType"><point><coordinate><latitude>41N30'0''</latitude><longitude>8W15'0''</longitude></coordinate></point></finalPoint>
</Goto></maneuver></node>`,
			into: NewGoto(nil),
			check: func(t *testing.T, m Maneuver) {
				loc := m.(*Goto).Location()
				assert.InDelta(t, 41.5, loc.Latitude, 1e-12)
				assert.InDelta(t, -8.25, loc.Longitude, 1e-12)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, ImportDocument([]byte(tt.doc), tt.into))
			tt.check(t, tt.into)
		})
	}
}

func TestImportDocument_RequiredElements(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		into Maneuver
	}{
		{"heading without depth", `<node><id>h</id><maneuver><HeadingSpeedDepth><heading>1</heading></HeadingSpeedDepth></maneuver></node>`, NewHeadingSpeedDepth(nil)},
		{"rows without width", `<node><id>r</id><maneuver><Rows>
<basePoint><point><coordinate><latitude>0</latitude><longitude>0</longitude></coordinate></point></basePoint>
<length>10</length><hstep>5</hstep><bearing>0</bearing></Rows></maneuver></node>`, NewRows(nil)},
		{"scheduled without arrival", `<node><id>s</id><maneuver><ScheduledGoto>
<finalPoint><point><coordinate><latitude>0</latitude><longitude>0</longitude></coordinate></point></finalPoint></ScheduledGoto></maneuver></node>`, NewScheduledGoto(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ImportDocument([]byte(tt.doc), tt.into), ErrParse)
		})
	}
}

func TestImportDocument_UnknownLoiterTokens(t *testing.T) {
	doc := `<node><id>l</id><maneuver><Loiter>
<basePoint><point><coordinate><latitude>0</latitude><longitude>0</longitude></coordinate></point></basePoint>
<trajectory><radius>25</radius><type>Spiral</type><direction>Sideways</direction></trajectory></Loiter></maneuver></node>`
	l := NewLoiter(nil)
	require.NoError(t, ImportDocument([]byte(doc), l))
	assert.Equal(t, LoiterDefault, l.LoiterType())
	assert.Equal(t, DirectionVehicleDependent, l.Direction())
	assert.Equal(t, 25.0, l.Radius())

	w := NewLoiter(nil)
	require.NoError(t, w.FromWire(wire.Loiter{Type: "SPIRAL", Direction: "SIDEWAYS", Radius: 25}))
	assert.Equal(t, w.LoiterType(), l.LoiterType())
	assert.Equal(t, w.Direction(), l.Direction())
}

func TestImportDocument_UnknownSpeedUnits(t *testing.T) {
	doc := `<node><id>g</id><maneuver><Goto>
<finalPoint><point><coordinate><latitude>0</latitude><longitude>0</longitude></coordinate></point></finalPoint>
<speed unit="furlongs">3</speed></Goto></maneuver></node>`
	g := NewGoto(nil)
	require.NoError(t, ImportDocument([]byte(doc), g))
	assert.Equal(t, core.NewSpeed(3, core.RPM), g.Speed())
}

func TestHeadingSpeedDepth_DocumentFlags(t *testing.T) {
	h := NewHeadingSpeedDepth(nil)
	data, err := ExportDocument(h)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "useHeading")
	assert.NotContains(t, string(data), "zUnits")

	h.SetUseDepth(false)
	h.SetZ(3, core.ZAltitude)
	data, err = ExportDocument(h)
	require.NoError(t, err)
	assert.Contains(t, string(data), `useDepth="false"`)
	assert.Contains(t, string(data), "<zUnits>ALTITUDE</zUnits>")
}

func TestSurvey_DocumentOmitsDefaults(t *testing.T) {
	r := NewRowsPattern(nil)
	data, err := ExportDocument(r)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "<width>100</width>")
	assert.Contains(t, doc, "<hstep>27</hstep>")
	assert.NotContains(t, doc, "alternationPercentage")

	r.SetAlternation(60)
	data, err = ExportDocument(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<alternationPercentage>60</alternationPercentage>")
}

func TestUnconstrained_KeepsPayload(t *testing.T) {
	doc := `<node><id>x1</id><maneuver><maxTime>120</maxTime><SonarSweep kind="automatic" mode="fine"><sectors>4</sectors></SonarSweep></maneuver></node>`

	u := NewUnconstrained(nil, "")
	require.NoError(t, ImportDocument([]byte(doc), u))
	assert.Equal(t, "SonarSweep", u.Kind())
	assert.Equal(t, 120, u.MaxTime)

	data, err := ExportDocument(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<SonarSweep kind="automatic" mode="fine"><sectors>4</sectors></SonarSweep>`)

	again := NewUnconstrained(nil, "")
	require.NoError(t, ImportDocument(data, again))
	assert.Equal(t, u.Kind(), again.Kind())
	assert.Equal(t, u.EncodePayload(), again.EncodePayload())
}

func TestUnconstrained_EmptyPayload(t *testing.T) {
	data, err := ExportDocument(NewUnconstrained(nil, "Survey"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Survey></Survey>")
}
