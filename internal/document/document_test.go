package document

import (
	"encoding/xml"
	"math"
	"testing"

	"github.com/seaplan/mplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	XMLName xml.Name `xml:"Goto"`
	Kind    string   `xml:"kind,attr"`
	Final   *LocatedPoint
	Speed   *Speed `xml:"speed"`
}

func TestNode_RoundTrip(t *testing.T) {
	var settings core.CustomSettings
	settings.Set("mode", "fast", core.HintString)
	settings.Set("gain", "0.5", core.HintNumber)

	n := &Node{
		Start: true,
		XPos:  120,
		YPos:  -40,
		ID:    "go-1",
		Body: Body{
			MinTime: 5,
			MaxTime: 300,
			Payload: testPayload{
				Kind:  "automatic",
				Final: NewLocatedPoint(core.NewLocation(41.18, -8.7), Float(2)),
				Speed: NewSpeed(core.NewSpeed(1.5, core.MetersPS), nil),
			},
			Custom: NewCustomSettings(settings),
		},
		Actions: NewActions(
			[]core.Action{{Name: "camera", Params: []core.Param{{Name: "on", Value: "true"}}}},
			nil,
		),
	}

	data, err := Marshal(n)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, got.Start)
	assert.Equal(t, 120.0, got.XPos)
	assert.Equal(t, -40.0, got.YPos)
	assert.Equal(t, "go-1", got.ID)
	assert.Equal(t, 5, got.Body.MinTime)
	assert.Equal(t, 300, got.Body.MaxTime)
	assert.Equal(t, settings, got.Body.Custom.Core())

	start, end := got.Actions.Core()
	assert.Equal(t, []core.Action{{Name: "camera", Params: []core.Param{{Name: "on", Value: "true"}}}}, start)
	assert.Nil(t, end)

	require.NotNil(t, got.Body.Raw)
	assert.Equal(t, "Goto", got.Body.Raw.Kind())
	kind, ok := got.Body.Raw.Attr("kind")
	assert.True(t, ok)
	assert.Equal(t, "automatic", kind)
	_, ok = got.Body.Raw.Attr("missing")
	assert.False(t, ok)

	var p testPayload
	require.NoError(t, got.Body.Raw.Decode(&p))
	loc, err := p.Final.Location()
	require.NoError(t, err)
	assert.Equal(t, 41.18, loc.Latitude)
	assert.Equal(t, -8.7, loc.Longitude)
	assert.Equal(t, 2.0, p.Final.RadiusToleranceOr(0))

	speed, err := p.Speed.Core(core.Speed{}, core.RPM)
	require.NoError(t, err)
	assert.Equal(t, core.NewSpeed(1.5, core.MetersPS), speed)
}

func TestUnmarshal_DefaultMaxTime(t *testing.T) {
	n, err := Unmarshal([]byte(`<node><id>a</id><maneuver><Loiter/></maneuver></node>`))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTime, n.Body.MaxTime)
	assert.Zero(t, n.Body.MinTime)
	assert.Nil(t, n.Body.Custom)
	assert.Nil(t, n.Actions)
}

func TestUnmarshal_FirstPayloadWins(t *testing.T) {
	n, err := Unmarshal([]byte(`<node><maneuver><Loiter/><Goto/></maneuver></node>`))
	require.NoError(t, err)
	assert.Equal(t, "Loiter", n.Body.Raw.Kind())
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not xml", data: "plain text"},
		{name: "truncated", data: "<node><maneuver><Goto>"},
		{name: "no payload", data: "<node><id>a</id><maneuver><maxTime>3</maxTime></maneuver></node>"},
		{name: "bad maxTime", data: "<node><maneuver><maxTime>soon</maxTime><Goto/></maneuver></node>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestMarshal_NoPayload(t *testing.T) {
	_, err := Marshal(&Node{ID: "empty"})
	assert.ErrorContains(t, err, "no payload")
}

func TestPoint_RoundTrip(t *testing.T) {
	l := core.NewLocation(41.18, -8.7)
	l.ID, l.Name = "p1", "harbour"
	l.Z, l.ZUnits = 3, core.ZDepth
	l.OffsetNorth, l.OffsetEast, l.OffsetDown = -10, 5, -2

	p := NewPoint(l)
	assert.Equal(t, "DEPTH", p.ZUnits)
	require.NotNil(t, p.Coordinate.OffsetSouth)
	assert.Equal(t, 10.0, *p.Coordinate.OffsetSouth)
	require.NotNil(t, p.Coordinate.OffsetUp)
	assert.Equal(t, 2.0, *p.Coordinate.OffsetUp)
	assert.Nil(t, p.Coordinate.OffsetNorth)
	assert.Nil(t, p.Coordinate.Height)

	data, err := xml.Marshal(p)
	require.NoError(t, err)
	var decoded Point
	require.NoError(t, xml.Unmarshal(data, &decoded))

	got, err := decoded.Location()
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestPoint_PolarOffset(t *testing.T) {
	l := core.NewLocation(10, 20)
	l.OffsetDistance, l.Azimuth, l.Zenith = 50, 45, 80

	got, err := NewPoint(l).Location()
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.OffsetDistance)
	assert.Equal(t, 45.0, got.Azimuth)
	assert.Equal(t, 80.0, got.Zenith)
}

func TestPoint_Location(t *testing.T) {
	t.Run("height without z-units", func(t *testing.T) {
		p := &Point{Coordinate: Coordinate{Latitude: "1", Longitude: "2", Height: Float(7)}}
		l, err := p.Location()
		require.NoError(t, err)
		assert.Equal(t, core.ZHeight, l.ZUnits)
		assert.Equal(t, 7.0, l.Z)
	})

	t.Run("unknown z-units", func(t *testing.T) {
		p := &Point{Coordinate: Coordinate{Latitude: "1", Longitude: "2", Depth: Float(4)}, ZUnits: "SEABED"}
		l, err := p.Location()
		require.NoError(t, err)
		assert.Equal(t, core.ZNone, l.ZUnits)
	})

	t.Run("bad latitude", func(t *testing.T) {
		p := &Point{Coordinate: Coordinate{Latitude: "north", Longitude: "2"}}
		_, err := p.Location()
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("missing", func(t *testing.T) {
		var p *Point
		_, err := p.Location()
		assert.ErrorIs(t, err, ErrMalformed)

		var lp *LocatedPoint
		_, err = lp.Location()
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Equal(t, 3.0, lp.RadiusToleranceOr(3))
	})
}

func TestSpeed_Core(t *testing.T) {
	fallback := core.NewSpeed(1, core.MetersPS)

	var missing *Speed
	got, err := missing.Core(fallback, core.RPM)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)
	assert.Equal(t, 0.2, missing.ToleranceOr(0.2))

	got, err = (&Speed{Value: 1200}).Core(fallback, core.RPM)
	require.NoError(t, err)
	assert.Equal(t, core.NewSpeed(1200, core.RPM), got)

	got, err = (&Speed{Value: 3, Unit: "furlongs"}).Core(fallback, core.MetersPS)
	assert.ErrorIs(t, err, core.ErrUnknownUnits)
	assert.Equal(t, core.RPM, got.Units)

	_, err = (&Speed{Value: math.NaN(), Unit: "m/s"}).Core(fallback, core.MetersPS)
	assert.ErrorIs(t, err, ErrMalformed)

	assert.Equal(t, 0.5, (&Speed{Tolerance: Float(0.5)}).ToleranceOr(0))
}

func TestPickSpeed(t *testing.T) {
	speed, velocity := &Speed{Value: 1}, &Speed{Value: 2}
	assert.Same(t, speed, PickSpeed(speed, velocity))
	assert.Same(t, velocity, PickSpeed(nil, velocity))
	assert.Nil(t, PickSpeed(nil, nil))
}

func TestCustomSettings(t *testing.T) {
	assert.Nil(t, NewCustomSettings(nil))
	assert.Nil(t, (*CustomSettings)(nil).Core())

	cs := &CustomSettings{Settings: []Setting{
		{Name: "depth", TypeHint: "number", Value: "4"},
		{Name: "armed", TypeHint: "BOOLEAN", Value: "true"},
		{Name: "label", Value: "x"},
	}}
	got := cs.Core()
	require.Len(t, got, 3)
	assert.Equal(t, core.HintNumber, got[0].Hint)
	assert.Equal(t, core.HintBoolean, got[1].Hint)
	assert.Equal(t, core.HintString, got[2].Hint)
}

func TestNewActions_Empty(t *testing.T) {
	assert.Nil(t, NewActions(nil, nil))
	start, end := (*Actions)(nil).Core()
	assert.Nil(t, start)
	assert.Nil(t, end)
}
