package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeed_RoundTripThroughMPS(t *testing.T) {
	units := []SpeedUnits{MetersPS, Knots, KPH, MPH, RPM, Percentage}
	for _, from := range units {
		for _, to := range units {
			s := NewSpeed(1.7, from)
			back := s.To(to).To(from)
			assert.InDelta(t, s.Value, back.Value, 1e-9, "%s -> %s", from, to)
		}
	}
}

func TestSpeed_RPMToMPS(t *testing.T) {
	assert.InDelta(t, 1.3, NewSpeed(1000, RPM).MPS(), 0.01)
	assert.InDelta(t, 1.3, NewSpeed(100, Percentage).MPS(), 0.01)
	assert.InDelta(t, 1000, NewSpeed(1.3, MetersPS).To(RPM).Value, 1e-9)
}

func TestSpeed_StandardUnits(t *testing.T) {
	assert.InDelta(t, 1.0, NewSpeed(3.6, KPH).MPS(), 1e-12)
	assert.InDelta(t, 1.0, NewSpeed(1.943844, Knots).MPS(), 1e-12)
	assert.InDelta(t, 1.0, NewSpeed(2.236936, MPH).MPS(), 1e-12)
}

func TestParseSpeedUnits(t *testing.T) {
	tests := []struct {
		input   string
		want    SpeedUnits
		wantErr bool
	}{
		{"m/s", MetersPS, false},
		{"METERS_PS", MetersPS, false},
		{"rpm", RPM, false},
		{"%", Percentage, false},
		{"PERCENTAGE", Percentage, false},
		{"kn", Knots, false},
		{"km/h", KPH, false},
		{"mph", MPH, false},
		{"furlongs", RPM, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSpeedUnits(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownUnits))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpeedUnits_StringParsesBack(t *testing.T) {
	for _, u := range []SpeedUnits{MetersPS, Knots, KPH, MPH, RPM, Percentage} {
		got, err := ParseSpeedUnits(u.String())
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
}

func TestZUnits_SignedHeight(t *testing.T) {
	assert.Equal(t, -10.0, ZDepth.SignedHeight(10))
	assert.Equal(t, 10.0, ZAltitude.SignedHeight(10))
	assert.Equal(t, 10.0, ZHeight.SignedHeight(10))
	assert.Equal(t, 0.0, ZNone.SignedHeight(10))

	z, err := ParseZUnits("depth")
	require.NoError(t, err)
	assert.Equal(t, ZDepth, z)

	z, err = ParseZUnits("SEA_LEVEL")
	assert.ErrorIs(t, err, ErrUnknownUnits)
	assert.Equal(t, ZNone, z)
}

func TestDisplace_InverseOfDisplacement(t *testing.T) {
	lat, lon, depth := Displace(41.0, -8.0, 0, 100, -250, 0)

	n, e, d := Displacement(41.0, -8.0, 0, lat, lon, depth)
	assert.InDelta(t, 100, n, 1e-3)
	assert.InDelta(t, -250, e, 1e-3)
	assert.InDelta(t, 0, d, 1e-2)
}

func TestECEF_RoundTrip(t *testing.T) {
	lat, lon := 41.18*math.Pi/180, -8.7*math.Pi/180
	x, y, z := ToECEF(lat, lon, 12.5)
	rLat, rLon, hae := ToGeodetic(x, y, z)
	assert.InDelta(t, lat, rLat, 1e-9)
	assert.InDelta(t, lon, rLon, 1e-12)
	assert.InDelta(t, 12.5, hae, 1e-3)
}

func TestLocation_TranslateIsOrderIndependent(t *testing.T) {
	base := NewLocation(41, -8)

	a := base.Translate(10, 0, 0).Translate(0, 20, 1).Translate(-5, 3, 0).Absolute()
	b := base.Translate(-5, 3, 0).Translate(10, 0, 0).Translate(0, 20, 1).Absolute()

	assert.InDelta(t, a.Latitude, b.Latitude, 1e-12)
	assert.InDelta(t, a.Longitude, b.Longitude, 1e-12)

	n, e, _ := a.OffsetFrom(base)
	assert.InDelta(t, 5, n, 1e-3)
	assert.InDelta(t, 23, e, 1e-3)
}

func TestLocation_AbsoluteAppliesDownToZ(t *testing.T) {
	l := NewLocation(41, -8).WithZ(10, ZDepth).Translate(0, 0, 2)
	assert.InDelta(t, 12, l.Absolute().Z, 1e-12)

	l = NewLocation(41, -8).WithZ(10, ZAltitude).Translate(0, 0, 2)
	assert.InDelta(t, 8, l.Absolute().Z, 1e-12)
}

func TestLocation_PolarOffset(t *testing.T) {
	l := NewLocation(0, 0)
	l.OffsetDistance = 100
	l.Azimuth = 90

	n, e, d := l.Offsets()
	assert.InDelta(t, 0, n, 1e-9)
	assert.InDelta(t, 100, e, 1e-9)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestCustomSettings_PreservesOrder(t *testing.T) {
	var c CustomSettings
	c.Set("b", "1", HintNumber)
	c.Set("a", "x", HintString)
	c.Set("b", "2", HintNumber)
	assert.Equal(t, []string{"b", "a"}, c.Names())

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	clone := c.Clone()
	clone.Set("a", "y", HintString)
	v, _ = c.Get("a")
	assert.Equal(t, "x", v)

	hint, ok := c.HintOf("a")
	assert.True(t, ok)
	assert.Equal(t, HintString, hint)
	_, ok = c.HintOf("missing")
	assert.False(t, ok)

	c.Delete("b")
	assert.Equal(t, []string{"a"}, c.Names())
}

func TestParseTypeHint(t *testing.T) {
	assert.Equal(t, HintNumber, ParseTypeHint("NUMBER"))
	assert.Equal(t, HintBoolean, ParseTypeHint("boolean"))
	assert.Equal(t, HintString, ParseTypeHint("list"))
}

func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    Template
		wantErr bool
	}{
		{"complete", Template{Name: "survey", Document: []byte("<node/>")}, false},
		{"missing name", Template{Document: []byte("<node/>")}, true},
		{"missing document", Template{Name: "survey"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTemplate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
