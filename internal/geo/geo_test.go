package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/seaplan/mplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"decimal", "41.25", 41.25, false},
		{"negative decimal", "-8.5", -8.5, false},
		{"dms north", "41N15'0''", 41.25, false},
		{"dms west", "8W30'0''", -8.5, false},
		{"dms seconds", "0N0'36''", 0.01, false},
		{"degrees only", "12S", -12, false},
		{"empty", "", 0, true},
		{"garbage", "north", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCoordinates))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestFormatCoordinate_RoundTrip(t *testing.T) {
	v := 41.123456789012345
	got, err := ParseCoordinate(FormatCoordinate(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestLocationPoint(t *testing.T) {
	p, err := LocationPoint(core.NewLocation(41, -8).WithZ(10, core.ZDepth))
	require.NoError(t, err)
	assert.Equal(t, "POINT Z (-8 41 -10)", p.AsText())

	coords, ok := p.Coordinates()
	require.True(t, ok)
	assert.Equal(t, -8.0, coords.X)
	assert.Equal(t, 41.0, coords.Y)
	assert.Equal(t, -10.0, coords.Z)
}

func TestPathLineString(t *testing.T) {
	start := core.NewLocation(41, -8)
	points := []core.OffsetPoint{{}, {North: 100}, {North: 100, East: 100}}

	ls, err := PathLineString(start, points)
	require.NoError(t, err)
	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())

	first := seq.GetXY(0)
	assert.InDelta(t, -8, first.X, 1e-12)
	assert.InDelta(t, 41, first.Y, 1e-12)
	assert.Greater(t, seq.GetXY(1).Y, 41.0)
	assert.Greater(t, seq.GetXY(2).X, -8.0)
}

func TestPathLineString_SinglePoint(t *testing.T) {
	ls, err := PathLineString(core.NewLocation(41, -8), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, ls.Coordinates().Length())

	ls, err = PathLineString(core.NewLocation(41, -8), []core.OffsetPoint{{}, {}, {}})
	require.NoError(t, err)
	assert.Equal(t, 3, ls.Coordinates().Length())
	assert.Contains(t, ls.AsText(), "LINESTRING")
}

func TestNonFiniteCoordinates(t *testing.T) {
	bad := core.NewLocation(math.NaN(), -8)

	_, err := LocationPoint(bad)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = PathLineString(bad, []core.OffsetPoint{{}, {North: 10}})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, _, err = ToWebMercator(math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestToWebMercator(t *testing.T) {
	x, y, err := ToWebMercator(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, _, err = ToWebMercator(180, 0)
	require.NoError(t, err)
	assert.InDelta(t, 20037508.34, x, 1)

	_, _, err = ToWebMercator(0, 95)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestProjectLineString(t *testing.T) {
	ls, err := PathLineString(core.NewLocation(0, 0), []core.OffsetPoint{{}, {East: 1000}})
	require.NoError(t, err)
	projected, err := ProjectLineString(ls)
	require.NoError(t, err)
	assert.InDelta(t, 1000, projected.Coordinates().GetXY(1).X, 5)
}
