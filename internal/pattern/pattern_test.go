package pattern

import (
	"math"
	"testing"

	"github.com/seaplan/mplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotate(t *testing.T) {
	x, y := Rotate(math.Pi/2, 1, 0)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 1, y, 1e-12)

	x, y = Rotate(-math.Pi/2, 1, 0)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, -1, y, 1e-12)
}

func TestRows_ZigZagLength(t *testing.T) {
	points := Rows(RowsParams{Width: 100, Length: 200, Step: 30, Alternation: 1, SquareCurve: true})

	// four legs of 200 m joined by three 30 m transitions
	expected := 4*200.0 + 3*30.0
	assert.InEpsilon(t, expected, PathLength(points), 0.01)

	require.Len(t, points, 8)
	assert.Equal(t, core.OffsetPoint{North: 200, East: 0, Time: -1}, points[1])
	assert.Equal(t, core.OffsetPoint{North: 0, East: 90, Time: -1}, points[7])
}

func TestRows_Deterministic(t *testing.T) {
	p := RowsParams{Width: 120, Length: 300, Step: 27, Alternation: 0.6, CurveOffset: 15, Bearing: 0.4, CrossAngle: 0.1}
	assert.Equal(t, Rows(p), Rows(p))
}

func TestRows_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		p    RowsParams
	}{
		{"zero width", RowsParams{Width: 0, Length: 200, Step: 30, Alternation: 1}},
		{"zero length", RowsParams{Width: 100, Length: 0, Step: 30, Alternation: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Rows(tt.p), 1)
		})
	}
}

func TestRows_ZeroStepTerminates(t *testing.T) {
	points := Rows(RowsParams{Width: 1, Length: 10, Step: 0, Alternation: 1, SquareCurve: true})
	assert.Greater(t, len(points), 10)
}

func TestRows_BearingRotatesFirstLeg(t *testing.T) {
	points := Rows(RowsParams{Width: 50, Length: 100, Step: 25, Alternation: 1, SquareCurve: true, Bearing: math.Pi / 2})
	// heading east after a 90 degree bearing
	assert.InDelta(t, 0, points[1].North, 1e-9)
	assert.InDelta(t, 100, points[1].East, 1e-9)
}

func TestRows_InvertYMirrors(t *testing.T) {
	base := RowsParams{Width: 60, Length: 100, Step: 20, Alternation: 1, SquareCurve: true}
	right := Rows(base)
	base.InvertY = true
	left := Rows(base)

	require.Equal(t, len(right), len(left))
	for i := range right {
		assert.InDelta(t, right[i].North, left[i].North, 1e-9)
		assert.InDelta(t, -right[i].East, left[i].East, 1e-9)
	}
}

func TestRows_AlternationShortensReturnLegs(t *testing.T) {
	points := Rows(RowsParams{Width: 100, Length: 200, Step: 40, Alternation: 0.5, SquareCurve: true})
	// after the first leg the vehicle steps only step*alternation across
	assert.InDelta(t, 20, points[2].East, 1e-9)
}

func TestRI_ThreeLobes(t *testing.T) {
	single := Rows(RowsParams{Width: 90, Length: 90, Step: 30, Alternation: 1, CurveOffset: 5, SquareCurve: true})
	points := RI(90, 30, 1, 5, true, 0)
	assert.Len(t, points, 3*len(single))

	// first lobe is the plain row pattern shifted to the base corner
	assert.InDelta(t, single[1].North-45, points[1].North, 1e-9)
	assert.InDelta(t, single[1].East-45, points[1].East, 1e-9)
}

func TestCrossHatch_TwoPasses(t *testing.T) {
	single := Rows(RowsParams{Width: 80, Length: 80, Step: 20, Alternation: 1, SquareCurve: true})
	points := CrossHatch(80, 20, 0, true, 0)
	require.Len(t, points, 2*len(single))

	second := points[len(single):]
	// second pass starts at the south-east corner and its first leg runs west
	assert.InDelta(t, -40, second[0].North, 1e-9)
	assert.InDelta(t, 40, second[0].East, 1e-9)
	assert.InDelta(t, -40, second[1].North, 1e-9)
	assert.InDelta(t, -40, second[1].East, 1e-9)
}

func TestFigureEight(t *testing.T) {
	cw := FigureEight(100, 0, true)
	require.Len(t, cw, 9)
	assert.Equal(t, core.OffsetPoint{North: 0, East: 100, Time: -1}, cw[1])
	assert.Equal(t, core.OffsetPoint{North: -100, East: 0, Time: -1}, cw[5])
	assert.Equal(t, cw[0], cw[8])

	ccw := FigureEight(100, 0, false)
	assert.Equal(t, core.OffsetPoint{North: -100, East: 0, Time: -1}, ccw[1])

	rotated := FigureEight(100, math.Pi, true)
	assert.InDelta(t, 0, rotated[1].North, 1e-9)
	assert.InDelta(t, -100, rotated[1].East, 1e-9)

	assert.Len(t, FigureEight(0, 0, true), 1)
}

func TestExpandingSquare(t *testing.T) {
	points := ExpandingSquare(100, 10, 0, false)
	require.NotEmpty(t, points)
	assert.Equal(t, core.OffsetPoint{Time: -1}, points[0])
	assert.Equal(t, core.OffsetPoint{North: 10, Time: -1}, points[1])
	assert.Equal(t, core.OffsetPoint{North: 10, East: 10, Time: -1}, points[2])
	assert.Equal(t, core.OffsetPoint{North: -10, East: 10, Time: -1}, points[3])

	last := points[len(points)-1]
	assert.LessOrEqual(t, math.Abs(last.North), 50.0)
	assert.LessOrEqual(t, math.Abs(last.East), 50.0)

	assert.Len(t, ExpandingSquare(0, 10, 0, false), 1)
}

func TestPathLength(t *testing.T) {
	points := []core.OffsetPoint{{}, {North: 3, East: 4}, {North: 3, East: 10}}
	assert.InDelta(t, 11, PathLength(points), 1e-12)
	assert.Zero(t, PathLength(nil))
}

func TestSizeBounds(t *testing.T) {
	tests := []struct {
		name   string
		size   float64
		points []core.OffsetPoint
	}{
		{
			name:   "rows",
			size:   RowsSize(RowsParams{Width: 95, Length: 40, Step: 10, Alternation: 1}),
			points: Rows(RowsParams{Width: 95, Length: 40, Step: 10, Alternation: 1}),
		},
		{
			name:   "rows wide alternation",
			size:   RowsSize(RowsParams{Width: 100, Length: 40, Step: 10, Alternation: 2}),
			points: Rows(RowsParams{Width: 100, Length: 40, Step: 10, Alternation: 2}),
		},
		{name: "ri", size: RISize(60, 10, 0), points: RI(60, 10, 0, 5, false, 0)},
		{name: "cross hatch", size: CrossHatchSize(60, 10), points: CrossHatch(60, 10, 5, false, 0)},
		{name: "expanding square", size: ExpandingSquareSize(60, 7), points: ExpandingSquare(60, 7, 0, false)},
		{name: "zero width", size: ExpandingSquareSize(0, 7), points: ExpandingSquare(0, 7, 0, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.LessOrEqual(t, float64(len(tt.points)), tt.size)
			assert.NoError(t, CheckSize(tt.size))
		})
	}
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(MaxPoints))
	assert.ErrorIs(t, CheckSize(MaxPoints+1), ErrTooManyPoints)
	assert.ErrorIs(t, CheckSize(math.NaN()), ErrTooManyPoints)
	assert.ErrorIs(t, CheckSize(RowsSize(RowsParams{Width: 1e4, Length: 100, Step: 0.01})), ErrTooManyPoints)
	assert.ErrorIs(t, CheckSize(ExpandingSquareSize(1e4, 0.01)), ErrTooManyPoints)
}

func TestGeneratorsStopAtMaxPoints(t *testing.T) {
	rows := Rows(RowsParams{Width: 1e4, Length: 100, Step: 0.01, Alternation: 1})
	assert.LessOrEqual(t, len(rows), MaxPoints)
	assert.Greater(t, len(rows), MaxPoints-3)

	square := ExpandingSquare(1e4, 0.01, 0, false)
	assert.Len(t, square, MaxPoints)
}
