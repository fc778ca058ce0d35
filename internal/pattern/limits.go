package pattern

import (
	"errors"
	"fmt"
	"math"
)

// MaxPoints bounds the number of waypoints a generator returns. Generators stop early at the
// limit; callers check the Size functions first and reject oversized patterns instead.
const MaxPoints = 100_000

// ErrTooManyPoints is returned by CheckSize when a pattern would exceed MaxPoints.
var ErrTooManyPoints = errors.New("pattern exceeds point limit")

// CheckSize returns an error wrapping ErrTooManyPoints when size exceeds MaxPoints.
// A NaN size fails the check.
func CheckSize(size float64) error {
	if !(size <= MaxPoints) {
		return fmt.Errorf("%w: about %.0f points, limit %d", ErrTooManyPoints, size, MaxPoints)
	}
	return nil
}

func effectiveStep(step float64) float64 {
	step = math.Abs(step)
	if step == 0 {
		return minStep
	}
	return step
}

// RowsSize returns an upper bound of len(Rows(p)).
func RowsSize(p RowsParams) float64 {
	width := math.Abs(p.Width)
	if width == 0 || p.Length == 0 {
		return 1
	}
	legs := width/effectiveStep(p.Step) + math.Max(0, p.Alternation-1) + 2
	return 1 + 2*legs
}

// RISize returns an upper bound of len(RI(width, step, alternation, ...)).
func RISize(width, step, alternation float64) float64 {
	if width == 0 {
		return 1
	}
	return 3 * RowsSize(RowsParams{Width: width, Length: width, Step: step, Alternation: 2 - alternation})
}

// CrossHatchSize returns an upper bound of len(CrossHatch(width, step, ...)).
func CrossHatchSize(width, step float64) float64 {
	if width == 0 {
		return 1
	}
	return 2 * RowsSize(RowsParams{Width: width, Length: width, Step: step, Alternation: 1})
}

// ExpandingSquareSize returns an upper bound of len(ExpandingSquare(width, step, ...)).
func ExpandingSquareSize(width, step float64) float64 {
	width = math.Abs(width)
	if width == 0 {
		return 1
	}
	return 2*width/effectiveStep(step) + 6
}
