package core

import (
	"fmt"
	"strings"
)

// ZUnits is the vertical reference of a Z value.
type ZUnits int

const (
	ZNone ZUnits = iota
	ZDepth
	ZAltitude
	ZHeight
)

// String returns the token used by both document and wire forms.
func (z ZUnits) String() string {
	switch z {
	case ZDepth:
		return "DEPTH"
	case ZAltitude:
		return "ALTITUDE"
	case ZHeight:
		return "HEIGHT"
	default:
		return "NONE"
	}
}

// ParseZUnits parses a vertical reference token. Unknown tokens yield ZNone and ErrUnknownUnits.
func ParseZUnits(s string) (ZUnits, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE", "":
		return ZNone, nil
	case "DEPTH":
		return ZDepth, nil
	case "ALTITUDE":
		return ZAltitude, nil
	case "HEIGHT":
		return ZHeight, nil
	default:
		return ZNone, fmt.Errorf("%w: z %q", ErrUnknownUnits, s)
	}
}

// SignedHeight maps a z value onto a single up-positive axis.
// Depth is positive downward, Altitude and Height are positive upward.
// Height is relative to a fixed reference and is not comparable to sea level values.
func (z ZUnits) SignedHeight(value float64) float64 {
	switch z {
	case ZDepth:
		return -value
	case ZAltitude, ZHeight:
		return value
	default:
		return 0
	}
}
