package maneuver

import (
	"encoding/xml"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// HeadingSpeedDepth holds a heading, a speed and a depth for a duration. Each of the three
// references can be disabled to leave that axis to the vehicle.
type HeadingSpeedDepth struct {
	Base
	propulsion

	heading    float64 // degrees
	z          float64
	zUnits     core.ZUnits
	duration   int
	useHeading bool
	useSpeed   bool
	useDepth   bool
}

// NewHeadingSpeedDepth returns a HeadingSpeedDepth with default parameters.
func NewHeadingSpeedDepth(ids IDSource) *HeadingSpeedDepth {
	h := &HeadingSpeedDepth{Base: newBase(ids, KindHeadingSpeedDepth)}
	h.setDefaults()
	return h
}

func (h *HeadingSpeedDepth) setDefaults() {
	h.propulsion = defaultPropulsion()
	h.zUnits = core.ZDepth
	h.duration = 10
	h.useHeading = true
	h.useSpeed = true
	h.useDepth = true
}

func (h *HeadingSpeedDepth) Kind() string            { return KindHeadingSpeedDepth }
func (h *HeadingSpeedDepth) Clone() Maneuver         { return deep.MustCopy(h) }
func (h *HeadingSpeedDepth) Heading() float64        { return h.heading }
func (h *HeadingSpeedDepth) SetHeading(deg float64)  { h.heading = deg }
func (h *HeadingSpeedDepth) Duration() int           { return h.duration }
func (h *HeadingSpeedDepth) SetDuration(seconds int) { h.duration = seconds }
func (h *HeadingSpeedDepth) UseHeading() bool        { return h.useHeading }
func (h *HeadingSpeedDepth) SetUseHeading(v bool)    { h.useHeading = v }
func (h *HeadingSpeedDepth) UseSpeed() bool          { return h.useSpeed }
func (h *HeadingSpeedDepth) SetUseSpeed(v bool)      { h.useSpeed = v }
func (h *HeadingSpeedDepth) UseDepth() bool          { return h.useDepth }
func (h *HeadingSpeedDepth) SetUseDepth(v bool)      { h.useDepth = v }

// Z returns the vertical reference held.
func (h *HeadingSpeedDepth) Z() (float64, core.ZUnits) { return h.z, h.zUnits }

// SetZ sets the vertical reference held.
func (h *HeadingSpeedDepth) SetZ(z float64, units core.ZUnits) { h.z, h.zUnits = z, units }

func (h *HeadingSpeedDepth) ValidateParams() []ValidationError {
	return append(nonNegative("duration", float64(h.duration)), validateSpeed(h.speed)...)
}

type headingPayload struct {
	XMLName     xml.Name
	Kind        string          `xml:"kind,attr,omitempty"`
	UseHeading  *bool           `xml:"useHeading,attr,omitempty"`
	UseSpeed    *bool           `xml:"useSpeed,attr,omitempty"`
	UseVelocity *bool           `xml:"useVelocity,attr,omitempty"`
	UseDepth    *bool           `xml:"useDepth,attr,omitempty"`
	Depth       *float64        `xml:"depth"`
	ZUnits      string          `xml:"zUnits,omitempty"`
	Duration    *int            `xml:"duration"`
	Speed       *document.Speed `xml:"speed"`
	Velocity    *document.Speed `xml:"velocity"`
	Heading     *float64        `xml:"heading"`
}

// EncodePayload writes the use flags only when cleared, and zUnits only when not DEPTH.
func (h *HeadingSpeedDepth) EncodePayload() any {
	duration := h.duration
	p := &headingPayload{
		XMLName:    xmlName(KindHeadingSpeedDepth),
		Kind:       "automatic",
		UseHeading: falseOnly(h.useHeading),
		UseSpeed:   falseOnly(h.useSpeed),
		UseDepth:   falseOnly(h.useDepth),
		Depth:      document.Float(h.z),
		Duration:   &duration,
		Speed:      h.element(),
		Heading:    document.Float(h.heading),
	}
	if h.zUnits != core.ZDepth {
		p.ZUnits = h.zUnits.String()
	}
	return p
}

// DecodePayload also reads payloads named HeadingVelocityDepth, with their useVelocity flag.
func (h *HeadingSpeedDepth) DecodePayload(raw *document.Payload) (func(), error) {
	var next HeadingSpeedDepth
	next.setDefaults()
	p := &headingPayload{}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	if p.Depth == nil {
		return nil, required(KindHeadingSpeedDepth, "depth")
	}
	if p.Heading == nil {
		return nil, required(KindHeadingSpeedDepth, "heading")
	}
	prop, err := decodePropulsion(KindHeadingSpeedDepth, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	if p.ZUnits != "" {
		if next.zUnits, err = zUnitsFromDocument(KindHeadingSpeedDepth, p.ZUnits); err != nil {
			return nil, err
		}
	}
	next.propulsion = prop
	next.z = *p.Depth
	next.heading = *p.Heading
	next.duration = intOr(p.Duration, next.duration)
	next.useHeading = boolOr(p.UseHeading, true)
	next.useSpeed = boolOr(p.UseSpeed, boolOr(p.UseVelocity, true))
	next.useDepth = boolOr(p.UseDepth, true)

	return func() {
		base := h.Base
		*h = next
		h.Base = base
	}, nil
}

func (h *HeadingSpeedDepth) ToWire() (wire.Message, error) {
	custom, err := h.wireCustom(KindHeadingSpeedDepth)
	if err != nil {
		return nil, err
	}
	var ind uint8
	if h.useHeading {
		ind |= wire.IndHeading
	}
	if h.useDepth {
		ind |= wire.IndZ
	}
	if h.useSpeed {
		ind |= wire.IndSpeed
	}
	msg := wire.HeadingSpeedDepth{
		Timeout:  wire.EncodeTimeout(h.MaxTime),
		Heading:  deg2rad(h.heading),
		Z:        h.z,
		ZUnits:   wire.EncodeZUnits(h.zUnits),
		Duration: wire.EncodeDuration(h.duration),
		Ind:      ind,
		Custom:   custom,
	}
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(h.speed)
	return msg, nil
}

func (h *HeadingSpeedDepth) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.HeadingSpeedDepth)
	if !ok {
		return wrongMessage(h, msg)
	}
	next := *h
	next.Base = h.Base.fromWire(w.Timeout, w.Custom)
	next.speed = speedFromWire(KindHeadingSpeedDepth, w.Speed, w.SpeedUnits)
	next.heading = rad2deg(w.Heading)
	next.z = w.Z
	next.zUnits = zUnitsFromWire(KindHeadingSpeedDepth, w.ZUnits)
	next.duration = int(w.Duration)
	next.useHeading = w.Ind&wire.IndHeading != 0
	next.useDepth = w.Ind&wire.IndZ != 0
	next.useSpeed = w.Ind&wire.IndSpeed != 0
	*h = next
	return nil
}
