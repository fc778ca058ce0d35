package maneuver

import (
	"encoding/xml"
	"math"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
)

// Teleoperation hands control to an operator. It has no parameters of its own.
type Teleoperation struct {
	Base
}

// NewTeleoperation returns a Teleoperation.
func NewTeleoperation(ids IDSource) *Teleoperation {
	return &Teleoperation{Base: newBase(ids, KindTeleoperation)}
}

func (t *Teleoperation) Kind() string    { return KindTeleoperation }
func (t *Teleoperation) Clone() Maneuver { return deep.MustCopy(t) }

type teleoperationPayload struct {
	XMLName xml.Name
	Kind    string `xml:"kind,attr,omitempty"`
}

func (t *Teleoperation) EncodePayload() any {
	return &teleoperationPayload{XMLName: xmlName(KindTeleoperation), Kind: "manual"}
}

func (t *Teleoperation) DecodePayload(raw *document.Payload) (func(), error) {
	if err := decodePayload(raw, &teleoperationPayload{}); err != nil {
		return nil, err
	}
	return func() {}, nil
}

func (t *Teleoperation) ToWire() (wire.Message, error) {
	custom, err := t.wireCustom(KindTeleoperation)
	if err != nil {
		return nil, err
	}
	return wire.Teleoperation{Custom: custom}, nil
}

func (t *Teleoperation) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Teleoperation)
	if !ok {
		return wrongMessage(t, msg)
	}
	t.Base = t.Base.withCustom(w.Custom)
	return nil
}

// Any control source or entity.
const (
	AnySource uint16 = math.MaxUint16
	AnyEntity uint8  = math.MaxUint8
)

// FollowReference follows position references sent by an external controller.
type FollowReference struct {
	Base

	controlSource    uint16
	controlEntity    uint8
	timeout          float64
	loiterRadius     float64
	altitudeInterval float64
}

// NewFollowReference returns a FollowReference accepting references from any source.
func NewFollowReference(ids IDSource) *FollowReference {
	f := &FollowReference{Base: newBase(ids, KindFollowReference)}
	f.setDefaults()
	return f
}

func (f *FollowReference) setDefaults() {
	f.controlSource = AnySource
	f.controlEntity = AnyEntity
	f.timeout = 30
	f.loiterRadius = 20
	f.altitudeInterval = 1
}

func (f *FollowReference) Kind() string                  { return KindFollowReference }
func (f *FollowReference) Clone() Maneuver               { return deep.MustCopy(f) }
func (f *FollowReference) ControlSource() uint16         { return f.controlSource }
func (f *FollowReference) SetControlSource(id uint16)    { f.controlSource = id }
func (f *FollowReference) ControlEntity() uint8          { return f.controlEntity }
func (f *FollowReference) SetControlEntity(id uint8)     { f.controlEntity = id }
func (f *FollowReference) Timeout() float64              { return f.timeout }
func (f *FollowReference) SetTimeout(seconds float64)    { f.timeout = seconds }
func (f *FollowReference) LoiterRadius() float64         { return f.loiterRadius }
func (f *FollowReference) SetLoiterRadius(r float64)     { f.loiterRadius = r }
func (f *FollowReference) AltitudeInterval() float64     { return f.altitudeInterval }
func (f *FollowReference) SetAltitudeInterval(v float64) { f.altitudeInterval = v }

func (f *FollowReference) ValidateParams() []ValidationError {
	var errs []ValidationError
	errs = append(errs, positive("timeout", f.timeout)...)
	errs = append(errs, nonNegative("loiterRadius", f.loiterRadius)...)
	return append(errs, nonNegative("altitudeInterval", f.altitudeInterval)...)
}

type followReferencePayload struct {
	XMLName          xml.Name
	Kind             string  `xml:"kind,attr,omitempty"`
	ControlSource    int     `xml:"controlSource"`
	ControlEntity    int     `xml:"controlEntity"`
	Timeout          float64 `xml:"timeout"`
	LoiterRadius     float64 `xml:"loiterRadius"`
	AltitudeInterval float64 `xml:"altitudeInterval"`
}

func (f *FollowReference) EncodePayload() any {
	return &followReferencePayload{
		XMLName:          xmlName(KindFollowReference),
		Kind:             "automatic",
		ControlSource:    int(f.controlSource),
		ControlEntity:    int(f.controlEntity),
		Timeout:          f.timeout,
		LoiterRadius:     f.loiterRadius,
		AltitudeInterval: f.altitudeInterval,
	}
}

func (f *FollowReference) DecodePayload(raw *document.Payload) (func(), error) {
	var next FollowReference
	next.setDefaults()
	p := &followReferencePayload{
		ControlSource:    int(next.controlSource),
		ControlEntity:    int(next.controlEntity),
		Timeout:          next.timeout,
		LoiterRadius:     next.loiterRadius,
		AltitudeInterval: next.altitudeInterval,
	}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	if p.ControlSource < 0 || p.ControlSource > math.MaxUint16 {
		return nil, outOfRange(KindFollowReference, "controlSource", p.ControlSource)
	}
	if p.ControlEntity < 0 || p.ControlEntity > math.MaxUint8 {
		return nil, outOfRange(KindFollowReference, "controlEntity", p.ControlEntity)
	}
	next.controlSource = uint16(p.ControlSource)
	next.controlEntity = uint8(p.ControlEntity)
	next.timeout = p.Timeout
	next.loiterRadius = p.LoiterRadius
	next.altitudeInterval = p.AltitudeInterval

	return func() {
		base := f.Base
		*f = next
		f.Base = base
	}, nil
}

// ToWire drops the custom settings, which the message has no field for.
func (f *FollowReference) ToWire() (wire.Message, error) {
	return wire.FollowReference{
		ControlSrc:       f.controlSource,
		ControlEnt:       f.controlEntity,
		Timeout:          f.timeout,
		LoiterRadius:     f.loiterRadius,
		AltitudeInterval: f.altitudeInterval,
	}, nil
}

// FromWire keeps the common fields, which the message does not carry.
func (f *FollowReference) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.FollowReference)
	if !ok {
		return wrongMessage(f, msg)
	}
	f.controlSource = w.ControlSrc
	f.controlEntity = w.ControlEnt
	f.timeout = w.Timeout
	f.loiterRadius = w.LoiterRadius
	f.altitudeInterval = w.AltitudeInterval
	return nil
}
