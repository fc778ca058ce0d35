package maneuver

import (
	"slices"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
)

// Unconstrained stands in for a maneuver kind this package does not model. Its payload is
// kept verbatim so documents survive a round trip, and on the wire it travels as a
// CustomManeuver named after the kind.
type Unconstrained struct {
	Base

	name string
	raw  *document.Payload
}

// NewUnconstrained returns a placeholder for the named kind. An empty name stands for an
// unnamed placeholder.
func NewUnconstrained(ids IDSource, name string) *Unconstrained {
	kind := name
	if kind == "" {
		kind = KindUnconstrained
	}
	return &Unconstrained{Base: newBase(ids, kind), name: name}
}

// Kind returns the name of the kind this placeholder stands for.
func (u *Unconstrained) Kind() string {
	if u.name == "" {
		return KindUnconstrained
	}
	return u.name
}

func (u *Unconstrained) Clone() Maneuver { return deep.MustCopy(u) }

// Name returns the stood-for kind name, which may be empty.
func (u *Unconstrained) Name() string { return u.name }

func copyPayload(p *document.Payload) *document.Payload {
	return &document.Payload{
		XMLName: p.XMLName,
		Attrs:   slices.Clone(p.Attrs),
		Inner:   slices.Clone(p.Inner),
	}
}

func (u *Unconstrained) EncodePayload() any {
	if u.raw == nil {
		return &document.Payload{XMLName: xmlName(u.Kind())}
	}
	return copyPayload(u.raw)
}

// DecodePayload accepts any payload and takes its name as the kind.
func (u *Unconstrained) DecodePayload(raw *document.Payload) (func(), error) {
	p := copyPayload(raw)
	return func() {
		u.raw = p
		u.name = p.Kind()
	}, nil
}

func (u *Unconstrained) ToWire() (wire.Message, error) {
	custom, err := u.wireCustom(u.Kind())
	if err != nil {
		return nil, err
	}
	return wire.CustomManeuver{
		Timeout: wire.EncodeTimeout(u.MaxTime),
		Name:    u.name,
		Custom:  custom,
	}, nil
}

// FromWire takes the kind name from the message. A previously decoded payload is dropped
// when the name changes.
func (u *Unconstrained) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.CustomManeuver)
	if !ok {
		return wrongMessage(u, msg)
	}
	next := *u
	next.Base = u.Base.fromWire(w.Timeout, w.Custom)
	if w.Name != u.name {
		next.raw = nil
	}
	next.name = w.Name
	*u = next
	return nil
}
