// Package maneuver implements the vehicle maneuver variants and their translation to and from
// the XML document form and the autopilot wire messages.
package maneuver

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// ErrParse is returned when a document or wire message cannot be imported.
// The target maneuver is left untouched.
var ErrParse = errors.New("parse error")

// ErrReservedSetting is returned by ToWire when a custom setting uses a name the message packs
// its own parameters under.
var ErrReservedSetting = errors.New("custom setting name is reserved")

// DefaultMaxTime is the max time of a new maneuver, in seconds.
const DefaultMaxTime = document.DefaultMaxTime

// Maneuver is implemented by every variant.
type Maneuver interface {
	// Kind is the variant name, which is also the document payload element name.
	Kind() string
	// Common returns the fields shared by all variants.
	Common() *Base
	// Clone returns a deep copy sharing nothing with the receiver.
	Clone() Maneuver

	// EncodePayload returns the XML payload value for the document envelope.
	EncodePayload() any
	// DecodePayload parses a payload without touching the receiver. The returned function
	// applies the parsed values.
	DecodePayload(p *document.Payload) (commit func(), err error)

	ToWire() (wire.Message, error)
	// FromWire replaces the receiver fields carried by msg. On error the receiver is unchanged.
	FromWire(msg wire.Message) error
}

// Located is implemented by maneuvers with a target position.
type Located interface {
	Location() core.Location
	SetLocation(core.Location)
}

// SpeedBearer is implemented by maneuvers with a commanded speed.
type SpeedBearer interface {
	Speed() core.Speed
	SetSpeed(core.Speed)
}

// PathProvider is implemented by maneuvers that follow a sequence of points.
// Points are offsets from the maneuver location.
type PathProvider interface {
	Points() []core.OffsetPoint
}

// StartLocated is implemented by maneuvers whose start position differs from their end.
type StartLocated interface {
	StartLocation() core.Location
	EndLocation() core.Location
}

// Timed is implemented by maneuvers that hold for a fixed duration in seconds.
type Timed interface {
	Duration() int
}

// Validator is implemented by variants with parameter checks of their own.
type Validator interface {
	ValidateParams() []ValidationError
}

// IDSource assigns maneuver identifiers.
type IDSource interface {
	NextID(kind string) string
}

type uuidSource struct{}

func (uuidSource) NextID(kind string) string {
	return kind + "-" + uuid.NewString()[:8]
}

// DefaultIDs generates random identifiers.
var DefaultIDs IDSource = uuidSource{}

// SequenceIDs generates kind1, kind2, ... and is safe for concurrent use.
type SequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *SequenceIDs) NextID(kind string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return kind + strconv.Itoa(s.n)
}

// Base holds the fields every maneuver carries.
type Base struct {
	ID      string
	Initial bool
	MinTime int
	MaxTime int
	// XPos and YPos are layout hints passed through unchanged.
	XPos float64
	YPos float64

	custom       core.CustomSettings
	startActions []core.Action
	endActions   []core.Action
}

func newBase(ids IDSource, kind string) Base {
	if ids == nil {
		ids = DefaultIDs
	}
	return Base{ID: ids.NextID(kind), MaxTime: DefaultMaxTime}
}

// Common lets variants satisfy Maneuver by embedding Base.
func (b *Base) Common() *Base { return b }

// Custom returns a copy of the custom settings.
func (b *Base) Custom() core.CustomSettings { return b.custom.Clone() }

// SetCustom stores a copy of c.
func (b *Base) SetCustom(c core.CustomSettings) { b.custom = c.Clone() }

// SetCustomValue sets a single custom setting.
func (b *Base) SetCustomValue(name, value string, hint core.TypeHint) {
	b.custom.Set(name, value, hint)
}

// StartActions returns a copy of the actions run when the maneuver starts.
func (b *Base) StartActions() []core.Action { return core.CloneActions(b.startActions) }

// EndActions returns a copy of the actions run when the maneuver ends.
func (b *Base) EndActions() []core.Action { return core.CloneActions(b.endActions) }

// SetStartActions stores a copy of actions.
func (b *Base) SetStartActions(actions []core.Action) { b.startActions = core.CloneActions(actions) }

// SetEndActions stores a copy of actions.
func (b *Base) SetEndActions(actions []core.Action) { b.endActions = core.CloneActions(actions) }

// fromWire returns a copy of b with the fields every wire message carries.
func (b Base) fromWire(timeout uint16, custom string) Base {
	b.MaxTime = int(timeout)
	return b.withCustom(custom)
}

// withCustom is fromWire for messages without a timeout.
func (b Base) withCustom(custom string) Base {
	b.custom = keepHints(wire.DecodeTupleList(custom), b.custom)
	return b
}

// keepHints gives decoded settings the hint known holds under the same name. The wire carries
// no hints, so only settings new to the receiver keep the inferred one. A known Number or
// Boolean hint is dropped when the value no longer parses as such.
func keepHints(decoded, known core.CustomSettings) core.CustomSettings {
	for i := range decoded {
		hint, ok := known.HintOf(decoded[i].Name)
		if ok && (hint == core.HintString || hint == decoded[i].Hint) {
			decoded[i].Hint = hint
		}
	}
	return decoded
}

func (b *Base) wireCustom(kind string) (string, error) {
	s, err := wire.EncodeTupleList(b.custom)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s custom settings: %w", kind, err)
	}
	return s, nil
}

func wrongMessage(m Maneuver, msg wire.Message) error {
	name := "<nil>"
	if msg != nil {
		name = msg.Abbrev()
	}
	return fmt.Errorf("%w: %s cannot be read from a %s message", ErrParse, m.Kind(), name)
}
