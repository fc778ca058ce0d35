package maneuver

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// DelayedBehavior is what a ScheduledGoto does when it cannot arrive in time.
type DelayedBehavior string

const (
	DelayedResume DelayedBehavior = "Resume"
	DelayedSkip   DelayedBehavior = "Skip"
	DelayedFail   DelayedBehavior = "Fail"
)

var delayedTokens = map[DelayedBehavior]string{
	DelayedResume: wire.DelayedResume,
	DelayedSkip:   wire.DelayedSkip,
	DelayedFail:   wire.DelayedFail,
}

// ParseDelayedBehavior accepts the document names case-insensitively.
func ParseDelayedBehavior(s string) (DelayedBehavior, bool) {
	for d := range delayedTokens {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, true
		}
	}
	return DelayedResume, false
}

// ScheduledGoto arrives at a location at a given time, travelling at its own z.
type ScheduledGoto struct {
	Base
	position

	arrivalTime  float64 // unix seconds
	travelZ      float64
	travelZUnits core.ZUnits
	delayed      DelayedBehavior
}

// NewScheduledGoto returns a ScheduledGoto arriving in one hour.
func NewScheduledGoto(ids IDSource) *ScheduledGoto {
	s := &ScheduledGoto{Base: newBase(ids, KindScheduledGoto)}
	s.setDefaults()
	s.arrivalTime = float64(time.Now().Add(time.Hour).Unix())
	return s
}

func (s *ScheduledGoto) setDefaults() {
	s.loc = core.NewLocation(0, 0)
	s.travelZUnits = core.ZDepth
	s.delayed = DelayedResume
}

func (s *ScheduledGoto) Kind() string                 { return KindScheduledGoto }
func (s *ScheduledGoto) Clone() Maneuver              { return deep.MustCopy(s) }
func (s *ScheduledGoto) ArrivalTime() time.Time       { return fromUnixSeconds(s.arrivalTime) }
func (s *ScheduledGoto) SetArrivalTime(t time.Time)   { s.arrivalTime = unixSeconds(t) }
func (s *ScheduledGoto) Delayed() DelayedBehavior     { return s.delayed }
func (s *ScheduledGoto) SetDelayed(d DelayedBehavior) { s.delayed = d }

// TravelZ returns the vertical reference used while in transit.
func (s *ScheduledGoto) TravelZ() (float64, core.ZUnits) { return s.travelZ, s.travelZUnits }

// SetTravelZ sets the vertical reference used while in transit.
func (s *ScheduledGoto) SetTravelZ(z float64, units core.ZUnits) { s.travelZ, s.travelZUnits = z, units }

func (s *ScheduledGoto) ValidateParams() []ValidationError {
	if _, ok := delayedTokens[s.delayed]; !ok {
		return []ValidationError{{Field: "delayed", Message: fmt.Sprintf("unknown behavior %q", s.delayed)}}
	}
	return nil
}

type scheduledPayload struct {
	XMLName      xml.Name
	Kind         string                 `xml:"kind,attr,omitempty"`
	ArrivalTime  *float64               `xml:"arrivalTime"`
	FinalPoint   *document.LocatedPoint `xml:"finalPoint"`
	TravelZ      float64                `xml:"travelZ"`
	TravelZUnits string                 `xml:"travelZUnits"`
	Delayed      string                 `xml:"delayed"`
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second))).UTC()
}

func (s *ScheduledGoto) EncodePayload() any {
	return &scheduledPayload{
		XMLName:      xmlName(KindScheduledGoto),
		Kind:         "automatic",
		ArrivalTime:  document.Float(s.arrivalTime),
		FinalPoint:   document.NewLocatedPoint(s.loc, document.Float(0)),
		TravelZ:      s.travelZ,
		TravelZUnits: s.travelZUnits.String(),
		Delayed:      string(s.delayed),
	}
}

func (s *ScheduledGoto) DecodePayload(raw *document.Payload) (func(), error) {
	var next ScheduledGoto
	next.setDefaults()
	p := &scheduledPayload{Delayed: string(next.delayed)}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	if p.ArrivalTime == nil {
		return nil, required(KindScheduledGoto, "arrivalTime")
	}
	loc, err := locatedPoint(KindScheduledGoto, "finalPoint", p.FinalPoint)
	if err != nil {
		return nil, err
	}
	if p.TravelZUnits != "" {
		if next.travelZUnits, err = zUnitsFromDocument(KindScheduledGoto, p.TravelZUnits); err != nil {
			return nil, err
		}
	}
	delayed, ok := ParseDelayedBehavior(p.Delayed)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown delayed behavior %q", ErrParse, KindScheduledGoto, p.Delayed)
	}
	next.loc = loc
	next.arrivalTime = *p.ArrivalTime
	next.travelZ = p.TravelZ
	next.delayed = delayed

	return func() {
		base := s.Base
		*s = next
		s.Base = base
	}, nil
}

func (s *ScheduledGoto) ToWire() (wire.Message, error) {
	custom, err := s.wireCustom(KindScheduledGoto)
	if err != nil {
		return nil, err
	}
	delayed, ok := delayedTokens[s.delayed]
	if !ok {
		delayed = wire.DelayedResume
	}
	msg := wire.ScheduledGoto{
		ArrivalTime:  s.arrivalTime,
		TravelZ:      s.travelZ,
		TravelZUnits: wire.EncodeZUnits(s.travelZUnits),
		Delayed:      delayed,
		Custom:       custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(s.loc)
	return msg, nil
}

// FromWire keeps MaxTime, which the message does not carry.
func (s *ScheduledGoto) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.ScheduledGoto)
	if !ok {
		return wrongMessage(s, msg)
	}
	loc, err := locationFromWire(KindScheduledGoto, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	delayed := DelayedResume
	found := false
	for d, tok := range delayedTokens {
		if tok == w.Delayed {
			delayed, found = d, true
		}
	}
	if !found {
		slog.Warn("unknown delayed behavior, using resume", "kind", KindScheduledGoto, "delayed", w.Delayed)
	}
	next := *s
	next.Base = s.Base.withCustom(w.Custom)
	next.loc = loc
	next.arrivalTime = w.ArrivalTime
	next.travelZ = w.TravelZ
	next.travelZUnits = zUnitsFromWire(KindScheduledGoto, w.TravelZUnits)
	next.delayed = delayed
	*s = next
	return nil
}
