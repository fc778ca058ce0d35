package maneuver

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/pattern"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// PatternKey is the custom setting naming the pattern carried by a FollowPath message.
const PatternKey = "Pattern"

// survey holds the parameters of the coverage variants. Which of them a variant reads and
// writes is given by its field table.
type survey struct {
	position
	propulsion

	width              float64
	length             float64
	hstep              float64
	bearing            float64 // degrees
	crossAngle         float64 // degrees
	curveOffset        float64
	alternation        int // percent, 100 keeps rows evenly spaced
	squareCurve        bool
	firstCurveRight    bool
	ssRangeShadow      int
	paintSSRangeShadow bool
}

func defaultSurvey() survey {
	return survey{
		position:           position{loc: core.NewLocation(0, 0).WithZ(2, core.ZDepth)},
		propulsion:         defaultPropulsion(),
		width:              100,
		length:             200,
		hstep:              27,
		curveOffset:        15,
		alternation:        100,
		squareCurve:        true,
		firstCurveRight:    true,
		ssRangeShadow:      30,
		paintSSRangeShadow: true,
	}
}

func (s *survey) Width() float64              { return s.width }
func (s *survey) SetWidth(v float64)          { s.width = v }
func (s *survey) Length() float64             { return s.length }
func (s *survey) SetLength(v float64)         { s.length = v }
func (s *survey) HStep() float64              { return s.hstep }
func (s *survey) SetHStep(v float64)          { s.hstep = v }
func (s *survey) Bearing() float64            { return s.bearing }
func (s *survey) SetBearing(deg float64)      { s.bearing = deg }
func (s *survey) CrossAngle() float64         { return s.crossAngle }
func (s *survey) SetCrossAngle(deg float64)   { s.crossAngle = deg }
func (s *survey) CurveOffset() float64        { return s.curveOffset }
func (s *survey) SetCurveOffset(v float64)    { s.curveOffset = v }
func (s *survey) Alternation() int            { return s.alternation }
func (s *survey) SetAlternation(percent int)  { s.alternation = percent }
func (s *survey) SquareCurve() bool           { return s.squareCurve }
func (s *survey) SetSquareCurve(v bool)       { s.squareCurve = v }
func (s *survey) FirstCurveRight() bool       { return s.firstCurveRight }
func (s *survey) SetFirstCurveRight(v bool)   { s.firstCurveRight = v }
func (s *survey) SSRangeShadow() int          { return s.ssRangeShadow }
func (s *survey) SetSSRangeShadow(meters int) { s.ssRangeShadow = meters }

func (s *survey) rowsParams() pattern.RowsParams {
	return pattern.RowsParams{
		Width:       s.width,
		Length:      s.length,
		Step:        s.hstep,
		Alternation: float64(s.alternation) / 100,
		CurveOffset: s.curveOffset,
		SquareCurve: s.squareCurve,
		Bearing:     deg2rad(s.bearing),
		CrossAngle:  deg2rad(s.crossAngle),
		InvertY:     !s.firstCurveRight,
	}
}

func (s *survey) at(points []core.OffsetPoint, i int) core.Location {
	if len(points) == 0 {
		return s.loc
	}
	p := points[i]
	return s.loc.Translate(p.North, p.East, p.Down)
}

// pathSize returns an upper bound of the number of points kind generates from s.
func (s *survey) pathSize(kind string) float64 {
	switch kind {
	case KindRIPattern:
		return pattern.RISize(s.width, s.hstep, float64(s.alternation)/100)
	case KindCrossHatchPattern:
		return pattern.CrossHatchSize(s.width, s.hstep)
	case KindExpandingSquarePattern:
		return pattern.ExpandingSquareSize(s.width, s.hstep)
	default:
		return pattern.RowsSize(s.rowsParams())
	}
}

func (s *survey) checkSize(kind string) error {
	if err := pattern.CheckSize(s.pathSize(kind)); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return nil
}

func (s *survey) validate(kind string) []ValidationError {
	var errs []ValidationError
	errs = append(errs, nonNegative("width", s.width)...)
	errs = append(errs, nonNegative("length", s.length)...)
	errs = append(errs, positive("hstep", s.hstep)...)
	errs = append(errs, nonNegative("curveOffset", s.curveOffset)...)
	if s.alternation < 0 || s.alternation > 200 {
		errs = append(errs, ValidationError{Field: "alternationPercentage", Message: "must be within [0, 200]"})
	}
	if len(errs) == 0 && s.checkSize(kind) != nil {
		errs = append(errs, ValidationError{
			Field:   "hstep",
			Message: fmt.Sprintf("too small for the width, the path would exceed %d points", pattern.MaxPoints),
		})
	}
	return append(errs, validateSpeed(s.speed)...)
}

// surveyField maps one parameter to its document element and wire custom key.
// Optional fields are written only when they differ from the default; the others are required.
type surveyField struct {
	name     string
	optional bool
	format   func(*survey) string
	parse    func(*survey, string) error
}

func floatField(name string, optional bool, field func(*survey) *float64) surveyField {
	return surveyField{
		name:     name,
		optional: optional,
		format:   func(s *survey) string { return strconv.FormatFloat(*field(s), 'g', -1, 64) },
		parse: func(s *survey, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return err
			}
			*field(s) = f
			return nil
		},
	}
}

func intField(name string, optional bool, field func(*survey) *int) surveyField {
	return surveyField{
		name:     name,
		optional: optional,
		format:   func(s *survey) string { return strconv.Itoa(*field(s)) },
		parse: func(s *survey, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return err
			}
			*field(s) = int(f)
			return nil
		},
	}
}

func boolField(name string, optional bool, field func(*survey) *bool) surveyField {
	return surveyField{
		name:     name,
		optional: optional,
		format:   func(s *survey) string { return strconv.FormatBool(*field(s)) },
		parse: func(s *survey, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*field(s) = b
			return nil
		},
	}
}

var (
	fieldWidth       = floatField("width", false, func(s *survey) *float64 { return &s.width })
	fieldLength      = floatField("length", false, func(s *survey) *float64 { return &s.length })
	fieldHStep       = floatField("hstep", false, func(s *survey) *float64 { return &s.hstep })
	fieldBearing     = floatField("bearing", false, func(s *survey) *float64 { return &s.bearing })
	fieldCrossAngle  = floatField("crossAngle", true, func(s *survey) *float64 { return &s.crossAngle })
	fieldAlternation = intField("alternationPercentage", true, func(s *survey) *int { return &s.alternation })
	fieldCurveOffset = floatField("curveOffset", true, func(s *survey) *float64 { return &s.curveOffset })
	fieldSquareCurve = boolField("squareCurve", true, func(s *survey) *bool { return &s.squareCurve })
	fieldCurveRight  = boolField("firstCurveRight", true, func(s *survey) *bool { return &s.firstCurveRight })
	fieldShadow      = intField("ssRangeShadow", true, func(s *survey) *int { return &s.ssRangeShadow })
	fieldPaintShadow = boolField("paintSSRangeShadow", true, func(s *survey) *bool { return &s.paintSSRangeShadow })
)

var surveyTables = map[string][]surveyField{
	KindRows: {
		fieldWidth, fieldLength, fieldHStep, fieldBearing, fieldCrossAngle, fieldAlternation,
		fieldCurveOffset, fieldSquareCurve, fieldCurveRight, fieldPaintShadow, fieldShadow,
	},
	KindRowsPattern: {
		fieldWidth, fieldLength, fieldHStep, fieldBearing, fieldCrossAngle, fieldAlternation,
		fieldCurveOffset, fieldSquareCurve, fieldCurveRight, fieldPaintShadow, fieldShadow,
	},
	KindRIPattern: {
		fieldWidth, fieldHStep, fieldBearing, fieldAlternation, fieldCurveOffset, fieldSquareCurve,
	},
	KindCrossHatchPattern: {
		fieldWidth, fieldHStep, fieldBearing, fieldCurveOffset, fieldSquareCurve,
	},
	KindExpandingSquarePattern: {
		fieldWidth, fieldHStep, fieldBearing, fieldCurveRight,
	},
}

type surveyParam struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type surveyPayload struct {
	XMLName   xml.Name
	Kind      string                 `xml:"kind,attr,omitempty"`
	BasePoint *document.LocatedPoint `xml:"basePoint"`
	Params    []surveyParam          `xml:",any"`
	Speed     *document.Speed        `xml:"speed"`
	Velocity  *document.Speed        `xml:"velocity"`
}

// params returns the table values to write, in table order.
func (s *survey) params(kind string) []surveyParam {
	def := defaultSurvey()
	var out []surveyParam
	for _, f := range surveyTables[kind] {
		v := f.format(s)
		if f.optional && v == f.format(&def) {
			continue
		}
		out = append(out, surveyParam{XMLName: xml.Name{Local: f.name}, Value: v})
	}
	return out
}

func (s *survey) payload(kind string) *surveyPayload {
	return &surveyPayload{
		XMLName:   xmlName(kind),
		Kind:      "automatic",
		BasePoint: document.NewLocatedPoint(s.loc, document.Float(0)),
		Params:    s.params(kind),
		Speed:     s.element(),
	}
}

// applyParams sets the table fields found in values. Required fields must be present.
func (s *survey) applyParams(kind string, values map[string]string) error {
	for _, f := range surveyTables[kind] {
		v, ok := values[f.name]
		if !ok {
			if f.optional {
				continue
			}
			return required(kind, f.name)
		}
		if err := f.parse(s, v); err != nil {
			return fmt.Errorf("%w: %s: %s: %v", ErrParse, kind, f.name, err)
		}
	}
	return nil
}

func decodeSurvey(kind string, raw *document.Payload) (survey, error) {
	p := &surveyPayload{}
	if err := decodePayload(raw, p); err != nil {
		return survey{}, err
	}
	next := defaultSurvey()
	loc, err := locatedPoint(kind, "basePoint", p.BasePoint)
	if err != nil {
		return survey{}, err
	}
	prop, err := decodePropulsion(kind, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return survey{}, err
	}
	values := make(map[string]string, len(p.Params))
	for _, param := range p.Params {
		values[param.XMLName.Local] = param.Value
	}
	if err := next.applyParams(kind, values); err != nil {
		return survey{}, err
	}
	next.loc = loc
	next.propulsion = prop
	return next, nil
}

// patternWire packs a pattern variant into a FollowPath message. The pattern name and its
// parameters lead the custom tuple list, followed by the user settings, which must not reuse
// those names. Oversized paths are rejected before points is called.
func (s *survey) patternWire(b *Base, kind string, points func() []core.OffsetPoint) (wire.Message, error) {
	if err := s.checkSize(kind); err != nil {
		return nil, err
	}
	packed := core.CustomSettings{{Name: PatternKey, Value: kind, Hint: core.HintString}}
	for _, f := range surveyTables[kind] {
		packed.Set(f.name, f.format(s), wire.InferHint(f.format(s)))
	}
	for _, c := range b.custom {
		if _, reserved := packed.Get(c.Name); reserved {
			return nil, fmt.Errorf("%w: %s packs its parameters under %q", ErrReservedSetting, kind, c.Name)
		}
		packed = append(packed, c)
	}
	custom, err := wire.EncodeTupleList(packed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s custom settings: %w", kind, err)
	}
	t := track{position: s.position, propulsion: s.propulsion}
	return pathMessage(b.MaxTime, &t, points(), custom), nil
}

// patternFromWire reads a FollowPath produced by patternWire. The points are regenerated from the
// parameters, so the ones on the wire are ignored.
func patternFromWire(m Maneuver, s *survey, msg wire.Message) (Base, survey, error) {
	kind := m.Kind()
	w, ok := msg.(wire.FollowPath)
	if !ok {
		return Base{}, survey{}, wrongMessage(m, msg)
	}
	settings := wire.DecodeTupleList(w.Custom)
	if name, _ := settings.Get(PatternKey); name != kind {
		return Base{}, survey{}, fmt.Errorf("%w: %s: FollowPath carries pattern %q", ErrParse, kind, name)
	}
	loc, err := locationFromWire(kind, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return Base{}, survey{}, err
	}

	next := *s
	values := make(map[string]string)
	var user core.CustomSettings
	reserved := map[string]bool{PatternKey: true}
	for _, f := range surveyTables[kind] {
		reserved[f.name] = true
	}
	for _, c := range settings {
		if reserved[c.Name] {
			values[c.Name] = c.Value
			continue
		}
		user = append(user, c)
	}
	if err := next.applyParams(kind, values); err != nil {
		return Base{}, survey{}, err
	}
	next.loc = loc
	next.speed = speedFromWire(kind, w.Speed, w.SpeedUnits)

	base := *m.Common()
	base.MaxTime = int(w.Timeout)
	base.custom = keepHints(user, base.custom)
	return base, next, nil
}
