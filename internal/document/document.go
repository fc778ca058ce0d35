// Package document defines the XML tree form of a maneuver: the common node envelope and the
// reusable elements (points, speeds, settings, actions) variant payloads are built from.
package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is returned when a document cannot be parsed.
var ErrMalformed = errors.New("malformed document")

// DefaultMaxTime is used when a document has no maxTime element.
const DefaultMaxTime = 10000

// Node is the envelope around a single maneuver.
type Node struct {
	XMLName xml.Name `xml:"node"`
	Start   bool     `xml:"start,attr"`
	XPos    float64  `xml:"xPos,attr"`
	YPos    float64  `xml:"yPos,attr"`
	ID      string   `xml:"id"`
	Body    Body     `xml:"maneuver"`
	Actions *Actions `xml:"actions,omitempty"`
}

// Body holds the timing bounds, the variant payload and the custom settings.
// When encoding, Payload must be a struct whose XMLName names the variant.
// When decoding, the payload is kept raw in Raw until a variant decodes it.
type Body struct {
	MinTime int             `xml:"minTime"`
	MaxTime int             `xml:"maxTime"`
	Payload any             `xml:",omitempty"`
	Custom  *CustomSettings `xml:"custom-settings,omitempty"`

	Raw *Payload `xml:"-"`
}

// Payload is an undecoded variant element.
type Payload struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

// Kind returns the payload element name.
func (p *Payload) Kind() string {
	return p.XMLName.Local
}

// Attr returns the value of the named attribute.
func (p *Payload) Attr(name string) (string, bool) {
	for _, a := range p.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Decode unmarshals the payload into v. Fields of v that have no element keep their value,
// so callers pre-fill v with defaults.
func (p *Payload) Decode(v any) error {
	data, err := xml.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, p.Kind(), err)
	}
	return nil
}

// UnmarshalXML reads the maneuver element. Any child other than the known ones is the payload.
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	b.MaxTime = DefaultMaxTime
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "minTime":
				if err := d.DecodeElement(&b.MinTime, &t); err != nil {
					return fmt.Errorf("minTime: %w", err)
				}
			case "maxTime":
				if err := d.DecodeElement(&b.MaxTime, &t); err != nil {
					return fmt.Errorf("maxTime: %w", err)
				}
			case "custom-settings":
				cs := &CustomSettings{}
				if err := d.DecodeElement(cs, &t); err != nil {
					return fmt.Errorf("custom-settings: %w", err)
				}
				b.Custom = cs
			default:
				if b.Raw != nil {
					if err := d.Skip(); err != nil {
						return err
					}
					continue
				}
				p := &Payload{}
				if err := d.DecodeElement(p, &t); err != nil {
					return fmt.Errorf("%s: %w", t.Name.Local, err)
				}
				b.Raw = p
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Marshal encodes a node as indented XML.
func Marshal(n *Node) ([]byte, error) {
	if n.Body.Payload == nil {
		return nil, fmt.Errorf("node %q has no payload", n.ID)
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("failed to encode node %q: %w", n.ID, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a node. The payload is left raw in Body.Raw.
func Unmarshal(data []byte) (*Node, error) {
	return Read(bytes.NewReader(data))
}

// Read parses a node from r.
func Read(r io.Reader) (*Node, error) {
	n := &Node{}
	if err := xml.NewDecoder(r).Decode(n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if n.Body.Raw == nil {
		return nil, fmt.Errorf("%w: node %q has no maneuver payload", ErrMalformed, n.ID)
	}
	return n, nil
}
