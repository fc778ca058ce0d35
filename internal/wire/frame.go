package wire

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownMessage is returned when a frame names a message abbreviation with no schema.
var ErrUnknownMessage = errors.New("unknown message")

// Frame is a message tagged with its abbreviation. Body holds the msgpack encoded message.
type Frame struct {
	Abbrev string             `msgpack:"abbrev"`
	Body   msgpack.RawMessage `msgpack:"body"`
}

type decoder func([]byte) (Message, error)

func decodeAs[T Message](body []byte) (Message, error) {
	var m T
	if err := msgpack.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return m, nil
}

var decoders = map[string]decoder{
	Goto{}.Abbrev():                   decodeAs[Goto],
	Launch{}.Abbrev():                 decodeAs[Launch],
	Drop{}.Abbrev():                   decodeAs[Drop],
	Loiter{}.Abbrev():                 decodeAs[Loiter],
	StationKeeping{}.Abbrev():         decodeAs[StationKeeping],
	StationKeepingExtended{}.Abbrev(): decodeAs[StationKeepingExtended],
	FollowTrajectory{}.Abbrev():       decodeAs[FollowTrajectory],
	FollowPath{}.Abbrev():             decodeAs[FollowPath],
	Rows{}.Abbrev():                   decodeAs[Rows],
	Magnetometer{}.Abbrev():           decodeAs[Magnetometer],
	Elevator{}.Abbrev():               decodeAs[Elevator],
	PopUp{}.Abbrev():                  decodeAs[PopUp],
	HeadingSpeedDepth{}.Abbrev():      decodeAs[HeadingSpeedDepth],
	CompassCalibration{}.Abbrev():     decodeAs[CompassCalibration],
	YoYo{}.Abbrev():                   decodeAs[YoYo],
	ScheduledGoto{}.Abbrev():          decodeAs[ScheduledGoto],
	Takeoff{}.Abbrev():                decodeAs[Takeoff],
	Land{}.Abbrev():                   decodeAs[Land],
	Dock{}.Abbrev():                   decodeAs[Dock],
	Teleoperation{}.Abbrev():          decodeAs[Teleoperation],
	FollowReference{}.Abbrev():        decodeAs[FollowReference],
	CoverArea{}.Abbrev():              decodeAs[CoverArea],
	CustomManeuver{}.Abbrev():         decodeAs[CustomManeuver],
}

// Abbrevs returns every known message abbreviation, sorted.
func Abbrevs() []string {
	out := make([]string, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewFrame encodes msg into a frame.
func NewFrame(msg Message) (Frame, error) {
	body, err := msgpack.Marshal(msg)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to encode %s: %w", msg.Abbrev(), err)
	}
	return Frame{Abbrev: msg.Abbrev(), Body: body}, nil
}

// Decode returns the typed message carried by f. Messages are returned by value.
func (f Frame) Decode() (Message, error) {
	dec, ok := decoders[f.Abbrev]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, f.Abbrev)
	}
	msg, err := dec(f.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.Abbrev, err)
	}
	return msg, nil
}

// Marshal returns the msgpack encoding of the frame.
func (f Frame) Marshal() ([]byte, error) {
	return msgpack.Marshal(f)
}

// UnmarshalFrame parses a msgpack encoded frame.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	if f.Abbrev == "" {
		return Frame{}, fmt.Errorf("failed to decode frame: missing abbrev")
	}
	return f, nil
}

// WriteFrame writes one frame to a stream. msgpack values are self delimiting.
func WriteFrame(w io.Writer, f Frame) error {
	return msgpack.NewEncoder(w).Encode(f)
}

// FrameReader reads consecutive frames from a stream.
type FrameReader struct {
	dec *msgpack.Decoder
}

// NewFrameReader returns a reader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{dec: msgpack.NewDecoder(r)}
}

// Next returns the next frame, or io.EOF at the end of the stream.
func (fr *FrameReader) Next() (Frame, error) {
	var f Frame
	if err := fr.dec.Decode(&f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Batch is a plan upload: a vehicle identifier and its ordered frames.
type Batch struct {
	Vehicle string  `msgpack:"vehicle"`
	Plan    string  `msgpack:"plan"`
	Frames  []Frame `msgpack:"frames"`
}

// WriteBatch writes b msgpack encoded and zstd compressed.
func WriteBatch(w io.Writer, b Batch) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(b); err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// ReadBatch reads a batch written by WriteBatch.
func ReadBatch(r io.Reader) (Batch, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var b Batch
	if err := msgpack.NewDecoder(zr).Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("failed to decode batch: %w", err)
	}
	return b, nil
}
