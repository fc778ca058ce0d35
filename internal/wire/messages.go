// Package wire defines the fixed-schema maneuver messages exchanged with vehicle autopilots and
// their binary framing. Field tags are the protocol field names. Angles and coordinates are radians.
package wire

// Message is a maneuver command message.
type Message interface {
	Abbrev() string
}

type Goto struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Roll       float64    `msgpack:"roll"`
	Pitch      float64    `msgpack:"pitch"`
	Yaw        float64    `msgpack:"yaw"`
	Custom     string     `msgpack:"custom"`
}

type Launch struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Custom     string     `msgpack:"custom"`
}

type Drop struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Custom     string     `msgpack:"custom"`
}

type Loiter struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Duration   uint16     `msgpack:"duration"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Type       string     `msgpack:"type"`
	Radius     float64    `msgpack:"radius"`
	Length     float64    `msgpack:"length"`
	Bearing    float64    `msgpack:"bearing"`
	Direction  string     `msgpack:"direction"`
	Custom     string     `msgpack:"custom"`
}

type StationKeeping struct {
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Radius     float64    `msgpack:"radius"`
	Duration   uint16     `msgpack:"duration"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Custom     string     `msgpack:"custom"`
}

// StationKeepingExtended flags.
const FlagKeepSafe uint8 = 0x01

type StationKeepingExtended struct {
	Lat           float64    `msgpack:"lat"`
	Lon           float64    `msgpack:"lon"`
	Z             float64    `msgpack:"z"`
	ZUnits        ZUnits     `msgpack:"z_units"`
	Radius        float64    `msgpack:"radius"`
	Duration      uint16     `msgpack:"duration"`
	Speed         float64    `msgpack:"speed"`
	SpeedUnits    SpeedUnits `msgpack:"speed_units"`
	PopupPeriod   uint16     `msgpack:"popup_period"`
	PopupDuration uint16     `msgpack:"popup_duration"`
	Flags         uint8      `msgpack:"flags"`
	Custom        string     `msgpack:"custom"`
}

// TrajectoryPoint is an offset from the maneuver start with an absolute time in seconds.
type TrajectoryPoint struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	Z float64 `msgpack:"z"`
	T float64 `msgpack:"t"`
}

type FollowTrajectory struct {
	Timeout    uint16            `msgpack:"timeout"`
	Lat        float64           `msgpack:"lat"`
	Lon        float64           `msgpack:"lon"`
	Z          float64           `msgpack:"z"`
	ZUnits     ZUnits            `msgpack:"z_units"`
	Speed      float64           `msgpack:"speed"`
	SpeedUnits SpeedUnits        `msgpack:"speed_units"`
	Points     []TrajectoryPoint `msgpack:"points"`
	Custom     string            `msgpack:"custom"`
}

// PathPoint is an offset from the maneuver start.
type PathPoint struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	Z float64 `msgpack:"z"`
}

type FollowPath struct {
	Timeout    uint16      `msgpack:"timeout"`
	Lat        float64     `msgpack:"lat"`
	Lon        float64     `msgpack:"lon"`
	Z          float64     `msgpack:"z"`
	ZUnits     ZUnits      `msgpack:"z_units"`
	Speed      float64     `msgpack:"speed"`
	SpeedUnits SpeedUnits  `msgpack:"speed_units"`
	Points     []PathPoint `msgpack:"points"`
	Custom     string      `msgpack:"custom"`
}

// Rows flags.
const (
	FlagSquareCurve uint8 = 0x01
	FlagCurveRight  uint8 = 0x02
)

type Rows struct {
	Timeout     uint16     `msgpack:"timeout"`
	Lat         float64    `msgpack:"lat"`
	Lon         float64    `msgpack:"lon"`
	Z           float64    `msgpack:"z"`
	ZUnits      ZUnits     `msgpack:"z_units"`
	Speed       float64    `msgpack:"speed"`
	SpeedUnits  SpeedUnits `msgpack:"speed_units"`
	Bearing     float64    `msgpack:"bearing"`
	CrossAngle  float64    `msgpack:"cross_angle"`
	Width       float64    `msgpack:"width"`
	Length      float64    `msgpack:"length"`
	HStep       float64    `msgpack:"hstep"`
	Coff        uint8      `msgpack:"coff"`
	Alternation uint8      `msgpack:"alternation"`
	Flags       uint8      `msgpack:"flags"`
	Custom      string     `msgpack:"custom"`
}

type Magnetometer struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Bearing    float64    `msgpack:"bearing"`
	Width      float64    `msgpack:"width"`
	Direction  string     `msgpack:"direction"`
	Custom     string     `msgpack:"custom"`
}

// Elevator flags.
const FlagCurrPos uint8 = 0x01

type Elevator struct {
	Timeout     uint16     `msgpack:"timeout"`
	Flags       uint8      `msgpack:"flags"`
	Lat         float64    `msgpack:"lat"`
	Lon         float64    `msgpack:"lon"`
	StartZ      float64    `msgpack:"start_z"`
	StartZUnits ZUnits     `msgpack:"start_z_units"`
	EndZ        float64    `msgpack:"end_z"`
	EndZUnits   ZUnits     `msgpack:"end_z_units"`
	Radius      float64    `msgpack:"radius"`
	Speed       float64    `msgpack:"speed"`
	SpeedUnits  SpeedUnits `msgpack:"speed_units"`
	Custom      string     `msgpack:"custom"`
}

// PopUp flags.
const (
	FlagPopUpCurrPos       uint8 = 0x01
	FlagPopUpWaitAtSurface uint8 = 0x02
	FlagPopUpStationKeep   uint8 = 0x04
)

type PopUp struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Duration   uint16     `msgpack:"duration"`
	Radius     float64    `msgpack:"radius"`
	Flags      uint8      `msgpack:"flags"`
	Custom     string     `msgpack:"custom"`
}

// HeadingSpeedDepth indicator bits.
const (
	IndHeading uint8 = 0x01
	IndZ       uint8 = 0x02
	IndSpeed   uint8 = 0x04
)

type HeadingSpeedDepth struct {
	Timeout    uint16     `msgpack:"timeout"`
	Heading    float64    `msgpack:"heading"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Duration   uint16     `msgpack:"duration"`
	Ind        uint8      `msgpack:"ind"`
	Custom     string     `msgpack:"custom"`
}

type CompassCalibration struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Pitch      float64    `msgpack:"pitch"`
	Amplitude  float64    `msgpack:"amplitude"`
	Duration   uint16     `msgpack:"duration"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Radius     float64    `msgpack:"radius"`
	Direction  string     `msgpack:"direction"`
	Custom     string     `msgpack:"custom"`
}

type YoYo struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Amplitude  float64    `msgpack:"amplitude"`
	Pitch      float64    `msgpack:"pitch"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Custom     string     `msgpack:"custom"`
}

type ScheduledGoto struct {
	ArrivalTime  float64 `msgpack:"arrival_time"`
	Lat          float64 `msgpack:"lat"`
	Lon          float64 `msgpack:"lon"`
	Z            float64 `msgpack:"z"`
	ZUnits       ZUnits  `msgpack:"z_units"`
	TravelZ      float64 `msgpack:"travel_z"`
	TravelZUnits ZUnits  `msgpack:"travel_z_units"`
	Delayed      string  `msgpack:"delayed"`
	Custom       string  `msgpack:"custom"`
}

type Takeoff struct {
	Lat          float64    `msgpack:"lat"`
	Lon          float64    `msgpack:"lon"`
	Z            float64    `msgpack:"z"`
	ZUnits       ZUnits     `msgpack:"z_units"`
	Speed        float64    `msgpack:"speed"`
	SpeedUnits   SpeedUnits `msgpack:"speed_units"`
	TakeoffPitch float64    `msgpack:"takeoff_pitch"`
	Custom       string     `msgpack:"custom"`
}

type Land struct {
	Lat           float64    `msgpack:"lat"`
	Lon           float64    `msgpack:"lon"`
	Z             float64    `msgpack:"z"`
	ZUnits        ZUnits     `msgpack:"z_units"`
	Speed         float64    `msgpack:"speed"`
	SpeedUnits    SpeedUnits `msgpack:"speed_units"`
	AbortZ        float64    `msgpack:"abort_z"`
	Bearing       float64    `msgpack:"bearing"`
	GlideSlope    uint8      `msgpack:"glide_slope"`
	GlideSlopeAlt float64    `msgpack:"glide_slope_alt"`
	Custom        string     `msgpack:"custom"`
}

type Dock struct {
	Timeout    uint16     `msgpack:"timeout"`
	Lat        float64    `msgpack:"lat"`
	Lon        float64    `msgpack:"lon"`
	Z          float64    `msgpack:"z"`
	ZUnits     ZUnits     `msgpack:"z_units"`
	Speed      float64    `msgpack:"speed"`
	SpeedUnits SpeedUnits `msgpack:"speed_units"`
	Bearing    float64    `msgpack:"bearing"`
	Target     string     `msgpack:"target"`
	Custom     string     `msgpack:"custom"`
}

type Teleoperation struct {
	Custom string `msgpack:"custom"`
}

type FollowReference struct {
	ControlSrc       uint16  `msgpack:"control_src"`
	ControlEnt       uint8   `msgpack:"control_ent"`
	Timeout          float64 `msgpack:"timeout"`
	LoiterRadius     float64 `msgpack:"loiter_radius"`
	AltitudeInterval float64 `msgpack:"altitude_interval"`
}

// PolygonVertex is a polygon corner in radians.
type PolygonVertex struct {
	Lat float64 `msgpack:"lat"`
	Lon float64 `msgpack:"lon"`
}

type CoverArea struct {
	Lat        float64         `msgpack:"lat"`
	Lon        float64         `msgpack:"lon"`
	Z          float64         `msgpack:"z"`
	ZUnits     ZUnits          `msgpack:"z_units"`
	Speed      float64         `msgpack:"speed"`
	SpeedUnits SpeedUnits      `msgpack:"speed_units"`
	Polygon    []PolygonVertex `msgpack:"polygon"`
	Custom     string          `msgpack:"custom"`
}

// CustomManeuver carries maneuvers the protocol has no dedicated message for.
type CustomManeuver struct {
	Timeout uint16 `msgpack:"timeout"`
	Name    string `msgpack:"name"`
	Custom  string `msgpack:"custom"`
}

func (Goto) Abbrev() string                   { return "Goto" }
func (Launch) Abbrev() string                 { return "Launch" }
func (Drop) Abbrev() string                   { return "Drop" }
func (Loiter) Abbrev() string                 { return "Loiter" }
func (StationKeeping) Abbrev() string         { return "StationKeeping" }
func (StationKeepingExtended) Abbrev() string { return "StationKeepingExtended" }
func (FollowTrajectory) Abbrev() string       { return "FollowTrajectory" }
func (FollowPath) Abbrev() string             { return "FollowPath" }
func (Rows) Abbrev() string                   { return "Rows" }
func (Magnetometer) Abbrev() string           { return "Magnetometer" }
func (Elevator) Abbrev() string               { return "Elevator" }
func (PopUp) Abbrev() string                  { return "PopUp" }
func (HeadingSpeedDepth) Abbrev() string      { return "HeadingSpeedDepth" }
func (CompassCalibration) Abbrev() string     { return "CompassCalibration" }
func (YoYo) Abbrev() string                   { return "YoYo" }
func (ScheduledGoto) Abbrev() string          { return "ScheduledGoto" }
func (Takeoff) Abbrev() string                { return "Takeoff" }
func (Land) Abbrev() string                   { return "Land" }
func (Dock) Abbrev() string                   { return "Dock" }
func (Teleoperation) Abbrev() string          { return "Teleoperation" }
func (FollowReference) Abbrev() string        { return "FollowReference" }
func (CoverArea) Abbrev() string              { return "CoverArea" }
func (CustomManeuver) Abbrev() string         { return "CustomManeuver" }
