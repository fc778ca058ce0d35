package maneuver

// Variant names. Each is the document payload element name.
const (
	KindGoto                   = "Goto"
	KindLaunch                 = "Launch"
	KindDrop                   = "Drop"
	KindLoiter                 = "Loiter"
	KindStationKeeping         = "StationKeeping"
	KindFollowTrajectory       = "FollowTrajectory"
	KindFollowPath             = "FollowPath"
	KindRows                   = "Rows"
	KindRowsPattern            = "RowsPattern"
	KindRIPattern              = "RIPattern"
	KindCrossHatchPattern      = "CrossHatchPattern"
	KindExpandingSquarePattern = "ExpandingSquarePattern"
	KindMagnetometer           = "Magnetometer"
	KindElevator               = "Elevator"
	KindPopUp                  = "PopUp"
	KindHeadingSpeedDepth      = "HeadingSpeedDepth"
	KindCompassCalibration     = "CompassCalibration"
	KindYoYo                   = "YoYo"
	KindScheduledGoto          = "ScheduledGoto"
	KindTakeoff                = "Takeoff"
	KindLand                   = "Land"
	KindDock                   = "Dock"
	KindTeleoperation          = "Teleoperation"
	KindFollowReference        = "FollowReference"
	KindCoverArea              = "CoverArea"
	KindUnconstrained          = "Unconstrained"
)
