package trip

// Ground truth spreadsheet columns.
const (
	ColGTCollector           = "GT_Collector"
	ColGTDate                = "GT_Date"
	ColGTTimeOrig            = "GT_TimeOrig"
	ColGTTimeOrigRounded     = "GT_TimeOrigMinuteRounded"
	ColGTTimeZone            = "GT_TimeZone"
	ColGTLatOrig             = "GT_LatOrig"
	ColGTLonOrig             = "GT_LonOrig"
	ColGTLocationOrig        = "GT_LocationOrig"
	ColGTTimeDest            = "GT_TimeDest"
	ColGTTimeDestRounded     = "GT_TimeDestMinuteRounded"
	ColGTLatDest             = "GT_LatDest"
	ColGTLonDest             = "GT_LonDest"
	ColGTLocDest             = "GT_LocDest"
	ColGTComments            = "GT_Comments"
	ColGTTourID              = "GT_TourID"
	ColGTTripID              = "GT_TripID"
	ColGTMode                = "GT_Mode"
	ColGTDateTimeCombined    = "GT_DateTimeCombined"
	ColGTDateTimeDestCombine = "GT_DateTimeDestCombined"
	ColGTOrigUTCBackup       = "GT_DateTimeOrigUTC_Backup"
	ColGTDestUTC             = "GT_DateTimeDestUTC"
	ColGTOrigUTC             = "GT_DateTimeOrigUTC"
)

// OBA export columns the matcher reads. Everything else is passthrough.
const (
	ColOBAUserID       = "User ID"
	ColOBAActivity     = "Google Activity"
	ColOBAStart        = "Activity Start Date and Time* (UTC)"
	ColOBAEnd          = "Activity Destination Date and Time* (UTC)"
	ColOBAOrigBestTime = "Origin location Date and Time (*best) (UTC)"
	ColOBADestBestTime = "Destination Location Date and Time (*best) (UTC)"
	ColOBADuration     = "Duration* (minutes)"
	ColOBADistance     = "Origin-Destination Bird-Eye Distance* (meters)"
	ColOBAOrigLat      = "Origin latitude (*best)"
	ColOBAOrigLon      = "Origin longitude (*best)"
	ColOBADestLat      = "Destination latitude (*best)"
	ColOBADestLon      = "Destination longitude (*best)"
)

// Columns added by the merge.
const (
	ColManualAssignment     = "Manual Assignment"
	ColTimeDifference       = "Time_Difference"
	ColDistanceDifference   = "Distance_Difference"
	ColTimeDifferenceDest   = "Time_Difference_Destination"
	ColDistanceDiffDest     = "Distance_Difference_Destination"
	ColDropReason           = "Drop_Reason"
	ColUnmatchedDeviceShort = "Device"
)

// GTRequiredColumns is the schema contract for the ground truth spreadsheet.
var GTRequiredColumns = []string{
	ColGTCollector, ColGTDate, ColGTTimeOrig, ColGTTimeDest, ColGTTimeZone, ColGTMode,
	ColGTLatOrig, ColGTLonOrig, ColGTLatDest, ColGTLonDest, ColGTTourID, ColGTTripID,
}

// OBARequiredColumns is the schema contract for the OBA travel behavior export.
var OBARequiredColumns = []string{
	ColOBAUserID, ColOBAActivity, ColOBAStart, ColOBAOrigBestTime, ColOBADestBestTime,
	ColOBADuration, ColOBADistance, ColOBAOrigLat, ColOBAOrigLon,
}

// GTRelevantColumns must all be present for a ground truth row to be kept when
// the caller asks for complete rows.
var GTRelevantColumns = []string{ColGTDate, ColGTTimeOrig, ColGTTimeDest}

// GTOutputColumns is the canonical order of the ground truth half of a merged row.
var GTOutputColumns = []string{
	ColGTCollector, ColGTDate, ColGTTimeOrig,
	ColGTTimeOrigRounded, ColGTTimeZone, ColGTLatOrig, ColGTLonOrig, ColGTLocationOrig,
	ColGTTimeDest, ColGTTimeDestRounded, ColGTLatDest, ColGTLonDest, ColGTLocDest,
	ColGTComments,
	ColGTDateTimeCombined, ColGTDateTimeDestCombine,
	ColGTTourID, ColGTTripID, ColGTMode, ColGTOrigUTCBackup, ColGTDestUTC,
}

// obaProvenanceColumns are carried through the merge untouched.
var obaProvenanceColumns = []string{
	"Vehicle type", "Region ID",
	ColOBAOrigBestTime,
	"Activity Start/Origin Time Diff* (minutes)", ColOBAOrigLat, ColOBAOrigLon,
	"Origin Horizontal Accuracy (meters) (*best)", "Origin Location Provider (*best)",
	ColOBADestBestTime,
	"Activity End/Destination Time Diff* (minutes)", ColOBADestLat, ColOBADestLon,
	"Destination Horizontal Accuracy (meters) (*best)", "Destination Location Provider (*best)",
	ColOBADuration, ColOBADistance,
	"Chain ID", "Chain Index", "Tour ID", "Tour Index",
	"Ignoring Battery Optimizations", "Talk Back Enabled", "Power Save Mode Enabled",
	"Origin fused Date and Time (UTC)", "Origin fused latitude", "Origin fused longitude",
	"Origin fused Horizontal Accuracy (meters)", "Origin gps Date and Time (UTC)",
	"Origin gps latitude", "Origin gps longitude", "Origin gps Horizontal Accuracy (meters)",
	"Origin network Date and Time (UTC)", "Origin network latitude", "Origin network longitude",
	"Origin network Horizontal Accuracy (meters)", "Destination fused Date and Time (UTC)",
	"Destination fused latitude", "Destination fused longitude",
	"Destination fused Horizontal Accuracy (meters)", "Destination gps Date and Time (UTC)",
	"Destination gps latitude", "Destination gps longitude",
	"Destination gps Horizontal Accuracy (meters)", "Destination network Date and Time (UTC)",
	"Destination network latitude", "Destination network longitude",
	"Destination network Horizontal Accuracy (meters)",
}

// OBAOutputColumns is the canonical order of the OBA half of a merged row.
var OBAOutputColumns = concat(
	[]string{
		ColOBAActivity, ColOBAStart, ColOBAEnd,
		ColManualAssignment, "Trip ID", ColOBAUserID, "Device Trip ID", "Google Activity Confidence",
		ColTimeDifference, ColDistanceDifference, ColTimeDifferenceDest, ColDistanceDiffDest,
	},
	obaProvenanceColumns,
	[]string{ColGTOrigUTC},
)

// UnmatchedOutputColumns is the canonical order of the residual OBA table.
var UnmatchedOutputColumns = concat(
	[]string{ColGTCollector, ColUnmatchedDeviceShort},
	[]string{
		ColOBAActivity, ColOBAStart, ColOBAEnd,
		"Trip ID", ColOBAUserID, "Device Trip ID", "Google Activity Confidence",
	},
	obaProvenanceColumns,
)

// MergedOutputColumns is the full header of a merged data file.
func MergedOutputColumns() []string {
	return concat(GTOutputColumns, OBAOutputColumns)
}

func concat(parts ...[]string) []string {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]string, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
