package roster

const (
	StatusPresent   = "Present"
	StatusAbsent    = "Absent"
	StatusHalfDay   = "Half-day"
	StatusNotMarked = "Not Marked"

	DateLayout = "2006-01-02"
)

var AttendanceStatuses = []string{StatusPresent, StatusAbsent, StatusHalfDay}
