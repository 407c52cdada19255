// Package hours normalizes a vendor's stored operating hours into a
// canonical weekly schedule.
//
// Stored hours arrive in several shapes: canonical objects, the string
// "closed", 12-hour range strings such as "9:00 AM - 5:00 PM", nulls and
// assorted junk. ParseRaw classifies each day into a RawDayEntry variant and
// Normalize resolves the variants into a WeeklySchedule. Neither step fails:
// anything unrecognised is replaced by the default day.
package hours

// Default opening times used for missing or unrecognised days, and as
// placeholders on closed days.
const (
	DefaultOpen  = "09:00"
	DefaultClose = "17:00"
)

// Days lists the schedule keys from Monday to Sunday.
var Days = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayHours is the canonical form of one day. Open and Close are 24-hour
// "HH:MM" strings. When Closed is true the times are placeholders only.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeeklySchedule maps each lowercase day name in Days to its hours.
// Schedules produced by this package always carry all seven days.
type WeeklySchedule map[string]DayHours

// DefaultDay returns the hours used when a day is missing or unparseable.
func DefaultDay() DayHours {
	return DayHours{Open: DefaultOpen, Close: DefaultClose}
}

// ClosedDay returns the canonical form of a closed day.
func ClosedDay() DayHours {
	return DayHours{Open: DefaultOpen, Close: DefaultClose, Closed: true}
}

// DefaultSchedule returns a schedule with every day set to DefaultDay.
func DefaultSchedule() WeeklySchedule {
	schedule := make(WeeklySchedule, len(Days))
	for _, day := range Days {
		schedule[day] = DefaultDay()
	}
	return schedule
}
