package hours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned for hours or minutes outside a 24-hour clock.
var ErrInvalidTime = errors.New("invalid time of day")

// To24Hour converts a 12-hour reading into "HH:MM". 12 AM becomes 00 and
// 1-11 PM gain twelve hours; every other combination, including a missing
// meridiem, keeps the hour as given. The result must be a valid 24-hour time.
func To24Hour(hour, minute int, meridiem string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(meridiem)) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour >= 1 && hour <= 11 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %d:%02d %s", ErrInvalidTime, hour, minute, meridiem)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// FormatDisplay converts a 24-hour "HH:MM" time into "H:MM AM" for display.
// Values that are not valid times are returned unchanged.
func FormatDisplay(value string) string {
	hour, minute, ok := splitClock(value)
	if !ok {
		return value
	}

	switch {
	case hour == 0:
		return fmt.Sprintf("12:%02d AM", minute)
	case hour == 12:
		return fmt.Sprintf("12:%02d PM", minute)
	case hour < 12:
		return fmt.Sprintf("%d:%02d AM", hour, minute)
	default:
		return fmt.Sprintf("%d:%02d PM", hour-12, minute)
	}
}

// FormatDayRange renders a day for display, e.g. "9:00 AM - 5:00 PM" or "Closed".
// The range form is accepted back by ParseRaw.
func FormatDayRange(day DayHours) string {
	if day.Closed {
		return "Closed"
	}
	return FormatDisplay(day.Open) + " - " + FormatDisplay(day.Close)
}

func splitClock(value string) (int, int, bool) {
	hourText, minuteText, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found || len(minuteText) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
