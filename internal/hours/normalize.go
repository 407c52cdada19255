package hours

// Normalize resolves a classified schedule into a WeeklySchedule with all
// seven days. Canonical objects pass through unchanged, "closed" becomes a
// closed day, ranges become open days, and everything else, including days
// missing from raw, falls back to DefaultDay.
func Normalize(raw RawSchedule) WeeklySchedule {
	schedule, _ := NormalizeWithReport(raw)
	return schedule
}

// NormalizeWithReport is Normalize that also returns, in Days order, the days
// that were filled from the default table because they were missing or unrecognised.
// A day explicitly stored as 09:00-17:00 is not reported.
func NormalizeWithReport(raw RawSchedule) (WeeklySchedule, []string) {
	schedule := make(WeeklySchedule, len(Days))
	defaulted := []string{}

	for _, day := range Days {
		hours, ok := resolve(raw[day])
		if !ok {
			defaulted = append(defaulted, day)
		}
		schedule[day] = hours
	}

	return schedule, defaulted
}

// NormalizeJSON parses and normalizes a stored operating-hours document.
func NormalizeJSON(data []byte) WeeklySchedule {
	return Normalize(ParseRaw(data))
}

func resolve(entry RawDayEntry) (DayHours, bool) {
	switch e := entry.(type) {
	case CanonicalEntry:
		return e.Hours, true
	case ClosedEntry:
		return ClosedDay(), true
	case RangeEntry:
		return DayHours{Open: e.Open, Close: e.Close}, true
	default:
		return DefaultDay(), false
	}
}
