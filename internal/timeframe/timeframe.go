package timeframe

import (
	"errors"
	"fmt"
	"time"
)

// DateFormat is the layout used for bucket dates and day parameters.
const DateFormat = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ErrInvalidWindow is returned when a window starts after it ends.
var ErrInvalidWindow = errors.New("invalid window")

// DayBucket holds the number of events that fell on one calendar day.
type DayBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayWindow is a closed interval of calendar days.
// Start and End are stored as midnight UTC of their calendar date so that
// a date never shifts when printed, regardless of the reference zone.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// NewDayWindow builds a window from the calendar dates of start and end,
// each read in its own location.
func NewDayWindow(start, end time.Time) (DayWindow, error) {
	window := DayWindow{Start: calendarDate(start), End: calendarDate(end)}
	if window.Start.After(window.End) {
		return DayWindow{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidWindow, window.Start.Format(DateFormat), window.End.Format(DateFormat))
	}
	return window, nil
}

// Days returns the number of calendar days covered by the window.
func (w DayWindow) Days() int {
	return daysBetween(w.Start, w.End) + 1
}

// Previous returns the window of the same length ending the day before w starts.
func (w DayWindow) Previous() DayWindow {
	days := w.Days()
	return DayWindow{
		Start: w.Start.AddDate(0, 0, -days),
		End:   w.Start.AddDate(0, 0, -1),
	}
}

// Bounds returns the UTC instants covering the window when days are read in loc:
// midnight of the first day through the last nanosecond of the last day.
func (w DayWindow) Bounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 23, 59, 59, 999999999, loc)
	return from.UTC(), to.UTC()
}

// Contains reports whether the calendar day d falls inside the window.
func (w DayWindow) Contains(d time.Time) bool {
	day := calendarDate(d)
	return !day.Before(w.Start) && !day.After(w.End)
}

// CheckMaxDays rejects windows longer than maxDays. A non-positive maxDays means no limit.
func (w DayWindow) CheckMaxDays(maxDays int) error {
	if maxDays > 0 && w.Days() > maxDays {
		return fmt.Errorf("%w: %s covers %d days, the limit is %d", ErrInvalidWindow, w, w.Days(), maxDays)
	}
	return nil
}

func (w DayWindow) String() string {
	return w.Start.Format(DateFormat) + ".." + w.End.Format(DateFormat)
}

// Bucketizer assigns timestamps to calendar days in a fixed reference zone.
// It holds no mutable state and is safe for concurrent use.
type Bucketizer struct {
	Location *time.Location
}

// NewBucketizer creates a Bucketizer for the given reference zone (UTC when nil).
func NewBucketizer(loc *time.Location) *Bucketizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Bucketizer{Location: loc}
}

// Day returns the calendar day of t in the reference zone, as midnight UTC.
func (b *Bucketizer) Day(t time.Time) time.Time {
	return calendarDate(t.In(b.location()))
}

// Bucketize produces one bucket per calendar day in [start, end], ascending,
// zero-filled, counting each timestamp on its day in the reference zone.
// Timestamps outside the window are ignored.
func (b *Bucketizer) Bucketize(timestamps []time.Time, start, end time.Time) ([]DayBucket, error) {
	window, err := NewDayWindow(start, end)
	if err != nil {
		return nil, err
	}
	return b.BucketizeWindow(timestamps, window), nil
}

// BucketizeWindow is Bucketize for an already validated window.
func (b *Bucketizer) BucketizeWindow(timestamps []time.Time, window DayWindow) []DayBucket {
	buckets := make([]DayBucket, window.Days())
	for i := range buckets {
		buckets[i].Date = window.Start.AddDate(0, 0, i).Format(DateFormat)
	}

	for _, ts := range timestamps {
		day := b.Day(ts)
		if !window.Contains(day) {
			continue
		}
		buckets[daysBetween(window.Start, day)].Count++
	}

	return buckets
}

func (b *Bucketizer) location() *time.Location {
	if b == nil || b.Location == nil {
		return time.UTC
	}
	return b.Location
}

// calendarDate strips the time of day from t, keeping its date as seen in t's own location.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b; both must be midnight UTC.
// Unix seconds are used because time.Duration overflows past ~292 years.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}
