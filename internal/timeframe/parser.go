package timeframe

import (
	"fmt"
	"time"
)

// DefaultWindowDays is the window length used when a request names no dates.
const DefaultWindowDays = 30

// DefaultMaxWindowDays bounds how many daily buckets a single request may ask for.
const DefaultMaxWindowDays = 1096

type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider uses the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// LastNDays returns the window of n calendar days ending on today's date in loc.
func LastNDays(now time.Time, n int, loc *time.Location) (DayWindow, error) {
	if n < 1 {
		return DayWindow{}, fmt.Errorf("%w: window must cover at least one day, got %d", ErrInvalidWindow, n)
	}
	if loc == nil {
		loc = time.UTC
	}
	today := calendarDate(now.In(loc))
	return DayWindow{Start: today.AddDate(0, 0, -(n - 1)), End: today}, nil
}

type WindowParser struct {
	timeProvider TimeProvider
	loc          *time.Location
}

// NewWindowParser creates a parser resolving "today" in loc.
func NewWindowParser(loc *time.Location, timeProvider ...TimeProvider) *WindowParser {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	if loc == nil {
		loc = time.UTC
	}

	return &WindowParser{
		timeProvider: provider,
		loc:          loc,
	}
}

// ParseDayWindow parses YYYY-MM-DD from/to request parameters.
// An empty "to" means today; an empty "from" means DefaultWindowDays ending at "to".
func (p *WindowParser) ParseDayWindow(fromDate, toDate string) (DayWindow, error) {
	now := p.timeProvider.Now(p.loc)

	end := calendarDate(now.In(p.loc))
	if toDate != "" {
		parsed, err := time.Parse(DateFormat, toDate)
		if err != nil {
			return DayWindow{}, fmt.Errorf("%w: invalid 'to' date: %v", ErrInvalidWindow, err)
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -(DefaultWindowDays - 1))
	if fromDate != "" {
		parsed, err := time.Parse(DateFormat, fromDate)
		if err != nil {
			return DayWindow{}, fmt.Errorf("%w: invalid 'from' date: %v", ErrInvalidWindow, err)
		}
		start = parsed
	}

	return NewDayWindow(start, end)
}

// LastNDays is LastNDays using the parser's clock and zone.
func (p *WindowParser) LastNDays(n int) (DayWindow, error) {
	return LastNDays(p.timeProvider.Now(p.loc), n, p.loc)
}
