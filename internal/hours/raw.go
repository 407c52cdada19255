package hours

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// RawDayEntry is one day's stored value, classified by shape.
// The concrete types are CanonicalEntry, ClosedEntry, RangeEntry and OtherEntry.
type RawDayEntry interface {
	rawDayEntry()
}

// CanonicalEntry is an object that already has string open/close and a boolean closed.
type CanonicalEntry struct {
	Hours DayHours
}

// ClosedEntry is the string "closed", in any letter case.
type ClosedEntry struct{}

// RangeEntry is a 12-hour range string, already converted to 24-hour times.
type RangeEntry struct {
	Open  string
	Close string
}

// OtherEntry is any value that fits none of the other shapes, including null.
type OtherEntry struct {
	Raw json.RawMessage
}

func (CanonicalEntry) rawDayEntry() {}
func (ClosedEntry) rawDayEntry()    {}
func (RangeEntry) rawDayEntry()     {}
func (OtherEntry) rawDayEntry()     {}

// RawSchedule holds the classified entries by lowercase day name.
// Days absent from the stored document have no key.
type RawSchedule map[string]RawDayEntry

// rangePattern matches "H:MM AM - H:MM PM" with optional meridiems and either
// a hyphen or an en dash between the two times.
var rangePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])?\s*[-–]\s*(\d{1,2}):(\d{2})\s*([AaPp][Mm])?$`)

// ParseRaw classifies a stored operating-hours document. Keys are matched
// case-insensitively; when two keys fold to the same day the lowercase one wins.
// Anything other than a JSON object yields an empty RawSchedule.
func ParseRaw(data []byte) RawSchedule {
	raw := make(RawSchedule)

	var document map[string]json.RawMessage
	if err := json.Unmarshal(data, &document); err != nil || document == nil {
		return raw
	}

	keys := make([]string, 0, len(document))
	for key := range document {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		day := strings.ToLower(strings.TrimSpace(key))
		if _, seen := raw[day]; seen && key != day {
			continue
		}
		raw[day] = ClassifyEntry(document[key])
	}

	return raw
}

// ClassifyEntry determines which shape a single day's JSON value has.
func ClassifyEntry(value json.RawMessage) RawDayEntry {
	if hours, ok := decodeCanonical(value); ok {
		return CanonicalEntry{Hours: hours}
	}

	var text string
	if !isNull(value) && json.Unmarshal(value, &text) == nil {
		trimmed := strings.TrimSpace(text)
		if strings.EqualFold(trimmed, "closed") {
			return ClosedEntry{}
		}
		if open, closeTime, ok := parseRange(trimmed); ok {
			return RangeEntry{Open: open, Close: closeTime}
		}
	}

	return OtherEntry{Raw: value}
}

func decodeCanonical(value json.RawMessage) (DayHours, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil || fields == nil {
		return DayHours{}, false
	}

	var hours DayHours
	if !decodeField(fields["open"], &hours.Open) ||
		!decodeField(fields["close"], &hours.Close) ||
		!decodeField(fields["closed"], &hours.Closed) {
		return DayHours{}, false
	}
	return hours, true
}

// decodeField decodes a present, non-null field into target.
func decodeField(value json.RawMessage, target any) bool {
	if len(value) == 0 || isNull(value) {
		return false
	}
	return json.Unmarshal(value, target) == nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func parseRange(text string) (string, string, bool) {
	match := rangePattern.FindStringSubmatch(text)
	if match == nil {
		return "", "", false
	}

	open, err := convertMatch(match[1], match[2], match[3])
	if err != nil {
		return "", "", false
	}
	closeTime, err := convertMatch(match[4], match[5], match[6])
	if err != nil {
		return "", "", false
	}
	return open, closeTime, true
}

func convertMatch(hour, minute, meridiem string) (string, error) {
	h, err := strconv.Atoi(hour)
	if err != nil {
		return "", err
	}
	m, err := strconv.Atoi(minute)
	if err != nil {
		return "", err
	}
	return To24Hour(h, m, meridiem)
}
