package ohist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TidRange is a half-open interval [Lo, Hi) of transaction ids bounding
// which part of history an operation touches. An empty range is valid and
// yields zero transactions.
type TidRange struct {
	Lo Tid
	Hi Tid
}

// EntireHistory covers every transaction from the beginning of history to
// the current head.
var EntireHistory = TidRange{Tid0, TidMax}

func (r TidRange) IsEmpty() bool         { return r.Lo >= r.Hi }
func (r TidRange) Contains(tid Tid) bool { return tid >= r.Lo && tid < r.Hi }
func (r TidRange) String() string        { return fmt.Sprintf("%v..%v", r.Lo, r.Hi) }

// ParseTidRange resolves a range expression of the form "<part>..<part>"
// into a TidRange. An empty begin part means the beginning of history, an
// empty end part the current head. Each non-empty part is resolved by
// ResolveTid against the reference instant now and time zone loc, so
// resolution is deterministic given identical inputs.
//
// Errors wrap ErrMalformedRange (unparseable) or ErrInvertedRange (begin
// resolved after end).
func ParseTidRange(expr string, now time.Time, loc *time.Location) (TidRange, error) {
	i := strings.Index(expr, "..")
	if i < 0 {
		return TidRange{}, rangeErrf(expr, ErrMalformedRange, `missing ".."`)
	}

	r := EntireHistory
	if part := expr[:i]; part != "" {
		tid, err := ResolveTid(part, now, loc)
		if err != nil {
			return TidRange{}, &RangeError{expr, ErrMalformedRange, err.Error()}
		}
		r.Lo = tid
	}
	if part := expr[i+2:]; part != "" {
		tid, err := ResolveTid(part, now, loc)
		if err != nil {
			return TidRange{}, &RangeError{expr, ErrMalformedRange, err.Error()}
		}
		r.Hi = tid
	}

	if r.Lo > r.Hi {
		return TidRange{}, rangeErrf(expr, ErrInvertedRange, "%v > %v", r.Lo, r.Hi)
	}
	return r, nil
}

// ResolveTid resolves one endpoint of a range expression to a tid. The
// following forms are attempted, in order:
//
//   - a literal tid: exactly 16 hex digits, taken verbatim;
//   - an absolute time: RFC 3339 ("2018-01-01T10:30:00Z", offsets and
//     fractional seconds allowed), a legacy date-time with a zone
//     abbreviation ("26 Aug 76 14:29 GMT"), or the explicit-UTC forms
//     "YYYY-MM-DD HH:MM:SS UTC" and "YYYY-MM-DD UTC" (midnight);
//   - a relative time: "<n> <unit> ago" with spaces or dots as separators
//     ("3.weeks.ago"); units are second, minute, hour, day (86400s) and
//     week as fixed durations, month as calendar months with the
//     day-of-month clamped to the last valid day;
//   - a named instant: "now", "today", "yesterday", optionally preceded by
//     a clock time replacing the time-of-day ("6am yesterday",
//     "noon today");
//   - a bare clock time "H:MM" / "HH:MM" on the reference date.
//
// Local forms use loc; nil loc means UTC. A bare clock time later than now
// is accepted as a future instant rather than rejected or rolled back a
// day, keeping resolution a pure function of (expr, now, loc).
func ResolveTid(s string, now time.Time, loc *time.Location) (Tid, error) {
	if loc == nil {
		loc = time.UTC
	}
	if isHex64(s) {
		return ParseTid(s)
	}
	if t, ok := parseAbsoluteTime(s); ok {
		return TidAtTime(t), nil
	}
	if t, ok := parseRelativeTime(s, now, loc); ok {
		return TidAtTime(t), nil
	}
	if t, ok := parseNamedInstant(s, now, loc); ok {
		return TidAtTime(t), nil
	}
	if t, ok := parseClockTime(s, now, loc); ok {
		return TidAtTime(t), nil
	}
	return 0, fmt.Errorf("cannot resolve %q to a tid", s)
}

var utcLayouts = []string{
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 UTC",
}

func parseAbsoluteTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, ok := parseLegacyTime(s); ok {
		return t, true
	}
	for _, layout := range utcLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// zoneOffsets is the fixed abbreviation table for legacy-style date-times,
// in seconds east of UTC. Only unambiguous, widely used abbreviations are
// listed; anything else must be written with an explicit offset.
var zoneOffsets = map[string]int{
	"UT": 0, "UTC": 0, "GMT": 0, "Z": 0,
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
	"CET": 1 * 3600, "CEST": 2 * 3600,
}

var legacyLayouts = []string{
	"2 Jan 06 15:04:05",
	"2 Jan 06 15:04",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
}

func parseLegacyTime(s string) (time.Time, bool) {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return time.Time{}, false
	}
	offset, ok := zoneOffsets[s[i+1:]]
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, s[:i]); err == nil {
			return t.Add(-time.Duration(offset) * time.Second), true
		}
	}
	return time.Time{}, false
}

var relativeRe = regexp.MustCompile(`^([0-9]+)[ .](second|minute|hour|day|week|month)s?[ .]ago$`)

func parseRelativeTime(s string, now time.Time, loc *time.Location) (time.Time, bool) {
	m := relativeRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	switch m[2] {
	case "second":
		return now.Add(-time.Duration(n) * time.Second), true
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return now.Add(-time.Duration(n) * 24 * time.Hour), true
	case "week":
		return now.Add(-time.Duration(n) * 7 * 24 * time.Hour), true
	case "month":
		return addMonthsClamped(now.In(loc), -n), true
	}
	return time.Time{}, false
}

// addMonthsClamped shifts t by whole calendar months, keeping the same
// day-of-month but clamping it to the last valid day of the resulting month
// (Mar 31 minus one month is Feb 28/29, not an overflow into March).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := y*12 + int(m) - 1 + months
	y2, m2 := total/12, total%12
	if m2 < 0 {
		m2 += 12
		y2--
	}
	month := time.Month(m2 + 1)
	if last := daysInMonth(y2, month); d > last {
		d = last
	}
	return time.Date(y2, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func parseNamedInstant(s string, now time.Time, loc *time.Location) (time.Time, bool) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 2 {
		return time.Time{}, false
	}
	if len(fields) == 1 && fields[0] == "now" {
		return now, true
	}

	var dayOff int
	switch fields[len(fields)-1] {
	case "today":
		dayOff = 0
	case "yesterday":
		dayOff = -1
	default:
		return time.Time{}, false
	}

	y, m, d := now.In(loc).Date()
	hour, min := 0, 0
	if len(fields) == 2 {
		var ok bool
		hour, min, ok = parseClockToken(fields[0])
		if !ok {
			return time.Time{}, false
		}
	}
	return time.Date(y, m, d+dayOff, hour, min, 0, 0, loc), true
}

var (
	amPmRe  = regexp.MustCompile(`^([0-9]{1,2})(am|pm)$`)
	clockRe = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2})(am|pm)?$`)
)

// parseClockToken parses the time-of-day prefixes of named instants:
// "noon", "6am", "12pm", "6:30", "6:30pm".
func parseClockToken(s string) (hour, min int, ok bool) {
	if s == "noon" {
		return 12, 0, true
	}
	if m := amPmRe.FindStringSubmatch(s); m != nil {
		return clockFrom(m[1], "0", m[2])
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		return clockFrom(m[1], m[2], m[3])
	}
	return 0, 0, false
}

func clockFrom(hourStr, minStr, amPm string) (hour, min int, ok bool) {
	hour, _ = strconv.Atoi(hourStr)
	min, _ = strconv.Atoi(minStr)
	if min > 59 {
		return 0, 0, false
	}
	switch amPm {
	case "":
		if hour > 23 {
			return 0, 0, false
		}
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
		if amPm == "pm" {
			hour += 12
		}
	}
	return hour, min, true
}

// parseClockTime resolves a bare "H:MM" to that local time on the reference
// date, even when the result is after now.
func parseClockTime(s string, now time.Time, loc *time.Location) (time.Time, bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil || m[3] != "" {
		return time.Time{}, false
	}
	hour, min, ok := clockFrom(m[1], m[2], "")
	if !ok {
		return time.Time{}, false
	}
	y, mo, d := now.In(loc).Date()
	return time.Date(y, mo, d, hour, min, 0, 0, loc), true
}
