// Package calendar holds the date-range primitives shared by availability,
// pricing and the allocator. All dates are whole days in UTC.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the wire format for dates (check-in, check-out, windows).
const DateLayout = "2006-01-02"

// ErrEmptyRange is returned when a range does not end strictly after it starts.
var ErrEmptyRange = errors.New("end date must be after start date")

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// A stay ending on the day another begins does not overlap it.
//
// Every availability and conflict check goes through this function.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return now.With(t.UTC()).BeginningOfDay()
}

// ParseDate parses a YYYY-MM-DD string into a UTC day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
	}
	return t, nil
}

// Range is a half-open stay [Start, End): Start is the first night,
// End is the departure day.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange normalises both ends to days and rejects empty or inverted ranges.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}
	if !r.End.After(r.Start) {
		return Range{}, ErrEmptyRange
	}
	return r, nil
}

// Overlaps reports whether r intersects [start, end).
func (r Range) Overlaps(start, end time.Time) bool {
	return Overlaps(r.Start, r.End, start, end)
}

// Nights returns the number of nights in the stay.
func (r Range) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// EachNight calls fn for every night in [Start, End) in order.
func (r Range) EachNight(fn func(night time.Time)) {
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Contains reports whether day falls inside the inclusive bounds [start, end].
// Used for pricing windows, which are inclusive on both ends.
func Contains(start, end, day time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

func (r Range) String() string {
	return r.Start.Format(DateLayout) + "/" + r.End.Format(DateLayout)
}
