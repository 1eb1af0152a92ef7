package dateonly

import (
	"fmt"
	"time"
)

// TypeName is the name under which the date value type is bound into a
// session's name set.
const TypeName = "date-only"

// Layout is the wire text format for dates.
const Layout = "2006-01-02"

var epoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// Days from 0001-01-01 to the Unix epoch. time.Duration saturates at
// roughly 292 years, so day numbers are derived from Unix seconds
// rather than a Sub against the epoch.
const unixEpochDays = 719162

// Date is a calendar date without a time-of-day or zone. On the wire it
// is a u32 day number counting from 0001-01-01 (day 0).
type Date struct {
	days int32
}

// New builds a date from a year, month and day. Out-of-range components
// normalize the way time.Date does.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime truncates t to its calendar date in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date{days: int32(midnight.Unix()/86400 + unixEpochDays)}
}

// FromDayNumber builds a date from its wire representation.
func FromDayNumber(n uint32) Date {
	return Date{days: int32(n)}
}

// DayNumber returns the wire representation: days since 0001-01-01.
func (d Date) DayNumber() uint32 {
	return uint32(d.days)
}

// Parse reads an ISO "YYYY-MM-DD" date.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return epoch.AddDate(0, 0, int(d.days))
}

func (d Date) Year() int {
	return d.Time().Year()
}

func (d Date) Month() time.Month {
	return d.Time().Month()
}

func (d Date) Day() int {
	return d.Time().Day()
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{days: d.days + int32(n)}
}

// AddMonths returns the date shifted by n months, normalizing the way
// time.AddDate does (Jan 31 + 1 month = Mar 2 or 3).
func (d Date) AddMonths(n int) Date {
	return FromTime(d.Time().AddDate(0, n, 0))
}

// Compare returns -1, 0 or 1 ordering d against o.
func (d Date) Compare(o Date) int {
	switch {
	case d.days < o.days:
		return -1
	case d.days > o.days:
		return 1
	default:
		return 0
	}
}

func (d Date) Before(o Date) bool {
	return d.days < o.days
}

func (d Date) After(o Date) bool {
	return d.days > o.days
}

// DaysUntil returns the number of calendar days from d to o; negative
// when o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.days - d.days)
}

func (d Date) String() string {
	return d.Time().Format(Layout)
}
