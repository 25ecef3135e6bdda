// Package date provides a calendar day value type with no time or
// location component, plus inclusive day ranges.
package date

import (
	"encoding/json"
	"fmt"
	"iter"
	"time"
)

// readDateFormat accepts single digit days and months.
const readDateFormat = "2006-1-2"

// DateFormat is the canonical textual form of a Date.
const DateFormat = "2006-01-02"

// Date is a single calendar day, always interpreted in UTC.
//
// The zero value is the zero date, before any valid trading day.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date. Out of range values are carried over,
// so New(2024, 1, 32) is February 1st 2024.
func New(year int, month time.Month, day int) Date {
	return toDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Today returns the current day in UTC.
func Today() Date { return toDate(time.Now().UTC()) }

func toDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{y: y, m: m, d: d}
}

func (d Date) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// IsWeekend reports whether d falls on a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	if d.y != o.y {
		return d.y < o.y
	}
	if d.m != o.m {
		return d.m < o.m
	}
	return d.d < o.d
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return o.Before(d) }

// Add returns the date i calendar days after d (before, if negative).
func (d Date) Add(i int) Date { return toDate(d.time().AddDate(0, 0, i)) }

// Unix returns the Unix time of midnight UTC on d.
func (d Date) Unix() int64 { return d.time().Unix() }

func (d Date) String() string { return d.time().Format(DateFormat) }

// Parse reads a date in YYYY-MM-DD form, tolerating single digit
// month and day.
func Parse(s string) (Date, error) {
	t, err := time.ParseInLocation(readDateFormat, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return toDate(t), nil
}

// MustParse is Parse, panicking on error. For tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = &Date{}
)

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p, err := Parse(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// Range is an inclusive span of calendar days.
type Range struct {
	From, To Date
}

// NewRange returns the inclusive range between two days, swapping the
// bounds if they are reversed.
func NewRange(a, b Date) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{From: a, To: b}
}

// Contains reports whether d falls within the range, bounds included.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Days iterates every calendar day in the range in ascending order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}
