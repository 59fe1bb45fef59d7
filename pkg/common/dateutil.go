// Copyright (c) 2025 Leetrack Authors. All Rights Reserved.
// Use of this source code is governed by the license found in the LICENSE file.

package common

import "time"

// DateLayout is the wire format of calendar dates in the store ("2024-01-31").
const DateLayout = "2006-01-02"

// Clock supplies the current time. The cache and selection engine take a Clock
// so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// TruncateToLocalDate returns midnight of t's calendar day in t's own location.
// Unlike time.Truncate, which works on absolute time, this keeps the caller's
// local day, so a practice at 23:30 local time is not booked on the next UTC day.
//
// Example:
//   - Input: 2025-10-17 23:30:00 -0700
//   - Output: 2025-10-17 00:00:00 -0700
func TruncateToLocalDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today returns the current local calendar day according to clock.
func Today(clock Clock) time.Time {
	return TruncateToLocalDate(clock.Now())
}

// DaysBetween returns the number of calendar days from "from" to "to".
// Time of day is ignored and the result is negative when "to" is earlier.
// Each argument is read in its own location, and DST transitions do not skew the count.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// FormatDate formats the calendar day of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as midnight in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}
