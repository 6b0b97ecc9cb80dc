// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package timestamp provides a minute-resolution wall-clock value with a fixed
textual form.

The text form `HH:MM DD.MM.YYYY` is what the storage layer persists for session,
token and post expiry columns, so it must stay byte-compatible with rows written
by earlier deployments.

Usage:

	expires := timestamp.Now(24)
	if timestamp.Now(0).After(expires) {
	    // expired
	}

Timestamps carry no timezone. They are produced from the server's local clock
and compared field by field.
*/
package timestamp

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidFormat is returned by [Parse] for any text that is not `HH:MM DD.MM.YYYY`.
var ErrInvalidFormat = errors.New("timestamp: invalid format")

// pattern accepts zero-padded two digit fields and a year of at least four digits.
var pattern = regexp.MustCompile(`^(\d{2}):(\d{2}) (\d{2})\.(\d{2})\.(\d{4,})$`)

// # Clock

// Clock returns the current local time. Tests replace it through [SetClock].
type Clock func() time.Time

var clock Clock = time.Now

/*
SetClock swaps the package clock and returns a function that restores the
previous one.

Parameters:
  - next: Clock

Returns:
  - func(): restore callback, usually deferred or passed to t.Cleanup
*/
func SetClock(next Clock) func() {
	previous := clock
	clock = next
	return func() { clock = previous }
}

// # Timestamp

// Timestamp is a (hour, minute, day, month, year) tuple.
type Timestamp struct {
	Hour   int
	Minute int
	Day    int
	Month  int
	Year   int
}

// Now returns the current local time shifted by deltaHours. Negative deltas are allowed.
func Now(deltaHours int) Timestamp {
	return FromTime(clock().Add(time.Duration(deltaHours) * time.Hour))
}

// FromTime truncates t to minute resolution.
func FromTime(t time.Time) Timestamp {
	return Timestamp{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Day:    t.Day(),
		Month:  int(t.Month()),
		Year:   t.Year(),
	}
}

// Time converts the timestamp back to a [time.Time] in the local zone.
func (ts Timestamp) Time() time.Time {
	return time.Date(ts.Year, time.Month(ts.Month), ts.Day, ts.Hour, ts.Minute, 0, 0, time.Local)
}

// String renders the timestamp as `HH:MM DD.MM.YYYY`.
func (ts Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d %02d.%02d.%04d", ts.Hour, ts.Minute, ts.Day, ts.Month, ts.Year)
}

/*
Parse is the exact inverse of [Timestamp.String].

Parameters:
  - text: string in `HH:MM DD.MM.YYYY` form

Returns:
  - Timestamp: parsed value
  - error: [ErrInvalidFormat] when the shape or a field range is wrong
*/
func Parse(text string) (Timestamp, error) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	fields := make([]int, 5)
	for index, raw := range match[1:] {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
		}
		fields[index] = value
	}

	ts := Timestamp{Hour: fields[0], Minute: fields[1], Day: fields[2], Month: fields[3], Year: fields[4]}
	if !ts.valid() {
		return Timestamp{}, fmt.Errorf("%w: %q out of range", ErrInvalidFormat, text)
	}

	return ts, nil
}

// valid checks field ranges only. Day is not checked against the month length.
func (ts Timestamp) valid() bool {
	return ts.Hour >= 0 && ts.Hour <= 23 &&
		ts.Minute >= 0 && ts.Minute <= 59 &&
		ts.Day >= 1 && ts.Day <= 31 &&
		ts.Month >= 1 && ts.Month <= 12 &&
		ts.Year >= 0
}

// # Ordering

// Compare returns -1, 0 or +1, ordering by (year, month, day, hour, minute).
func (ts Timestamp) Compare(other Timestamp) int {
	pairs := [5][2]int{
		{ts.Year, other.Year},
		{ts.Month, other.Month},
		{ts.Day, other.Day},
		{ts.Hour, other.Hour},
		{ts.Minute, other.Minute},
	}

	for _, pair := range pairs {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}
	return 0
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool { return ts.Compare(other) < 0 }

// After reports whether ts is strictly later than other.
func (ts Timestamp) After(other Timestamp) bool { return ts.Compare(other) > 0 }

// Equal reports whether both timestamps name the same minute.
func (ts Timestamp) Equal(other Timestamp) bool { return ts.Compare(other) == 0 }

// Expired reports whether the current time is strictly after ts.
func (ts Timestamp) Expired() bool {
	return Now(0).After(ts)
}

// # Encoding

// MarshalText renders the `HH:MM DD.MM.YYYY` form. JSON encodes it as a string.
func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.String()), nil
}

// UnmarshalText parses the `HH:MM DD.MM.YYYY` form.
func (ts *Timestamp) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// Value implements [driver.Valuer]. Timestamps are stored as text.
func (ts Timestamp) Value() (driver.Value, error) {
	return ts.String(), nil
}

// Scan implements the database/sql Scanner interface for text columns.
func (ts *Timestamp) Scan(src any) error {
	switch value := src.(type) {
	case string:
		return ts.UnmarshalText([]byte(value))
	case []byte:
		return ts.UnmarshalText(value)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidFormat, src)
	}
}
