// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package timestamp_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/pkg/timestamp"
)

/*
TestTimestamp_RoundTrip verifies that Parse is the inverse of String.
*/
func TestTimestamp_RoundTrip(t *testing.T) {
	values := []timestamp.Timestamp{
		{Hour: 0, Minute: 0, Day: 1, Month: 1, Year: 2000},
		{Hour: 23, Minute: 59, Day: 31, Month: 12, Year: 1999},
		{Hour: 7, Minute: 5, Day: 9, Month: 3, Year: 2026},
		{Hour: 12, Minute: 30, Day: 15, Month: 6, Year: 12345},
	}

	for _, value := range values {
		t.Run(value.String(), func(t *testing.T) {
			parsed, err := timestamp.Parse(value.String())
			require.NoError(t, err)
			assert.Equal(t, value, parsed)
		})
	}
}

/*
TestTimestamp_String checks zero padding of every field.
*/
func TestTimestamp_String(t *testing.T) {
	ts := timestamp.Timestamp{Hour: 7, Minute: 5, Day: 9, Month: 3, Year: 2026}
	assert.Equal(t, "07:05 09.03.2026", ts.String())
}

/*
TestTimestamp_ParseRejectsMalformed covers shape and range failures.
*/
func TestTimestamp_ParseRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"7:05 09.03.2026",
		"07:05 09.03.26",
		"07:05 09/03/2026",
		"07:05  09.03.2026",
		"24:00 01.01.2026",
		"12:60 01.01.2026",
		"12:00 00.01.2026",
		"12:00 01.13.2026",
		"12:00 01.01.2026 ",
		"aa:bb cc.dd.eeee",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := timestamp.Parse(input)
			assert.ErrorIs(t, err, timestamp.ErrInvalidFormat)
		})
	}
}

/*
TestTimestamp_Ordering verifies calendar order and strictness.
*/
func TestTimestamp_Ordering(t *testing.T) {
	base := timestamp.Timestamp{Hour: 10, Minute: 30, Day: 15, Month: 6, Year: 2026}

	later := []timestamp.Timestamp{
		{Hour: 10, Minute: 31, Day: 15, Month: 6, Year: 2026},
		{Hour: 11, Minute: 0, Day: 15, Month: 6, Year: 2026},
		{Hour: 0, Minute: 0, Day: 16, Month: 6, Year: 2026},
		{Hour: 0, Minute: 0, Day: 1, Month: 7, Year: 2026},
		{Hour: 0, Minute: 0, Day: 1, Month: 1, Year: 2027},
	}

	for _, other := range later {
		assert.True(t, base.Before(other), "%s before %s", base, other)
		assert.True(t, other.After(base), "%s after %s", other, base)
		assert.False(t, base.After(other))
		assert.False(t, base.Equal(other))
	}

	assert.True(t, base.Equal(base))
	assert.False(t, base.Before(base))
	assert.False(t, base.After(base))
}

/*
TestTimestamp_NowUsesClock verifies the delta arithmetic against a fixed clock.
*/
func TestTimestamp_NowUsesClock(t *testing.T) {
	fixed := time.Date(2026, time.December, 31, 23, 10, 42, 0, time.Local)
	t.Cleanup(timestamp.SetClock(func() time.Time { return fixed }))

	assert.Equal(t, timestamp.Timestamp{Hour: 23, Minute: 10, Day: 31, Month: 12, Year: 2026}, timestamp.Now(0))
	assert.Equal(t, timestamp.Timestamp{Hour: 1, Minute: 10, Day: 1, Month: 1, Year: 2027}, timestamp.Now(2))
	assert.Equal(t, timestamp.Timestamp{Hour: 21, Minute: 10, Day: 31, Month: 12, Year: 2026}, timestamp.Now(-2))

	assert.True(t, timestamp.Now(-1).Expired())
	assert.False(t, timestamp.Now(1).Expired())
	assert.False(t, timestamp.Now(0).Expired())
}

/*
TestTimestamp_Encoding covers the JSON and database representations.
*/
func TestTimestamp_Encoding(t *testing.T) {
	ts := timestamp.Timestamp{Hour: 9, Minute: 5, Day: 3, Month: 2, Year: 2026}

	// 1. JSON uses the text form
	encoded, err := json.Marshal(struct {
		Created timestamp.Timestamp `json:"created"`
	}{ts})
	require.NoError(t, err)
	assert.JSONEq(t, `{"created":"09:05 03.02.2026"}`, string(encoded))

	// 2. Database values are text in both directions
	value, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, "09:05 03.02.2026", value)

	var scanned timestamp.Timestamp
	require.NoError(t, scanned.Scan("09:05 03.02.2026"))
	assert.Equal(t, ts, scanned)
	require.NoError(t, scanned.Scan([]byte("10:00 01.01.2027")))
	assert.Equal(t, 2027, scanned.Year)

	assert.ErrorIs(t, scanned.Scan(int64(5)), timestamp.ErrInvalidFormat)
	assert.ErrorIs(t, scanned.Scan("garbage"), timestamp.ErrInvalidFormat)
}
