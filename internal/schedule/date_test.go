package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/pestcare-visits/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		name   string
		from   time.Time
		months int
		anchor int
		want   time.Time
	}{
		{"jan31 leap", day(2024, 1, 31), 1, 31, day(2024, 2, 29)},
		{"jan31 common", day(2023, 1, 31), 1, 31, day(2023, 2, 28)},
		{"anchor restored", day(2024, 1, 31), 2, 31, day(2024, 3, 31)},
		{"thirtieth into april", day(2024, 3, 30), 1, 30, day(2024, 4, 30)},
		{"year rollover", day(2024, 11, 30), 3, 30, day(2025, 2, 28)},
		{"mid month", day(2024, 5, 15), 12, 15, day(2025, 5, 15)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.from, tc.months, tc.anchor))
		})
	}
}

func TestDateCursorMonthlyStaysAnchored(t *testing.T) {
	cursor := NewDateCursor(day(2023, 1, 31), model.CadenceMonthly)

	var got []time.Time
	got = append(got, cursor.Current())
	for i := 0; i < 3; i++ {
		require.True(t, cursor.Advance())
		got = append(got, cursor.Current())
	}

	assert.Equal(t, []time.Time{
		day(2023, 1, 31),
		day(2023, 2, 28),
		day(2023, 3, 31),
		day(2023, 4, 30),
	}, got)
}

func TestDateCursorOneOffDoesNotAdvance(t *testing.T) {
	cursor := NewDateCursor(day(2024, 6, 1), model.CadenceOneOff)
	assert.False(t, cursor.Advance())
	assert.Equal(t, day(2024, 6, 1), cursor.Current())
}

func TestDateOnlyKeepsWallClockDay(t *testing.T) {
	dubai := time.FixedZone("GST", 4*60*60)
	late := time.Date(2024, 3, 10, 23, 30, 0, 0, dubai)

	assert.Equal(t, day(2024, 3, 10), DateOnly(late))
	assert.Equal(t, day(2024, 3, 10), Today(late.UTC(), dubai))
	assert.True(t, DateOnly(time.Time{}).IsZero())
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 29), got)
	assert.Equal(t, "2024-02-29", FormatDay(got))

	_, err = ParseDay("2023-02-29")
	assert.Error(t, err)
}
