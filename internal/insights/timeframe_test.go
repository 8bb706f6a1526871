package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

func TestWindowStart(t *testing.T) {
	// Wednesday.
	now := time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		tf   models.Timeframe
		want time.Time
	}{
		{"daily", models.TimeframeDaily, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)},
		{"weekly", models.TimeframeWeekly, time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)},
		{"monthly", models.TimeframeMonthly, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{"term", models.TimeframeTerm, time.Date(2024, time.February, 15, 14, 30, 0, 0, time.UTC)},
		{"unknown", models.Timeframe("fortnight"), time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WindowStart(tc.tf, now)
			assert.Equal(t, tc.want, got)
			assert.False(t, got.After(now))
		})
	}
}

func TestWindowStartWeekBoundaries(t *testing.T) {
	monday := time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)

	sunday := time.Date(2024, time.May, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, monday, WindowStart(models.TimeframeWeekly, sunday))

	mondayMorning := time.Date(2024, time.May, 13, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WindowStart(models.TimeframeWeekly, mondayMorning))
}

func TestWindowStartKeepsLocation(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2024, time.May, 15, 1, 0, 0, 0, loc)

	got := WindowStart(models.TimeframeDaily, now)
	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestRangeStart(t *testing.T) {
	now := time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC)

	start, bounded := RangeStart(models.TimeRangeYear, now)
	assert.True(t, bounded)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), start)

	start, bounded = RangeStart(models.TimeRangeWeek, now)
	assert.True(t, bounded)
	assert.Equal(t, time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC), start)

	_, bounded = RangeStart(models.TimeRangeAll, now)
	assert.False(t, bounded)
}
