package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInstant(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	in := time.Date(2026, 3, 15, 9, 30, 45, 123456789, loc)

	assert.Equal(t, "2026-03-15T14:30:45Z", FormatInstant(in))
}

func TestSeriesRange(t *testing.T) {
	dim := TimeDimension{
		Start: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		Step:  10 * time.Minute,
	}

	got := dim.Series(4)

	require.Len(t, got, 4)
	assert.Equal(t, time.Date(2026, 3, 15, 11, 30, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), got[3])
	assert.True(t, got[0].Before(got[1]), "series must be oldest first")
}

func TestSeriesRangeShorterThanRequested(t *testing.T) {
	dim := TimeDimension{
		Start: time.Date(2026, 3, 15, 11, 45, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		Step:  10 * time.Minute,
	}

	got := dim.Series(12)

	// Only 11:50 and 12:00 fall inside [start, end] walking back from end.
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2026, 3, 15, 11, 50, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), got[1])
}

func TestSeriesDiscrete(t *testing.T) {
	instants := []time.Time{
		time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 11, 20, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 11, 40, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	dim := TimeDimension{Discrete: instants}

	got := dim.Series(2)

	require.Len(t, got, 2)
	assert.Equal(t, instants[2], got[0], "discrete form keeps the most recent instants")
	assert.Equal(t, instants[3], got[1])

	assert.Len(t, dim.Series(10), 4, "asking for more than available returns all")
}

func TestSeriesEmptyDimension(t *testing.T) {
	assert.Nil(t, TimeDimension{}.Series(12))
	assert.Nil(t, TimeDimension{Step: 10 * time.Minute}.Series(0))
}

func TestSynthesizeSeries(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 42, 999, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	got := SynthesizeSeries(3, 10*time.Minute)

	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2026, 3, 15, 11, 40, 42, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2026, 3, 15, 11, 50, 42, 0, time.UTC), got[1])
	assert.Equal(t, time.Date(2026, 3, 15, 12, 0, 42, 0, time.UTC), got[2], "ends at now truncated to seconds")
}

func TestSynthesizeSeriesZeroCount(t *testing.T) {
	assert.Nil(t, SynthesizeSeries(0, 10*time.Minute))
}
