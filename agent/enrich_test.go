package agent

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinnedEnricher(ref time.Time) *TimeEnricher {
	return NewTimeEnricher(fixedClock(ref), time.UTC)
}

func TestEnrich_RelativePhraseResolvesAgainstReference(t *testing.T) {
	e := pinnedEnricher(refInstant)
	params := ParamBag{"summary": "Standup", "start_time": "tomorrow at 9am"}

	require.NoError(t, e.EnrichCalendarTimes(params))

	start, err := time.Parse(time.RFC3339, params.String("start_time"))
	require.NoError(t, err)
	assert.Equal(t, refInstant.AddDate(0, 0, 1).Day(), start.Day())
	assert.Equal(t, 9, start.Hour())

	end, err := time.Parse(time.RFC3339, params.String("end_time"))
	require.NoError(t, err)
	assert.Equal(t, defaultEventDuration, end.Sub(start))
}

func TestEnrich_AbsoluteTimestampPassesThrough(t *testing.T) {
	e := pinnedEnricher(refInstant)
	params := ParamBag{"start_time": "2026-04-01T14:30:00Z", "end_time": "2026-04-01T15:00:00Z"}

	require.NoError(t, e.EnrichCalendarTimes(params))

	start, _ := time.Parse(time.RFC3339, params.String("start_time"))
	end, _ := time.Parse(time.RFC3339, params.String("end_time"))
	assert.Equal(t, time.Date(2026, 4, 1, 14, 30, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, 30*time.Minute, end.Sub(start), "an explicit end time is kept, not overwritten")
}

func TestEnrich_BareLocalFormatsAreAccepted(t *testing.T) {
	e := pinnedEnricher(refInstant)

	got, err := e.Resolve("2026-04-01 14:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 14, 30, 0, 0, time.UTC), got)

	got, err = e.Resolve("2026-04-01T14:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 14, 30, 0, 0, time.UTC), got)
}

func TestEnrich_MissingStartTime(t *testing.T) {
	e := pinnedEnricher(refInstant)
	err := e.EnrichCalendarTimes(ParamBag{"summary": "Standup"})

	var missing *MissingTimeError
	require.ErrorAs(t, err, &missing)
}

func TestEnrich_UnparseableInputFails(t *testing.T) {
	e := pinnedEnricher(refInstant)
	err := e.EnrichCalendarTimes(ParamBag{"start_time": "xyzzy o'clock"})

	var parseErr *DateParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "xyzzy o'clock", parseErr.Input)
}

func TestEnrich_InstantMeetingsAreLeftAlone(t *testing.T) {
	e := pinnedEnricher(refInstant)
	params := ParamBag{"summary": "Quick sync", "instant": true}

	require.NoError(t, e.EnrichCalendarTimes(params))
	assert.False(t, params.Has("start_time"), "instant meeting times are derived at execution")
}
