package agent

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const defaultEventDuration = time.Hour

// DateParseError reports natural-language time input that could not be
// resolved to an absolute timestamp. It fails the whole calendar request
// before any preview is shown.
type DateParseError struct {
	Input string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("could not resolve %q to a date and time", e.Input)
}

// MissingTimeError reports a calendar request without any usable start time.
type MissingTimeError struct{}

func (*MissingTimeError) Error() string {
	return "no start time was provided"
}

// TimeEnricher normalizes planner-provided time strings into absolute
// timestamps. The reference instant and timezone are explicit so tests can
// pin "now"; nothing here reads a global clock.
type TimeEnricher struct {
	parser *when.Parser
	now    func() time.Time
	loc    *time.Location
}

// NewTimeEnricher builds an enricher anchored at the given clock and
// reference timezone.
func NewTimeEnricher(now func() time.Time, loc *time.Location) *TimeEnricher {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeEnricher{parser: w, now: now, loc: loc}
}

// EnrichCalendarTimes rewrites start_time/end_time in params to RFC 3339.
// A relative phrase ("tomorrow 9am") is resolved against the reference
// instant; a missing end time defaults to start plus one hour. Instant
// meetings are left alone, their times are derived at execution. The bag is
// mutated in place, so callers enrich a clone when the original must stay
// untouched.
func (e *TimeEnricher) EnrichCalendarTimes(params ParamBag) error {
	if params.Bool("instant") {
		return nil
	}

	startText := params.String("start_time")
	if startText == "" {
		return &MissingTimeError{}
	}
	start, err := e.Resolve(startText)
	if err != nil {
		return err
	}
	params["start_time"] = start.Format(time.RFC3339)

	endText := params.String("end_time")
	if endText == "" {
		params["end_time"] = start.Add(defaultEventDuration).Format(time.RFC3339)
		return nil
	}
	end, err := e.Resolve(endText)
	if err != nil {
		return err
	}
	params["end_time"] = end.Format(time.RFC3339)
	return nil
}

// Resolve turns a single time string into an absolute time. Already-absolute
// timestamps pass through unchanged in meaning.
func (e *TimeEnricher) Resolve(input string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", input, e.loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", input, e.loc); err == nil {
		return t, nil
	}

	ref := e.now().In(e.loc)
	result, err := e.parser.Parse(input, ref)
	if err != nil || result == nil {
		return time.Time{}, &DateParseError{Input: input}
	}
	return result.Time, nil
}
