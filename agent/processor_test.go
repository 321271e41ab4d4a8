package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_UnauthenticatedCallerIsRejectedFirst(t *testing.T) {
	h := newHarness(refInstant)

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: ActionCalendarList,
		Params: ParamBag{},
	}, "")

	assert.Equal(t, ResponseError, resp.Type)
	assert.Equal(t, "User not logged in", resp.Response)
	assert.Zero(t, h.rec.total(), "no capability may be consulted for an unauthenticated caller")
	assert.Empty(t, h.log.entries, "nothing is dispatched, so nothing is logged")
}

func TestProcessor_ControlTagsShortCircuit(t *testing.T) {
	h := newHarness(refInstant)

	tests := []struct {
		name     string
		d        ActionDescriptor
		wantType ResponseType
		wantText string
	}{
		{
			name:     "planner error is echoed",
			d:        ActionDescriptor{Action: ActionError, Params: ParamBag{"message": "model unavailable"}},
			wantType: ResponseError,
			wantText: "model unavailable",
		},
		{
			name:     "ask user is echoed",
			d:        ActionDescriptor{Action: ActionAskUser, Params: ParamBag{"message": "Which Jan?"}},
			wantType: ResponseResult,
			wantText: "Which Jan?",
		},
		{
			name:     "small talk is echoed",
			d:        ActionDescriptor{Action: ActionSmallTalk, Params: ParamBag{"response": "Hi! How can I help?"}},
			wantType: ResponseResult,
			wantText: "Hi! How can I help?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.processor.Process(context.Background(), tt.d, "user@example.com")
			assert.Equal(t, tt.wantType, resp.Type)
			assert.Equal(t, tt.wantText, resp.Response)
		})
	}
	assert.Zero(t, h.rec.total(), "control tags never reach the dispatcher")
}

func TestProcessor_CalendarListExecutesImmediately(t *testing.T) {
	h := newHarness(refInstant)
	h.rec.results["calendar.list"] = Succeed("Found 5 upcoming events.", []Event{
		{Summary: "Standup", Start: "2026-03-15T09:00:00Z", MeetLink: "https://meet.google.com/aaa"},
		{Summary: "Design review", Start: "2026-03-15T11:00:00Z"},
		{Summary: "1:1", Start: "2026-03-16T09:00:00Z"},
		{Summary: "Planning", Start: "2026-03-16T13:00:00Z"},
		{Summary: "Retro", Start: "2026-03-17T15:00:00Z"},
	})

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: ActionCalendarList,
		Params: ParamBag{"max_results": float64(5)},
	}, "user@example.com")

	require.Equal(t, ResponseResult, resp.Type)
	for _, title := range []string{"Standup", "Design review", "1:1", "Planning", "Retro"} {
		assert.Contains(t, resp.Response, title)
	}
	assert.Equal(t, 1, h.rec.calls["calendar.list"])
}

func TestProcessor_CalendarCreateEnrichesAndStages(t *testing.T) {
	h := newHarness(refInstant)

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: ActionCalendarCreate,
		Params: ParamBag{"summary": "Standup", "start_time": "tomorrow 9am", "instant": false},
	}, "user@example.com")

	require.Equal(t, ResponseApproval, resp.Type)
	assert.Equal(t, ActionCalendarCreate, resp.Action)

	start, err := time.Parse(time.RFC3339, resp.Params.String("start_time"))
	require.NoError(t, err, "start_time must be an absolute timestamp after enrichment")
	assert.Equal(t, refInstant.Day()+1, start.Day())
	assert.Equal(t, 9, start.Hour())

	end, err := time.Parse(time.RFC3339, resp.Params.String("end_time"))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start), "default duration is one hour")

	assert.Zero(t, h.rec.total(), "staging must not execute anything")
}

func TestProcessor_CalendarCreateUnparseableDateFailsWholeRequest(t *testing.T) {
	h := newHarness(refInstant)

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: ActionCalendarCreate,
		Params: ParamBag{"summary": "Standup", "start_time": "xyzzy o'clock"},
	}, "user@example.com")

	assert.Equal(t, ResponseError, resp.Type)
	assert.Contains(t, resp.Response, "xyzzy o'clock")
	assert.Zero(t, h.rec.total())
}

func TestProcessor_UnknownActionIsTerminalError(t *testing.T) {
	h := newHarness(refInstant)

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: "BOGUS_TAG",
		Params: ParamBag{},
	}, "user@example.com")

	assert.Equal(t, ResponseError, resp.Type)
	assert.Contains(t, resp.Response, "BOGUS_TAG")
	assert.Zero(t, h.rec.total())

	// The attempt and its failure are both logged.
	require.Len(t, h.log.entries, 2)
	assert.Equal(t, "BOGUS_TAG", h.log.entries[0].Action)
	assert.Equal(t, PhaseFailed, h.log.entries[1].Phase)
}

func TestProcessor_ContactsSearchTruncatesToFive(t *testing.T) {
	h := newHarness(refInstant)
	many := make([]Contact, 8)
	names := []string{"Jan A", "Jan B", "Jan C", "Jan D", "Jan E", "Jan F", "Jan G", "Jan H"}
	for i, n := range names {
		many[i] = Contact{Name: n, Email: strings.ToLower(strings.ReplaceAll(n, " ", ".")) + "@x.com"}
	}
	h.rec.results["contacts.search"] = Succeed("Found 8 contacts.", many)

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: ActionContactsSearch,
		Params: ParamBag{"query": "Jan"},
	}, "user@example.com")

	require.Equal(t, ResponseResult, resp.Type)
	for _, n := range names[:5] {
		assert.Contains(t, resp.Response, n)
	}
	for _, n := range names[5:] {
		assert.NotContains(t, resp.Response, n, "contact search output is capped at five matches")
	}
}

func TestProcessor_MissingRequiredParamAsksForIt(t *testing.T) {
	h := newHarness(refInstant)

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: ActionDriveSearch,
		Params: ParamBag{},
	}, "user@example.com")

	assert.Equal(t, ResponseResult, resp.Type)
	assert.Contains(t, resp.Response, "query")
	assert.Zero(t, h.rec.total())
}

func TestProcessor_ApprovalRoundTrip(t *testing.T) {
	h := newHarness(refInstant)

	// Stage the send.
	preview := h.gate.BuildPreview(context.Background(), ActionDescriptor{
		Action: ActionGmailCompose,
		Params: ParamBag{"to": "jan@x.com", "instruction": "say hi"},
	}, "user@example.com")
	require.Equal(t, ResponseEmailPreview, preview.Type)

	// Resubmit the exact preview params through the confirmed-execute
	// entry point.
	resp := h.processor.Execute(context.Background(), preview.Action, preview.Params, "user@example.com")

	assert.Equal(t, ResponseResult, resp.Type)
	assert.Equal(t, 1, h.rec.calls["gmail.send"], "the approved resubmission performs exactly the previewed send")
}

func TestProcessor_ExecuteWithoutActorIsRejected(t *testing.T) {
	h := newHarness(refInstant)

	resp := h.processor.Execute(context.Background(), ActionGmailSend, ParamBag{
		"to": "a@b.com", "subject": "S", "body": "B",
	}, "")

	assert.Equal(t, ResponseError, resp.Type)
	assert.Zero(t, h.rec.total())
}

func TestProcessor_ExecuteFailureIsError(t *testing.T) {
	h := newHarness(refInstant)
	h.rec.results["calendar.delete"] = Fail("event not found")

	resp := h.processor.Execute(context.Background(), ActionCalendarDelete, ParamBag{"event_id": "e1"}, "user@example.com")

	assert.Equal(t, ResponseError, resp.Type)
	assert.Contains(t, resp.Response, "event not found")
}

func TestProcessor_StagedActionProducesSinglePreviewResponse(t *testing.T) {
	h := newHarness(refInstant)

	resp := h.processor.Process(context.Background(), ActionDescriptor{
		Action: ActionTasksCreate,
		Params: ParamBag{"title": "File expenses"},
	}, "user@example.com")

	require.Equal(t, ResponseApproval, resp.Type)
	assert.Equal(t, ActionTasksCreate, resp.Action)
	assert.Contains(t, resp.Message, "File expenses")
	assert.Equal(t, "File expenses", resp.Params.String("title"))
	assert.Zero(t, h.rec.total())
}
