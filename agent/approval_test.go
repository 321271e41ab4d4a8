package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_ReadOnlyActionsExecuteNow(t *testing.T) {
	h := newHarness(refInstant)

	readOnly := map[string]ParamBag{
		ActionGmailSearch:      {"query": "invoices"},
		ActionGmailRead:        {"message_id": "m1"},
		ActionGmailListUnread:  {},
		ActionCalendarList:     {},
		ActionCalendarMeetLink: {},
		ActionDriveSearch:      {"query": "report"},
		ActionDriveRecent:      {},
		ActionDriveGetLink:     {"file_id": "f1"},
		ActionDriveListFolder:  {"folder_name": "Invoices"},
		ActionDocsSearch:       {"query": "notes"},
		ActionSheetsRead:       {"sheet_id": "s1"},
		ActionTasksList:        {},
		ActionTasksListLists:   {},
		ActionContactsSearch:   {"query": "Jan"},
		ActionContactsList:     {},
		ActionContactsGetEmail: {"name": "Jan"},
		ActionKeepList:         {},
	}
	for action, params := range readOnly {
		got := h.gate.Classify(ActionDescriptor{Action: action, Params: params})
		assert.Equal(t, ExecuteNow, got, "%s is a pure read", action)
	}
}

func TestGate_SideEffectingActionsNeedApproval(t *testing.T) {
	h := newHarness(refInstant)

	staged := map[string]ParamBag{
		ActionGmailSend:      {"to": "a@b.com", "subject": "S", "body": "B"},
		ActionGmailCompose:   {"to": "Jan", "instruction": "say hi"},
		ActionCalendarCreate: {"summary": "Standup"},
		ActionCalendarDelete: {"event_id": "e1"},
		ActionCalendarUpdate: {"event_id": "e1"},
		ActionContactsCreate: {"name": "Jan", "email": "jan@x.com"},
		ActionTasksCreate:    {"title": "Report"},
		ActionTasksComplete:  {"task_id": "t1"},
		ActionTasksDelete:    {"task_id": "t1"},
		ActionTasksUpdate:    {"task_id": "t1"},
		ActionSheetsCreate:   {"title": "Budget"},
		ActionSheetsAddRow:   {"sheet_id": "s1", "values": []string{"a"}},
		ActionSheetsUpdate:   {"sheet_id": "s1", "range": "A1", "value": "x"},
		ActionDocsCreate:     {"title": "Notes"},
		ActionDocsAppend:     {"doc_id": "d1", "content": "more"},
		ActionKeepCreate:     {"title": "Groceries"},
	}
	for action, params := range staged {
		got := h.gate.Classify(ActionDescriptor{Action: action, Params: params})
		assert.Equal(t, NeedsApproval, got, "%s has irreversible effects", action)
	}
}

func TestGate_ClassifyNeedsClarification(t *testing.T) {
	h := newHarness(refInstant)

	assert.Equal(t, NeedsClarification,
		h.gate.Classify(ActionDescriptor{Action: ActionAskUser, Params: ParamBag{"message": "which one?"}}))

	// Required parameter missing.
	assert.Equal(t, NeedsClarification,
		h.gate.Classify(ActionDescriptor{Action: ActionGmailSearch, Params: ParamBag{}}))
	assert.Equal(t, NeedsClarification,
		h.gate.Classify(ActionDescriptor{Action: ActionGmailSend, Params: ParamBag{"to": "a@b.com"}}))
}

func TestGate_PreviewParamsRoundTripAndAreIdempotent(t *testing.T) {
	h := newHarness(refInstant)

	d := ActionDescriptor{
		Action: ActionCalendarCreate,
		Params: ParamBag{
			"summary":    "Standup",
			"start_time": "2026-03-15T09:00:00Z",
			"end_time":   "2026-03-15T10:00:00Z",
			"attendees":  []string{"jan@x.com"},
			"instant":    false,
		},
	}

	first := h.gate.BuildPreview(context.Background(), d, "user@example.com")
	second := h.gate.BuildPreview(context.Background(), d, "user@example.com")

	require.Equal(t, ResponseApproval, first.Type)
	assert.Equal(t, ActionCalendarCreate, first.Action)
	assert.Contains(t, first.Message, "Standup")
	assert.Contains(t, first.Message, "2026-03-15T09:00:00Z")

	firstJSON, err := json.Marshal(first.Params)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second.Params)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON), "repeated previews must be byte-identical")

	assert.Zero(t, h.rec.total(), "building a preview must not touch any external system")
}

func TestGate_InstantMeetingPreview(t *testing.T) {
	h := newHarness(refInstant)

	d := ActionDescriptor{
		Action: ActionCalendarCreate,
		Params: ParamBag{"summary": "Quick sync", "instant": true},
	}
	resp := h.gate.BuildPreview(context.Background(), d, "user@example.com")

	assert.Equal(t, ResponseApproval, resp.Type)
	assert.Contains(t, resp.Message, "instant meeting")
	assert.Contains(t, resp.Message, "Quick sync")
	assert.True(t, resp.Params.Bool("instant"))
}

func TestGate_EmailPreviewWithExplicitAddress(t *testing.T) {
	h := newHarness(refInstant)

	d := ActionDescriptor{
		Action: ActionGmailCompose,
		Params: ParamBag{"to": "jan@x.com", "instruction": "tell Jan the report is ready"},
	}
	resp := h.gate.BuildPreview(context.Background(), d, "user@example.com")

	require.Equal(t, ResponseEmailPreview, resp.Type)
	assert.Equal(t, ActionGmailSend, resp.Action, "preview resubmits as a send")
	assert.Equal(t, []string{"jan@x.com"}, resp.Params.StringList("to"))
	assert.Equal(t, "Hello", resp.Params.String("subject"))
	assert.Equal(t, "Hi there", resp.Params.String("body"))
}

func TestGate_EmailPreviewSurfacesAmbiguity(t *testing.T) {
	h := newHarness(refInstant)
	h.contacts.directory = []Contact{
		{Name: "Jan Kowalski", Email: "jan.k@x.com"},
		{Name: "Jan Nowak", Email: "jan.n@x.com"},
		{Name: "Janina Wisniewska", Email: "janina@x.com"},
	}

	d := ActionDescriptor{
		Action: ActionGmailCompose,
		Params: ParamBag{"to": "Jan", "instruction": "say hi"},
	}
	resp := h.gate.BuildPreview(context.Background(), d, "user@example.com")

	assert.Equal(t, ResponseResult, resp.Type, "ambiguity yields a clarification, not a firm preview")
	assert.Contains(t, resp.Response, "multiple possible matches")
	assert.NotEmpty(t, resp.Candidates)
	assert.Zero(t, h.rec.calls["gmail.send"])
}
