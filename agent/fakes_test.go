package agent

import (
	"context"
	"time"
)

// callRecorder counts service-call invocations and hands out canned
// envelopes, so tests can assert that local validation failures never reach
// an external call.
type callRecorder struct {
	calls   map[string]int
	results map[string]ResultEnvelope
}

func newRecorder() *callRecorder {
	return &callRecorder{calls: make(map[string]int), results: make(map[string]ResultEnvelope)}
}

func (r *callRecorder) hit(name string) ResultEnvelope {
	r.calls[name]++
	if env, ok := r.results[name]; ok {
		return env
	}
	return Succeed(name+" ok", nil)
}

func (r *callRecorder) total() int {
	total := 0
	for _, n := range r.calls {
		total += n
	}
	return total
}

type fakeGmail struct{ rec *callRecorder }

func (f *fakeGmail) Send(_ context.Context, _ string, _ EmailMessage, approved bool) ResultEnvelope {
	if !approved {
		// Mirrors the real service's own guard.
		return Fail("Email send rejected: user approval required")
	}
	return f.rec.hit("gmail.send")
}
func (f *fakeGmail) Search(_ context.Context, _, _ string, _ int64) ResultEnvelope {
	return f.rec.hit("gmail.search")
}
func (f *fakeGmail) Read(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("gmail.read")
}
func (f *fakeGmail) ListUnread(_ context.Context, _ string, _ int64) ResultEnvelope {
	return f.rec.hit("gmail.listUnread")
}
func (f *fakeGmail) DownloadAttachment(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("gmail.attachment")
}

type fakeCalendar struct{ rec *callRecorder }

func (f *fakeCalendar) CreateEvent(_ context.Context, _ string, _ EventRequest) ResultEnvelope {
	return f.rec.hit("calendar.create")
}
func (f *fakeCalendar) CreateInstantMeeting(_ context.Context, _, _ string, _ []string) ResultEnvelope {
	return f.rec.hit("calendar.instant")
}
func (f *fakeCalendar) ListUpcoming(_ context.Context, _ string, _ int64) ResultEnvelope {
	return f.rec.hit("calendar.list")
}
func (f *fakeCalendar) DeleteEvent(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("calendar.delete")
}
func (f *fakeCalendar) UpdateEvent(_ context.Context, _ string, _ EventUpdate) ResultEnvelope {
	return f.rec.hit("calendar.update")
}
func (f *fakeCalendar) MeetLink(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("calendar.meetLink")
}

type fakeDrive struct{ rec *callRecorder }

func (f *fakeDrive) Search(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("drive.search")
}
func (f *fakeDrive) Recent(_ context.Context, _ string, _ int64) ResultEnvelope {
	return f.rec.hit("drive.recent")
}
func (f *fakeDrive) ShareLink(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("drive.shareLink")
}
func (f *fakeDrive) ListFolder(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("drive.listFolder")
}

type fakeDocs struct{ rec *callRecorder }

func (f *fakeDocs) Create(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("docs.create")
}
func (f *fakeDocs) Append(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("docs.append")
}
func (f *fakeDocs) Search(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("docs.search")
}

type fakeSheets struct{ rec *callRecorder }

func (f *fakeSheets) Create(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("sheets.create")
}
func (f *fakeSheets) AddRow(_ context.Context, _, _, _ string, _ []string) ResultEnvelope {
	return f.rec.hit("sheets.addRow")
}
func (f *fakeSheets) Read(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("sheets.read")
}
func (f *fakeSheets) Update(_ context.Context, _, _, _, _ string) ResultEnvelope {
	return f.rec.hit("sheets.update")
}

type fakeTasks struct{ rec *callRecorder }

func (f *fakeTasks) Create(_ context.Context, _, _, _, _, _ string) ResultEnvelope {
	return f.rec.hit("tasks.create")
}
func (f *fakeTasks) List(_ context.Context, _, _ string, _ int64) ResultEnvelope {
	return f.rec.hit("tasks.list")
}
func (f *fakeTasks) Complete(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("tasks.complete")
}
func (f *fakeTasks) Delete(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("tasks.delete")
}
func (f *fakeTasks) Update(_ context.Context, _ string, _ TaskUpdate) ResultEnvelope {
	return f.rec.hit("tasks.update")
}
func (f *fakeTasks) ListLists(_ context.Context, _ string) ResultEnvelope {
	return f.rec.hit("tasks.listLists")
}

type fakeContacts struct {
	rec       *callRecorder
	directory []Contact
	dirErr    error
}

func (f *fakeContacts) Search(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("contacts.search")
}
func (f *fakeContacts) List(_ context.Context, _ string, _ int64) ResultEnvelope {
	return f.rec.hit("contacts.list")
}
func (f *fakeContacts) Create(_ context.Context, _ string, _ Contact) ResultEnvelope {
	return f.rec.hit("contacts.create")
}
func (f *fakeContacts) EmailFor(_ context.Context, _, _ string) ResultEnvelope {
	return f.rec.hit("contacts.emailFor")
}
func (f *fakeContacts) Directory(_ context.Context, _ string, _ int64) ([]Contact, error) {
	f.rec.calls["contacts.directory"]++
	if f.dirErr != nil {
		return nil, f.dirErr
	}
	return f.directory, nil
}

type fakeKeep struct{ rec *callRecorder }

func (f *fakeKeep) CreateNote(_ context.Context, _, _, _ string) ResultEnvelope {
	return f.rec.hit("keep.createNote")
}
func (f *fakeKeep) ListNotes(_ context.Context, _ string, _ int64) ResultEnvelope {
	return f.rec.hit("keep.listNotes")
}

// testHarness bundles a fully wired pipeline over fakes.
type testHarness struct {
	rec        *callRecorder
	contacts   *fakeContacts
	log        *memLog
	registry   *Registry
	gate       *Gate
	dispatcher *Dispatcher
	processor  *Processor
}

func newHarness(ref time.Time) *testHarness {
	rec := newRecorder()
	contacts := &fakeContacts{rec: rec}
	services := Services{
		Gmail:    &fakeGmail{rec: rec},
		Calendar: &fakeCalendar{rec: rec},
		Drive:    &fakeDrive{rec: rec},
		Docs:     &fakeDocs{rec: rec},
		Sheets:   &fakeSheets{rec: rec},
		Tasks:    &fakeTasks{rec: rec},
		Contacts: contacts,
		Keep:     &fakeKeep{rec: rec},
	}

	log := &memLog{}
	registry := NewRegistry()
	RegisterCatalog(registry, services)

	resolver := NewRecipientResolver(contacts, log)
	gate := NewGate(registry, resolver, &fakeDrafter{draft: EmailDraft{Subject: "Hello", Body: "Hi there"}})
	dispatcher := NewDispatcher(registry, log, nil)
	enricher := NewTimeEnricher(fixedClock(ref), time.UTC)

	return &testHarness{
		rec:        rec,
		contacts:   contacts,
		log:        log,
		registry:   registry,
		gate:       gate,
		dispatcher: dispatcher,
		processor:  NewProcessor(registry, gate, dispatcher, enricher),
	}
}

// memLog collects execution log records in order.
type memLog struct {
	entries []memLogEntry
}

type memLogEntry struct {
	Actor   string
	Action  string
	Phase   Phase
	Payload map[string]any
}

func (l *memLog) Record(_ context.Context, actor, action string, phase Phase, payload map[string]any) {
	l.entries = append(l.entries, memLogEntry{Actor: actor, Action: action, Phase: phase, Payload: payload})
}

func (l *memLog) phases() []Phase {
	out := make([]Phase, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Phase)
	}
	return out
}

// fakeDrafter returns canned email content.
type fakeDrafter struct {
	draft EmailDraft
	err   error
}

func (f *fakeDrafter) DraftEmail(_ context.Context, _, _, _ string) (EmailDraft, error) {
	if f.err != nil {
		return EmailDraft{}, f.err
	}
	return f.draft, nil
}

// fixedClock pins the enricher's reference instant for deterministic tests.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// refInstant is the pinned "now" used across pipeline tests.
var refInstant = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
