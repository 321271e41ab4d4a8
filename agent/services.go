package agent

import "context"

// The ServiceCall family. One narrow interface per Workspace provider; the
// real implementations live in the workspace package, tests plug in fakes.
// Every method resolves its own failures into the envelope and never panics
// across the boundary (the dispatcher still guards against violations).

// GmailService covers mail operations.
type GmailService interface {
	// Send delivers an email. It must refuse with a failed envelope unless
	// approved is true, independently of any upstream approval check.
	Send(ctx context.Context, actor string, msg EmailMessage, approved bool) ResultEnvelope
	Search(ctx context.Context, actor, query string, max int64) ResultEnvelope
	Read(ctx context.Context, actor, messageID string) ResultEnvelope
	ListUnread(ctx context.Context, actor string, max int64) ResultEnvelope
	DownloadAttachment(ctx context.Context, actor, messageID, attachmentID string) ResultEnvelope
}

// EventRequest is the input for a scheduled calendar event.
type EventRequest struct {
	Summary     string
	Description string
	Start       string
	End         string
	Attendees   []string
}

// EventUpdate is a partial update of an existing event. Empty fields are
// left untouched.
type EventUpdate struct {
	EventID     string
	Summary     string
	Description string
	Start       string
	End         string
	Attendees   []string
}

// CalendarService covers calendar operations.
type CalendarService interface {
	CreateEvent(ctx context.Context, actor string, req EventRequest) ResultEnvelope
	CreateInstantMeeting(ctx context.Context, actor, title string, attendees []string) ResultEnvelope
	ListUpcoming(ctx context.Context, actor string, max int64) ResultEnvelope
	DeleteEvent(ctx context.Context, actor, eventID, summary string) ResultEnvelope
	UpdateEvent(ctx context.Context, actor string, upd EventUpdate) ResultEnvelope
	MeetLink(ctx context.Context, actor, eventID, summarySearch string) ResultEnvelope
}

// DriveService covers file search and sharing.
type DriveService interface {
	Search(ctx context.Context, actor, query string) ResultEnvelope
	Recent(ctx context.Context, actor string, limit int64) ResultEnvelope
	ShareLink(ctx context.Context, actor, fileID string) ResultEnvelope
	ListFolder(ctx context.Context, actor, folderName string) ResultEnvelope
}

// DocsService covers document operations.
type DocsService interface {
	Create(ctx context.Context, actor, title, content string) ResultEnvelope
	Append(ctx context.Context, actor, docID, content string) ResultEnvelope
	Search(ctx context.Context, actor, query string) ResultEnvelope
}

// SheetsService covers spreadsheet operations.
type SheetsService interface {
	Create(ctx context.Context, actor, title string) ResultEnvelope
	AddRow(ctx context.Context, actor, sheetID, rangeName string, values []string) ResultEnvelope
	Read(ctx context.Context, actor, sheetID, rangeName string) ResultEnvelope
	Update(ctx context.Context, actor, sheetID, rangeName, value string) ResultEnvelope
}

// TaskUpdate is a partial update of an existing task.
type TaskUpdate struct {
	TaskID     string
	TaskListID string
	Title      string
	Notes      string
	Due        string
}

// TasksService covers task operations.
type TasksService interface {
	Create(ctx context.Context, actor, title, notes, due, listID string) ResultEnvelope
	List(ctx context.Context, actor, listID string, max int64) ResultEnvelope
	Complete(ctx context.Context, actor, taskID, listID string) ResultEnvelope
	Delete(ctx context.Context, actor, taskID, listID string) ResultEnvelope
	Update(ctx context.Context, actor string, upd TaskUpdate) ResultEnvelope
	ListLists(ctx context.Context, actor string) ResultEnvelope
}

// ContactsService covers address-book operations. Directory is the raw
// listing used by recipient resolution; everything else returns envelopes.
type ContactsService interface {
	Search(ctx context.Context, actor, query string) ResultEnvelope
	List(ctx context.Context, actor string, max int64) ResultEnvelope
	Create(ctx context.Context, actor string, c Contact) ResultEnvelope
	EmailFor(ctx context.Context, actor, nameQuery string) ResultEnvelope
	Directory(ctx context.Context, actor string, max int64) ([]Contact, error)
}

// KeepService covers note operations (notes are stored as Google Docs in a
// dedicated folder).
type KeepService interface {
	CreateNote(ctx context.Context, actor, title, content string) ResultEnvelope
	ListNotes(ctx context.Context, actor string, max int64) ResultEnvelope
}

// Services bundles the full ServiceCall family for catalog registration.
type Services struct {
	Gmail    GmailService
	Calendar CalendarService
	Drive    DriveService
	Docs     DocsService
	Sheets   SheetsService
	Tasks    TasksService
	Contacts ContactsService
	Keep     KeepService
}
