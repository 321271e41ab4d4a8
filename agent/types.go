package agent

// Typed payloads carried in ResultEnvelope.Details. The workspace service
// implementations construct these; the processor's formatting rules consume
// them. Keeping them here lets the core be tested with fakes that never touch
// a Google API.

// Event is one calendar event.
type Event struct {
	ID        string   `json:"id"`
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end,omitempty"`
	MeetLink  string   `json:"meet_link,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// Contact is one address-book entry.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// DriveFile is one Drive search/list result.
type DriveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Link     string `json:"link,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// Task is one task list item.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Notes  string `json:"notes,omitempty"`
	Due    string `json:"due,omitempty"`
	Status string `json:"status,omitempty"`
}

// TaskList is one task list.
type TaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// EmailSummary is one message in a search or unread listing.
type EmailSummary struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet,omitempty"`
	Date    string `json:"date,omitempty"`
}

// EmailMessage is an outbound email.
type EmailMessage struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Note is one Keep-style note (stored as a Google Doc).
type Note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}

// SheetData is a rectangular cell range read from a spreadsheet.
type SheetData struct {
	Range string     `json:"range"`
	Rows  [][]string `json:"rows"`
}
