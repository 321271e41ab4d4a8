package agent

import "context"

// Action tags understood by the planner. The catalog below is the single
// place where a tag, its parameter contract, and its handler meet; adding an
// action means adding one entry here, never a new branch in the dispatcher.
const (
	ActionGmailSend          = "GMAIL_SEND"
	ActionGmailCompose       = "GMAIL_COMPOSE"
	ActionGmailSearch        = "GMAIL_SEARCH"
	ActionGmailRead          = "GMAIL_READ"
	ActionGmailListUnread    = "GMAIL_LIST_UNREAD"
	ActionGmailAttachment    = "GMAIL_DOWNLOAD_ATTACHMENT"
	ActionCalendarCreate     = "CALENDAR_CREATE"
	ActionCalendarList       = "CALENDAR_LIST"
	ActionCalendarDelete     = "CALENDAR_DELETE"
	ActionCalendarUpdate     = "CALENDAR_UPDATE"
	ActionCalendarMeetLink   = "CALENDAR_GET_MEET_LINK"
	ActionDriveSearch        = "DRIVE_SEARCH"
	ActionDriveRecent        = "DRIVE_RECENT"
	ActionDriveGetLink       = "DRIVE_GET_LINK"
	ActionDriveListFolder    = "DRIVE_LIST_FOLDER"
	ActionDocsCreate         = "DOCS_CREATE"
	ActionDocsAppend         = "DOCS_APPEND"
	ActionDocsSearch         = "DOCS_SEARCH"
	ActionSheetsCreate       = "SHEETS_CREATE"
	ActionSheetsAddRow       = "SHEETS_ADD_ROW"
	ActionSheetsRead         = "SHEETS_READ"
	ActionSheetsUpdate       = "SHEETS_UPDATE"
	ActionTasksCreate        = "TASKS_CREATE"
	ActionTasksList          = "TASKS_LIST"
	ActionTasksComplete      = "TASKS_COMPLETE"
	ActionTasksDelete        = "TASKS_DELETE"
	ActionTasksUpdate        = "TASKS_UPDATE"
	ActionTasksListLists     = "TASKS_LIST_LISTS"
	ActionContactsSearch     = "CONTACTS_SEARCH"
	ActionContactsList       = "CONTACTS_LIST"
	ActionContactsCreate     = "CONTACTS_CREATE"
	ActionContactsGetEmail   = "CONTACTS_GET_EMAIL"
	ActionKeepCreate         = "KEEP_CREATE"
	ActionKeepList           = "KEEP_LIST"
)

const defaultTaskList = "@default"

// RegisterCatalog populates the registry with every supported action bound
// to the given service bundle. It is called once at startup; a duplicate tag
// in the table below is a programming error and panics.
func RegisterCatalog(r *Registry, svc Services) {
	for _, desc := range catalog(svc) {
		r.MustRegister(desc)
	}
}

func catalog(svc Services) []CapabilityDescriptor {
	return []CapabilityDescriptor{
		// ---- Gmail ----
		{
			Name:              ActionGmailSend,
			Title:             "Email Sent",
			RequiredParams:    []string{"to", "subject", "body"},
			RequiresApproval:  true,
			NeedsApprovedFlag: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				msg := EmailMessage{
					To:      p.StringList("to"),
					Cc:      p.StringList("cc"),
					Bcc:     p.StringList("bcc"),
					Subject: p.String("subject"),
					Body:    p.String("body"),
				}
				return svc.Gmail.Send(ctx, actor, msg, p.Bool("approved"))
			},
		},
		{
			Name:             ActionGmailCompose,
			Title:            "Email Composed",
			RequiredParams:   []string{"to", "instruction"},
			RequiresApproval: true,
			Handler: func(_ context.Context, _ ParamBag, _ string) ResultEnvelope {
				// Compose only produces a preview; the send itself is
				// resubmitted as GMAIL_SEND once the user approves it.
				return Fail("email must be previewed first; resubmit the preview as %s", ActionGmailSend)
			},
		},
		{
			Name:           ActionGmailSearch,
			Title:          "Emails Searched",
			RequiredParams: []string{"query"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Gmail.Search(ctx, actor, p.String("query"), int64(p.Int("max_results", 10)))
			},
		},
		{
			Name:           ActionGmailRead,
			Title:          "Email Read",
			RequiredParams: []string{"message_id"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Gmail.Read(ctx, actor, p.String("message_id"))
			},
		},
		{
			Name:  ActionGmailListUnread,
			Title: "Unread Emails Retrieved",
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Gmail.ListUnread(ctx, actor, int64(p.Int("max_results", 10)))
			},
		},
		{
			Name:           ActionGmailAttachment,
			Title:          "Attachment Downloaded",
			RequiredParams: []string{"message_id", "attachment_id"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Gmail.DownloadAttachment(ctx, actor, p.String("message_id"), p.String("attachment_id"))
			},
		},

		// ---- Calendar ----
		{
			Name:             ActionCalendarCreate,
			Title:            "Calendar Event Created",
			RequiredParams:   []string{"summary"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				if p.Bool("instant") {
					return svc.Calendar.CreateInstantMeeting(ctx, actor, p.String("summary"), p.StringList("attendees"))
				}
				return svc.Calendar.CreateEvent(ctx, actor, EventRequest{
					Summary:     p.String("summary"),
					Description: p.String("description"),
					Start:       p.String("start_time"),
					End:         p.String("end_time"),
					Attendees:   p.StringList("attendees"),
				})
			},
		},
		{
			Name:  ActionCalendarList,
			Title: "Upcoming Events Retrieved",
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Calendar.ListUpcoming(ctx, actor, int64(p.Int("max_results", 10)))
			},
		},
		{
			Name:             ActionCalendarDelete,
			Title:            "Calendar Event Deleted",
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Calendar.DeleteEvent(ctx, actor, p.String("event_id"), p.String("summary"))
			},
		},
		{
			Name:             ActionCalendarUpdate,
			Title:            "Calendar Event Updated",
			RequiredParams:   []string{"event_id"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Calendar.UpdateEvent(ctx, actor, EventUpdate{
					EventID:     p.String("event_id"),
					Summary:     p.String("summary"),
					Description: p.String("description"),
					Start:       p.String("start_time"),
					End:         p.String("end_time"),
					Attendees:   p.StringList("attendees"),
				})
			},
		},
		{
			Name:  ActionCalendarMeetLink,
			Title: "Meet Link Retrieved",
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Calendar.MeetLink(ctx, actor, p.String("event_id"), p.String("summary_search"))
			},
		},

		// ---- Drive ----
		{
			Name:           ActionDriveSearch,
			Title:          "Drive Search Performed",
			RequiredParams: []string{"query"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Drive.Search(ctx, actor, p.String("query"))
			},
		},
		{
			Name:  ActionDriveRecent,
			Title: "Recent Files Retrieved",
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Drive.Recent(ctx, actor, int64(p.Int("limit", 10)))
			},
		},
		{
			Name:           ActionDriveGetLink,
			Title:          "Share Link Retrieved",
			RequiredParams: []string{"file_id"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Drive.ShareLink(ctx, actor, p.String("file_id"))
			},
		},
		{
			Name:           ActionDriveListFolder,
			Title:          "Folder Listed",
			RequiredParams: []string{"folder_name"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Drive.ListFolder(ctx, actor, p.String("folder_name"))
			},
		},

		// ---- Docs ----
		{
			Name:             ActionDocsCreate,
			Title:            "Document Created",
			RequiredParams:   []string{"title"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Docs.Create(ctx, actor, p.String("title"), p.String("content"))
			},
		},
		{
			Name:             ActionDocsAppend,
			Title:            "Document Updated",
			RequiredParams:   []string{"doc_id", "content"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Docs.Append(ctx, actor, p.String("doc_id"), p.String("content"))
			},
		},
		{
			Name:           ActionDocsSearch,
			Title:          "Documents Searched",
			RequiredParams: []string{"query"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Docs.Search(ctx, actor, p.String("query"))
			},
		},

		// ---- Sheets ----
		{
			Name:             ActionSheetsCreate,
			Title:            "Spreadsheet Created",
			RequiredParams:   []string{"title"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Sheets.Create(ctx, actor, p.String("title"))
			},
		},
		{
			Name:             ActionSheetsAddRow,
			Title:            "Row Added",
			RequiredParams:   []string{"sheet_id", "values"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				rangeName := p.String("range")
				if rangeName == "" {
					rangeName = "Sheet1!A1"
				}
				return svc.Sheets.AddRow(ctx, actor, p.String("sheet_id"), rangeName, p.StringList("values"))
			},
		},
		{
			Name:           ActionSheetsRead,
			Title:          "Sheet Data Read",
			RequiredParams: []string{"sheet_id"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				rangeName := p.String("range")
				if rangeName == "" {
					rangeName = "Sheet1"
				}
				return svc.Sheets.Read(ctx, actor, p.String("sheet_id"), rangeName)
			},
		},
		{
			Name:             ActionSheetsUpdate,
			Title:            "Cell Updated",
			RequiredParams:   []string{"sheet_id", "range", "value"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Sheets.Update(ctx, actor, p.String("sheet_id"), p.String("range"), p.String("value"))
			},
		},

		// ---- Tasks ----
		{
			Name:             ActionTasksCreate,
			Title:            "Task Created",
			RequiredParams:   []string{"title"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Tasks.Create(ctx, actor, p.String("title"), p.String("notes"), p.String("due_date"), taskList(p))
			},
		},
		{
			Name:  ActionTasksList,
			Title: "Tasks Retrieved",
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Tasks.List(ctx, actor, taskList(p), int64(p.Int("max_results", 10)))
			},
		},
		{
			Name:             ActionTasksComplete,
			Title:            "Task Completed",
			RequiredParams:   []string{"task_id"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Tasks.Complete(ctx, actor, p.String("task_id"), taskList(p))
			},
		},
		{
			Name:             ActionTasksDelete,
			Title:            "Task Deleted",
			RequiredParams:   []string{"task_id"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Tasks.Delete(ctx, actor, p.String("task_id"), taskList(p))
			},
		},
		{
			Name:             ActionTasksUpdate,
			Title:            "Task Updated",
			RequiredParams:   []string{"task_id"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Tasks.Update(ctx, actor, TaskUpdate{
					TaskID:     p.String("task_id"),
					TaskListID: taskList(p),
					Title:      p.String("title"),
					Notes:      p.String("notes"),
					Due:        p.String("due_date"),
				})
			},
		},
		{
			Name:  ActionTasksListLists,
			Title: "Task Lists Retrieved",
			Handler: func(ctx context.Context, _ ParamBag, actor string) ResultEnvelope {
				return svc.Tasks.ListLists(ctx, actor)
			},
		},

		// ---- Contacts ----
		{
			Name:           ActionContactsSearch,
			Title:          "Contacts Searched",
			RequiredParams: []string{"query"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Contacts.Search(ctx, actor, p.String("query"))
			},
		},
		{
			Name:  ActionContactsList,
			Title: "Contacts Retrieved",
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Contacts.List(ctx, actor, int64(p.Int("max_results", 20)))
			},
		},
		{
			Name:             ActionContactsCreate,
			Title:            "Contact Created",
			RequiredParams:   []string{"name", "email"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Contacts.Create(ctx, actor, Contact{
					Name:  p.String("name"),
					Email: p.String("email"),
					Phone: p.String("phone"),
				})
			},
		},
		{
			Name:           ActionContactsGetEmail,
			Title:          "Contact Email Retrieved",
			RequiredParams: []string{"name"},
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Contacts.EmailFor(ctx, actor, p.String("name"))
			},
		},

		// ---- Keep ----
		{
			Name:             ActionKeepCreate,
			Title:            "Note Created",
			RequiredParams:   []string{"title"},
			RequiresApproval: true,
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Keep.CreateNote(ctx, actor, p.String("title"), p.String("content"))
			},
		},
		{
			Name:  ActionKeepList,
			Title: "Notes Retrieved",
			Handler: func(ctx context.Context, p ParamBag, actor string) ResultEnvelope {
				return svc.Keep.ListNotes(ctx, actor, int64(p.Int("max_results", 10)))
			},
		},
	}
}

func taskList(p ParamBag) string {
	if id := p.String("tasklist_id"); id != "" {
		return id
	}
	return defaultTaskList
}
