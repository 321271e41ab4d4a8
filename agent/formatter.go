package agent

import (
	"fmt"
	"strings"
)

// contactsDisplayCap limits contact search output for readability; other
// listings show everything the provider returned.
const contactsDisplayCap = 5

// formatResult turns a dispatch envelope into the caller-facing RESULT
// response, applying the per-action list formatting rules.
func formatResult(action string, env ResultEnvelope) Response {
	if !env.Success {
		return ResultResponse(env.Message)
	}

	var b strings.Builder
	b.WriteString(env.Message)

	switch details := env.Details.(type) {
	case []Event:
		for _, ev := range details {
			fmt.Fprintf(&b, "\n\n%s\nTime: %s\nMeet Link: %s", ev.Summary, ev.Start, orNone(ev.MeetLink, "No Meet link"))
		}
	case []Contact:
		shown := details
		if action == ActionContactsSearch && len(shown) > contactsDisplayCap {
			shown = shown[:contactsDisplayCap]
		}
		for _, c := range shown {
			fmt.Fprintf(&b, "\n\n%s\nEmail: %s\nPhone: %s", orNone(c.Name, "Unknown"), orNone(c.Email, "No email"), orNone(c.Phone, "No phone"))
		}
	case []DriveFile:
		for _, f := range details {
			fmt.Fprintf(&b, "\n\n%s\n%s", orNone(f.Name, "Unnamed"), f.Link)
		}
	case []Task:
		for _, task := range details {
			fmt.Fprintf(&b, "\n\n%s", task.Title)
			if task.Due != "" {
				fmt.Fprintf(&b, "\nDue: %s", task.Due)
			}
			if task.Status != "" {
				fmt.Fprintf(&b, "\nStatus: %s", task.Status)
			}
		}
	case []TaskList:
		for _, list := range details {
			fmt.Fprintf(&b, "\n- %s", list.Title)
		}
	case []EmailSummary:
		for _, msg := range details {
			fmt.Fprintf(&b, "\n\nFrom: %s\nSubject: %s", msg.From, orNone(msg.Subject, "(no subject)"))
			if msg.Snippet != "" {
				fmt.Fprintf(&b, "\n%s", msg.Snippet)
			}
		}
	case []Note:
		for _, n := range details {
			fmt.Fprintf(&b, "\n\n%s\n%s", n.Title, n.Link)
		}
	case SheetData:
		for _, row := range details.Rows {
			fmt.Fprintf(&b, "\n%s", strings.Join(row, " | "))
		}
	}

	return ResultResponse(b.String())
}

func orNone(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
