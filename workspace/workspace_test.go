package workspace

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/people/v1"

	"github.com/vocalagent/vocalagent/agent"
)

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME(agent.EmailMessage{
		To:      []string{"jan@x.com", "ola@y.org"},
		Cc:      []string{"boss@x.com"},
		Subject: "Lunch",
		Body:    "Are you free?",
	}))

	assert.Contains(t, raw, "To: jan@x.com, ola@y.org\r\n")
	assert.Contains(t, raw, "Cc: boss@x.com\r\n")
	assert.NotContains(t, raw, "Bcc:")
	assert.Contains(t, raw, "Subject: Lunch\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\nAre you free?"), "body follows the blank line")

	headers, _, found := strings.Cut(raw, "\r\n\r\n")
	assert.True(t, found, "headers and body are separated by an empty line")
	assert.Contains(t, headers, "Content-Type: text/plain")
}

func TestExtractPlainText(t *testing.T) {
	text := base64.URLEncoding.EncodeToString([]byte("hello there"))
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: "ignored"}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: text}},
		},
	}
	assert.Equal(t, "hello there", extractPlainText(payload))
	assert.Equal(t, "", extractPlainText(nil))
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `it\'s a file`, escapeQuery(`it's a file`))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
	assert.Equal(t, "plain", escapeQuery("plain"))
}

func TestToEvent_FallsBackToAllDayDate(t *testing.T) {
	e := toEvent(&calendar.Event{
		Id:      "e1",
		Summary: "Conference",
		Start:   &calendar.EventDateTime{Date: "2026-04-01"},
		End:     &calendar.EventDateTime{Date: "2026-04-02"},
		Attendees: []*calendar.EventAttendee{
			{Email: "jan@x.com"},
		},
	})
	assert.Equal(t, "2026-04-01", e.Start)
	assert.Equal(t, "2026-04-02", e.End)
	assert.Equal(t, []string{"jan@x.com"}, e.Attendees)
}

func TestToContact(t *testing.T) {
	c := toContact(&people.Person{
		Names:          []*people.Name{{DisplayName: "Jan Kowalski"}},
		EmailAddresses: []*people.EmailAddress{{Value: "jan@x.com"}},
		PhoneNumbers:   []*people.PhoneNumber{{Value: "+48 123"}},
	})
	assert.Equal(t, agent.Contact{Name: "Jan Kowalski", Email: "jan@x.com", Phone: "+48 123"}, c)
	assert.Equal(t, agent.Contact{}, toContact(nil))
}
