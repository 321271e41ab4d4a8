package workspace

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vocalagent/vocalagent/agent"
)

// GmailClient implements agent.GmailService.
type GmailClient struct {
	factory ClientFactory
}

func (g *GmailClient) service(ctx context.Context, actor string) (*gmail.Service, error) {
	httpClient, err := g.factory.HTTPClient(ctx, actor)
	if err != nil {
		return nil, err
	}
	return gmail.NewService(ctx, option.WithHTTPClient(httpClient))
}

// Send delivers an email as the actor. The approved guard is enforced here
// again, independently of the dispatcher: this method is the last point
// before the wire, and it never trusts its callers.
func (g *GmailClient) Send(ctx context.Context, actor string, msg agent.EmailMessage, approved bool) agent.ResultEnvelope {
	if !approved {
		return agent.Fail("Email send rejected: user approval required")
	}
	if len(msg.To) == 0 {
		return agent.Fail("Email has no recipient")
	}

	srv, err := g.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	raw := base64.URLEncoding.EncodeToString(buildMIME(msg))
	if _, err := srv.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return apiFail("send the email", err)
	}
	return agent.Succeed(fmt.Sprintf("Email sent to %s.", strings.Join(msg.To, ", ")), nil)
}

func (g *GmailClient) Search(ctx context.Context, actor, query string, max int64) agent.ResultEnvelope {
	srv, err := g.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	return g.listMessages(ctx, srv, query, max, fmt.Sprintf("Found %%d emails matching %q.", query))
}

func (g *GmailClient) ListUnread(ctx context.Context, actor string, max int64) agent.ResultEnvelope {
	srv, err := g.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	return g.listMessages(ctx, srv, "is:unread in:inbox", max, "You have %d unread emails.")
}

func (g *GmailClient) listMessages(ctx context.Context, srv *gmail.Service, query string, max int64, messageFormat string) agent.ResultEnvelope {
	if max <= 0 {
		max = 10
	}
	list, err := srv.Users.Messages.List("me").Q(query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return apiFail("search your emails", err)
	}
	if len(list.Messages) == 0 {
		return agent.Succeed("No emails found.", []agent.EmailSummary{})
	}

	summaries := make([]agent.EmailSummary, 0, len(list.Messages))
	for _, m := range list.Messages {
		full, err := srv.Users.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			continue
		}
		s := agent.EmailSummary{ID: m.Id, Snippet: full.Snippet}
		for _, h := range full.Payload.Headers {
			switch h.Name {
			case "From":
				s.From = h.Value
			case "Subject":
				s.Subject = h.Value
			case "Date":
				s.Date = h.Value
			}
		}
		summaries = append(summaries, s)
	}
	return agent.Succeed(fmt.Sprintf(messageFormat, len(summaries)), summaries)
}

func (g *GmailClient) Read(ctx context.Context, actor, messageID string) agent.ResultEnvelope {
	srv, err := g.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	msg, err := srv.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return apiFail("read the email", err)
	}

	summary := agent.EmailSummary{ID: msg.Id, Snippet: msg.Snippet}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			summary.From = h.Value
		case "Subject":
			summary.Subject = h.Value
		case "Date":
			summary.Date = h.Value
		}
	}
	body := extractPlainText(msg.Payload)
	if body == "" {
		body = msg.Snippet
	}
	text := fmt.Sprintf("From: %s\nSubject: %s\nDate: %s\n\n%s", summary.From, summary.Subject, summary.Date, body)
	return agent.Succeed(text, summary)
}

func (g *GmailClient) DownloadAttachment(ctx context.Context, actor, messageID, attachmentID string) agent.ResultEnvelope {
	srv, err := g.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	att, err := srv.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return apiFail("download the attachment", err)
	}
	data, err := base64.URLEncoding.DecodeString(att.Data)
	if err != nil {
		return apiFail("decode the attachment", err)
	}
	return agent.Succeed(fmt.Sprintf("Attachment downloaded (%d bytes).", len(data)), nil)
}

// buildMIME renders a plain-text RFC 2822 message.
func buildMIME(msg agent.EmailMessage) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(msg.Cc, ", "))
	}
	if len(msg.Bcc) > 0 {
		fmt.Fprintf(&b, "Bcc: %s\r\n", strings.Join(msg.Bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// extractPlainText walks the payload tree for the first text/plain part.
func extractPlainText(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, p := range part.Parts {
		if text := extractPlainText(p); text != "" {
			return text
		}
	}
	return ""
}
