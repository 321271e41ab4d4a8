package agent

import (
	"context"
	"fmt"
	"strings"
)

// Decision is the approval gate's classification of a descriptor.
type Decision int

const (
	// ExecuteNow marks pure reads that are safe to run immediately.
	ExecuteNow Decision = iota
	// NeedsApproval marks actions with irreversible real-world effects;
	// they are staged behind a human-readable preview.
	NeedsApproval
	// NeedsClarification marks descriptors the user must complete first.
	NeedsClarification
)

func (d Decision) String() string {
	switch d {
	case ExecuteNow:
		return "EXECUTE_NOW"
	case NeedsApproval:
		return "NEEDS_APPROVAL"
	case NeedsClarification:
		return "NEEDS_CLARIFICATION"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// EmailDraft is LLM-generated email content.
type EmailDraft struct {
	Subject string
	Body    string
}

// EmailDrafter writes a subject and body from a natural-language instruction.
// The planner package implements it; tests use a canned fake.
type EmailDrafter interface {
	DraftEmail(ctx context.Context, instruction, recipientName, senderName string) (EmailDraft, error)
}

// Gate decides whether a descriptor may execute immediately or must be
// staged, and renders the preview for staged actions. Building a preview
// must not mutate any external system.
type Gate struct {
	registry *Registry
	resolver *RecipientResolver
	drafter  EmailDrafter
}

// NewGate creates an approval gate.
func NewGate(registry *Registry, resolver *RecipientResolver, drafter EmailDrafter) *Gate {
	return &Gate{registry: registry, resolver: resolver, drafter: drafter}
}

// Classify maps a descriptor to a decision. ASK_USER and missing required
// parameters need clarification; registry entries flagged for approval are
// staged; everything else (including unknown tags, which the dispatcher
// rejects on its own) executes now.
func (g *Gate) Classify(d ActionDescriptor) Decision {
	if d.Action == ActionAskUser {
		return NeedsClarification
	}
	desc, ok := g.registry.Lookup(d.Action)
	if !ok {
		return ExecuteNow
	}
	if len(desc.MissingParams(d.Params)) > 0 {
		return NeedsClarification
	}
	if desc.RequiresApproval {
		return NeedsApproval
	}
	return ExecuteNow
}

// BuildPreview renders the staged-action response for a NeedsApproval
// descriptor. The returned params round-trip losslessly: resubmitting them
// unchanged produces exactly the side effect the message describes. Calling
// BuildPreview twice on the same descriptor yields identical params.
func (g *Gate) BuildPreview(ctx context.Context, d ActionDescriptor, actor string) Response {
	desc, ok := g.registry.Lookup(d.Action)
	if !ok {
		return ErrorResponse("Unknown action: %s", d.Action)
	}

	switch d.Action {
	case ActionGmailCompose:
		return g.buildEmailPreview(ctx, d, actor)
	case ActionGmailSend:
		return Response{
			Type:    ResponseEmailPreview,
			Action:  ActionGmailSend,
			Message: "Please review your email before sending.",
			Params:  d.Params.Clone(),
		}
	case ActionCalendarCreate:
		return g.buildCalendarPreview(d)
	case ActionCalendarDelete:
		target := d.Params.String("event_id")
		if target == "" {
			target = d.Params.String("summary")
		}
		return Response{
			Type:    ResponseApproval,
			Action:  d.Action,
			Message: fmt.Sprintf("Ready to delete event %q. Confirm?", target),
			Params:  d.Params.Clone(),
		}
	case ActionCalendarUpdate:
		return Response{
			Type:    ResponseApproval,
			Action:  d.Action,
			Message: fmt.Sprintf("Ready to update event %q. Confirm?", d.Params.String("event_id")),
			Params:  d.Params.Clone(),
		}
	}

	return Response{
		Type:    ResponseApproval,
		Action:  d.Action,
		Message: fmt.Sprintf("Ready to perform: %s. Confirm?", describe(desc, d.Params)),
		Params:  d.Params.Clone(),
	}
}

// buildEmailPreview resolves recipients and drafts subject/body for a
// GMAIL_COMPOSE descriptor. Ambiguous recipient resolution surfaces a
// clarification with the candidate list instead of a firm preview; silently
// picking a weak fuzzy match is never acceptable for outgoing mail.
func (g *Gate) buildEmailPreview(ctx context.Context, d ActionDescriptor, actor string) Response {
	to := g.resolver.Resolve(ctx, d.Params.String("to"), actor)
	if !to.Resolved() {
		return Response{
			Type:       ResponseResult,
			Response:   to.Prompt,
			Candidates: to.Candidates,
		}
	}

	var cc, bcc []string
	if text := d.Params.String("cc"); text != "" {
		if res := g.resolver.Resolve(ctx, text, actor); res.Resolved() {
			cc = res.Emails
		}
	}
	if text := d.Params.String("bcc"); text != "" {
		if res := g.resolver.Resolve(ctx, text, actor); res.Resolved() {
			bcc = res.Emails
		}
	}

	subject := d.Params.String("subject")
	body := d.Params.String("body")
	if subject == "" || body == "" {
		draft, err := g.drafter.DraftEmail(ctx, d.Params.String("instruction"), d.Params.String("to"), actor)
		if err != nil {
			if subject == "" {
				subject = "(no subject)"
			}
			if body == "" {
				body = "Unable to generate email body. Please write manually."
			}
		} else {
			if subject == "" {
				subject = draft.Subject
			}
			if body == "" {
				body = draft.Body
			}
		}
	}

	return Response{
		Type:    ResponseEmailPreview,
		Action:  ActionGmailSend,
		Message: "Please review your email before sending.",
		Params: ParamBag{
			"to":      to.Emails,
			"cc":      cc,
			"bcc":     bcc,
			"subject": subject,
			"body":    body,
		},
	}
}

func (g *Gate) buildCalendarPreview(d ActionDescriptor) Response {
	summary := d.Params.String("summary")
	if d.Params.Bool("instant") {
		return Response{
			Type:    ResponseApproval,
			Action:  ActionCalendarCreate,
			Message: fmt.Sprintf("Ready to create instant meeting: %q. This will start now.", summary),
			Params:  d.Params.Clone(),
		}
	}

	message := fmt.Sprintf("Ready to schedule: %q at %s.", summary, d.Params.String("start_time"))
	if attendees := d.Params.StringList("attendees"); len(attendees) > 0 {
		message += "\nAttendees: " + strings.Join(attendees, ", ")
	}
	return Response{
		Type:    ResponseApproval,
		Action:  ActionCalendarCreate,
		Message: message,
		Params:  d.Params.Clone(),
	}
}

func describe(desc CapabilityDescriptor, params ParamBag) string {
	if title := params.String("title"); title != "" {
		return fmt.Sprintf("%s (%q)", desc.Title, title)
	}
	if name := params.String("name"); name != "" {
		return fmt.Sprintf("%s (%q)", desc.Title, name)
	}
	return desc.Title
}
