package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/vocalagent/vocalagent/agent"
)

const instantMeetingDuration = 30 * time.Minute

// CalendarClient implements agent.CalendarService against the actor's
// primary calendar.
type CalendarClient struct {
	factory ClientFactory
	now     func() time.Time
}

func (c *CalendarClient) service(ctx context.Context, actor string) (*calendar.Service, error) {
	httpClient, err := c.factory.HTTPClient(ctx, actor)
	if err != nil {
		return nil, err
	}
	return calendar.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (c *CalendarClient) CreateEvent(ctx context.Context, actor string, req agent.EventRequest) agent.ResultEnvelope {
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return agent.Fail("Invalid start time %q", req.Start)
	}
	end := start.Add(time.Hour)
	if req.End != "" {
		end, err = time.Parse(time.RFC3339, req.End)
		if err != nil {
			return agent.Fail("Invalid end time %q", req.End)
		}
	}

	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
		Attendees:   toAttendees(req.Attendees),
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := srv.Events.Insert("primary", event).ConferenceDataVersion(1).Context(ctx).Do()
	if err != nil {
		return apiFail("create the event", err)
	}
	return agent.Succeed(
		fmt.Sprintf("Event %q created for %s.", created.Summary, start.Format("Mon, Jan 2 at 3:04 PM")),
		[]agent.Event{toEvent(created)},
	)
}

func (c *CalendarClient) CreateInstantMeeting(ctx context.Context, actor, title string, attendees []string) agent.ResultEnvelope {
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	start := c.now()
	event := &calendar.Event{
		Summary: title,
		Start:   &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &calendar.EventDateTime{DateTime: start.Add(instantMeetingDuration).Format(time.RFC3339)},
		Attendees: toAttendees(attendees),
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := srv.Events.Insert("primary", event).ConferenceDataVersion(1).Context(ctx).Do()
	if err != nil {
		return apiFail("create the meeting", err)
	}
	link := created.HangoutLink
	if link == "" {
		link = "link pending"
	}
	return agent.Succeed(
		fmt.Sprintf("Instant meeting %q is ready: %s", created.Summary, link),
		[]agent.Event{toEvent(created)},
	)
}

func (c *CalendarClient) ListUpcoming(ctx context.Context, actor string, max int64) agent.ResultEnvelope {
	if max <= 0 {
		max = 10
	}
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	list, err := srv.Events.List("primary").
		TimeMin(c.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(max).
		Context(ctx).Do()
	if err != nil {
		return apiFail("list your events", err)
	}
	if len(list.Items) == 0 {
		return agent.Succeed("No upcoming events found.", []agent.Event{})
	}

	events := make([]agent.Event, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, toEvent(item))
	}
	return agent.Succeed(fmt.Sprintf("Found %d upcoming events.", len(events)), events)
}

func (c *CalendarClient) DeleteEvent(ctx context.Context, actor, eventID, summary string) agent.ResultEnvelope {
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	if eventID == "" {
		found, env := c.findBySummary(ctx, srv, summary)
		if found == nil {
			return env
		}
		eventID = found.Id
		summary = found.Summary
	}
	if err := srv.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		return apiFail("delete the event", err)
	}
	if summary == "" {
		summary = eventID
	}
	return agent.Succeed(fmt.Sprintf("Event %q deleted.", summary), nil)
}

func (c *CalendarClient) UpdateEvent(ctx context.Context, actor string, upd agent.EventUpdate) agent.ResultEnvelope {
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	event, err := srv.Events.Get("primary", upd.EventID).Context(ctx).Do()
	if err != nil {
		return apiFail("find the event", err)
	}

	if upd.Summary != "" {
		event.Summary = upd.Summary
	}
	if upd.Description != "" {
		event.Description = upd.Description
	}
	if upd.Start != "" {
		event.Start = &calendar.EventDateTime{DateTime: upd.Start}
	}
	if upd.End != "" {
		event.End = &calendar.EventDateTime{DateTime: upd.End}
	}
	if len(upd.Attendees) > 0 {
		event.Attendees = toAttendees(upd.Attendees)
	}

	updated, err := srv.Events.Update("primary", upd.EventID, event).Context(ctx).Do()
	if err != nil {
		return apiFail("update the event", err)
	}
	return agent.Succeed(fmt.Sprintf("Event %q updated.", updated.Summary), []agent.Event{toEvent(updated)})
}

func (c *CalendarClient) MeetLink(ctx context.Context, actor, eventID, summarySearch string) agent.ResultEnvelope {
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	var event *calendar.Event
	if eventID != "" {
		event, err = srv.Events.Get("primary", eventID).Context(ctx).Do()
		if err != nil {
			return apiFail("find the event", err)
		}
	} else {
		var env agent.ResultEnvelope
		event, env = c.findBySummary(ctx, srv, summarySearch)
		if event == nil {
			return env
		}
	}

	if event.HangoutLink == "" {
		return agent.Fail("Event %q has no Meet link.", event.Summary)
	}
	return agent.Succeed(
		fmt.Sprintf("Meet link for %q: %s", event.Summary, event.HangoutLink),
		[]agent.Event{toEvent(event)},
	)
}

// findBySummary scans upcoming events for a case-insensitive summary match.
// The failed envelope is only meaningful when the returned event is nil.
func (c *CalendarClient) findBySummary(ctx context.Context, srv *calendar.Service, summary string) (*calendar.Event, agent.ResultEnvelope) {
	if summary == "" {
		return nil, agent.Fail("I need either an event id or the event's title.")
	}
	list, err := srv.Events.List("primary").
		TimeMin(c.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50).
		Context(ctx).Do()
	if err != nil {
		return nil, apiFail("search your events", err)
	}
	needle := strings.ToLower(summary)
	for _, item := range list.Items {
		if strings.Contains(strings.ToLower(item.Summary), needle) {
			return item, agent.ResultEnvelope{}
		}
	}
	return nil, agent.Fail("No upcoming event matching %q was found.", summary)
}

func toAttendees(emails []string) []*calendar.EventAttendee {
	if len(emails) == 0 {
		return nil
	}
	out := make([]*calendar.EventAttendee, 0, len(emails))
	for _, e := range emails {
		out = append(out, &calendar.EventAttendee{Email: e})
	}
	return out
}

func toEvent(e *calendar.Event) agent.Event {
	out := agent.Event{
		ID:       e.Id,
		Summary:  e.Summary,
		MeetLink: e.HangoutLink,
	}
	if e.Start != nil {
		out.Start = e.Start.DateTime
		if out.Start == "" {
			out.Start = e.Start.Date
		}
	}
	if e.End != nil {
		out.End = e.End.DateTime
		if out.End == "" {
			out.End = e.End.Date
		}
	}
	for _, a := range e.Attendees {
		out.Attendees = append(out.Attendees, a.Email)
	}
	return out
}
