package workspace

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/vocalagent/vocalagent/agent"
)

const personFields = "names,emailAddresses,phoneNumbers"

// ContactsClient implements agent.ContactsService over the People API.
type ContactsClient struct {
	factory ClientFactory
}

func (c *ContactsClient) service(ctx context.Context, actor string) (*people.Service, error) {
	httpClient, err := c.factory.HTTPClient(ctx, actor)
	if err != nil {
		return nil, err
	}
	return people.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (c *ContactsClient) Search(ctx context.Context, actor, query string) agent.ResultEnvelope {
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	resp, err := srv.People.SearchContacts().Query(query).ReadMask(personFields).Context(ctx).Do()
	if err != nil {
		return apiFail("search your contacts", err)
	}
	if len(resp.Results) == 0 {
		return agent.Succeed(fmt.Sprintf("No contacts matching %q were found.", query), []agent.Contact{})
	}

	contacts := make([]agent.Contact, 0, len(resp.Results))
	for _, r := range resp.Results {
		contacts = append(contacts, toContact(r.Person))
	}
	return agent.Succeed(fmt.Sprintf("Found %d contacts matching %q.", len(contacts), query), contacts)
}

func (c *ContactsClient) List(ctx context.Context, actor string, max int64) agent.ResultEnvelope {
	contacts, err := c.Directory(ctx, actor, max)
	if err != nil {
		return apiFail("list your contacts", err)
	}
	if len(contacts) == 0 {
		return agent.Succeed("Your contact list is empty.", []agent.Contact{})
	}
	return agent.Succeed(fmt.Sprintf("You have %d contacts.", len(contacts)), contacts)
}

func (c *ContactsClient) Create(ctx context.Context, actor string, contact agent.Contact) agent.ResultEnvelope {
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	person := &people.Person{
		Names:          []*people.Name{{UnstructuredName: contact.Name}},
		EmailAddresses: []*people.EmailAddress{{Value: contact.Email}},
	}
	if contact.Phone != "" {
		person.PhoneNumbers = []*people.PhoneNumber{{Value: contact.Phone}}
	}

	created, err := srv.People.CreateContact(person).Context(ctx).Do()
	if err != nil {
		return apiFail("create the contact", err)
	}
	return agent.Succeed(fmt.Sprintf("Contact %q created.", contact.Name), []agent.Contact{toContact(created)})
}

func (c *ContactsClient) EmailFor(ctx context.Context, actor, nameQuery string) agent.ResultEnvelope {
	srv, err := c.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	resp, err := srv.People.SearchContacts().Query(nameQuery).ReadMask(personFields).Context(ctx).Do()
	if err != nil {
		return apiFail("search your contacts", err)
	}
	for _, r := range resp.Results {
		contact := toContact(r.Person)
		if contact.Email != "" {
			return agent.Succeed(
				fmt.Sprintf("%s's email address is %s.", contact.Name, contact.Email),
				[]agent.Contact{contact},
			)
		}
	}
	return agent.Fail("No email address found for %q.", nameQuery)
}

// Directory lists the actor's saved contacts for recipient resolution.
func (c *ContactsClient) Directory(ctx context.Context, actor string, max int64) ([]agent.Contact, error) {
	if max <= 0 {
		max = 100
	}
	srv, err := c.service(ctx, actor)
	if err != nil {
		return nil, err
	}

	resp, err := srv.People.Connections.List("people/me").
		PersonFields(personFields).
		PageSize(max).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	contacts := make([]agent.Contact, 0, len(resp.Connections))
	for _, p := range resp.Connections {
		contacts = append(contacts, toContact(p))
	}
	return contacts, nil
}

func toContact(p *people.Person) agent.Contact {
	var out agent.Contact
	if p == nil {
		return out
	}
	if len(p.Names) > 0 {
		out.Name = p.Names[0].DisplayName
		if out.Name == "" {
			out.Name = p.Names[0].UnstructuredName
		}
	}
	if len(p.EmailAddresses) > 0 {
		out.Email = p.EmailAddresses[0].Value
	}
	if len(p.PhoneNumbers) > 0 {
		out.Phone = p.PhoneNumbers[0].Value
	}
	return out
}
