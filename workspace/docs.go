package workspace

import (
	"context"
	"fmt"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/vocalagent/vocalagent/agent"
)

const docMimeType = "application/vnd.google-apps.document"

// DocsClient implements agent.DocsService. Search goes through Drive since
// the Docs API has no listing surface of its own.
type DocsClient struct {
	factory ClientFactory
}

func (d *DocsClient) service(ctx context.Context, actor string) (*docs.Service, error) {
	httpClient, err := d.factory.HTTPClient(ctx, actor)
	if err != nil {
		return nil, err
	}
	return docs.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (d *DocsClient) Create(ctx context.Context, actor, title, content string) agent.ResultEnvelope {
	srv, err := d.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	doc, err := srv.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return apiFail("create the document", err)
	}

	if content != "" {
		_, err = srv.Documents.BatchUpdate(doc.DocumentId, &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: 1},
					Text:     content,
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return apiFail("write the document content", err)
		}
	}

	link := fmt.Sprintf("https://docs.google.com/document/d/%s/edit", doc.DocumentId)
	return agent.Succeed(
		fmt.Sprintf("Document %q created: %s", title, link),
		[]agent.DriveFile{{ID: doc.DocumentId, Name: title, Link: link, MimeType: docMimeType}},
	)
}

func (d *DocsClient) Append(ctx context.Context, actor, docID, content string) agent.ResultEnvelope {
	srv, err := d.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	doc, err := srv.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return apiFail("find the document", err)
	}

	// The body's last structural element ends with an implicit newline the
	// API refuses to insert after, hence EndIndex-1.
	index := int64(1)
	if n := len(doc.Body.Content); n > 0 {
		if end := doc.Body.Content[n-1].EndIndex; end > 1 {
			index = end - 1
		}
	}

	_, err = srv.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: index},
				Text:     "\n" + content,
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return apiFail("append to the document", err)
	}
	return agent.Succeed(fmt.Sprintf("Added the text to %q.", doc.Title), nil)
}

func (d *DocsClient) Search(ctx context.Context, actor, query string) agent.ResultEnvelope {
	httpClient, err := d.factory.HTTPClient(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	driveSrv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return authFail(actor, err)
	}

	list, err := driveSrv.Files.List().
		Q(fmt.Sprintf("name contains '%s' and mimeType = '%s' and trashed = false", escapeQuery(query), docMimeType)).
		Fields(fileFields).
		PageSize(10).
		Context(ctx).Do()
	if err != nil {
		return apiFail("search your documents", err)
	}
	if len(list.Files) == 0 {
		return agent.Succeed(fmt.Sprintf("No documents matching %q were found.", query), []agent.DriveFile{})
	}
	files := toDriveFiles(list.Files)
	return agent.Succeed(fmt.Sprintf("Found %d documents matching %q.", len(files), query), files)
}
