package workspace

import (
	"context"
	"fmt"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/vocalagent/vocalagent/agent"
)

// notesFolderName is where note documents live in the actor's Drive.
const notesFolderName = "Assistant Notes"

// KeepClient implements agent.KeepService. The Keep API has no general
// consumer access, so notes are plain Google Docs collected in a dedicated
// Drive folder.
type KeepClient struct {
	factory ClientFactory
}

func (k *KeepClient) CreateNote(ctx context.Context, actor, title, content string) agent.ResultEnvelope {
	httpClient, err := k.factory.HTTPClient(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	driveSrv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return authFail(actor, err)
	}
	docsSrv, err := docs.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return authFail(actor, err)
	}

	folderID, err := k.ensureFolder(ctx, driveSrv)
	if err != nil {
		return apiFail("prepare the notes folder", err)
	}

	doc, err := docsSrv.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return apiFail("create the note", err)
	}
	if content != "" {
		_, err = docsSrv.Documents.BatchUpdate(doc.DocumentId, &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: 1},
					Text:     content,
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return apiFail("write the note content", err)
		}
	}

	_, err = driveSrv.Files.Update(doc.DocumentId, nil).AddParents(folderID).Context(ctx).Do()
	if err != nil {
		return apiFail("file the note", err)
	}

	link := fmt.Sprintf("https://docs.google.com/document/d/%s/edit", doc.DocumentId)
	return agent.Succeed(
		fmt.Sprintf("Note %q saved.", title),
		[]agent.Note{{ID: doc.DocumentId, Title: title, Link: link}},
	)
}

func (k *KeepClient) ListNotes(ctx context.Context, actor string, max int64) agent.ResultEnvelope {
	if max <= 0 {
		max = 10
	}
	httpClient, err := k.factory.HTTPClient(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	driveSrv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return authFail(actor, err)
	}

	folders, err := driveSrv.Files.List().
		Q(fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.folder' and trashed = false", notesFolderName)).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return apiFail("find your notes", err)
	}
	if len(folders.Files) == 0 {
		return agent.Succeed("You have no notes yet.", []agent.Note{})
	}

	list, err := driveSrv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", folders.Files[0].Id)).
		OrderBy("modifiedTime desc").
		Fields("files(id, name, webViewLink)").
		PageSize(max).
		Context(ctx).Do()
	if err != nil {
		return apiFail("list your notes", err)
	}
	if len(list.Files) == 0 {
		return agent.Succeed("You have no notes yet.", []agent.Note{})
	}

	notes := make([]agent.Note, 0, len(list.Files))
	for _, f := range list.Files {
		notes = append(notes, agent.Note{ID: f.Id, Title: f.Name, Link: f.WebViewLink})
	}
	return agent.Succeed(fmt.Sprintf("You have %d notes.", len(notes)), notes)
}

func (k *KeepClient) ensureFolder(ctx context.Context, srv *drive.Service) (string, error) {
	found, err := srv.Files.List().
		Q(fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.folder' and trashed = false", notesFolderName)).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(found.Files) > 0 {
		return found.Files[0].Id, nil
	}

	folder, err := srv.Files.Create(&drive.File{
		Name:     notesFolderName,
		MimeType: "application/vnd.google-apps.folder",
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}
