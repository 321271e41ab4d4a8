package workspace

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/vocalagent/vocalagent/agent"
)

const fileFields = "files(id, name, mimeType, webViewLink, modifiedTime)"

// DriveClient implements agent.DriveService.
type DriveClient struct {
	factory ClientFactory
}

func (d *DriveClient) service(ctx context.Context, actor string) (*drive.Service, error) {
	httpClient, err := d.factory.HTTPClient(ctx, actor)
	if err != nil {
		return nil, err
	}
	return drive.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (d *DriveClient) Search(ctx context.Context, actor, query string) agent.ResultEnvelope {
	srv, err := d.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	list, err := srv.Files.List().
		Q(fmt.Sprintf("name contains '%s' and trashed = false", escapeQuery(query))).
		Fields(fileFields).
		PageSize(10).
		Context(ctx).Do()
	if err != nil {
		return apiFail("search your files", err)
	}
	if len(list.Files) == 0 {
		return agent.Succeed(fmt.Sprintf("No files matching %q were found.", query), []agent.DriveFile{})
	}
	files := toDriveFiles(list.Files)
	return agent.Succeed(fmt.Sprintf("Found %d files matching %q.", len(files), query), files)
}

func (d *DriveClient) Recent(ctx context.Context, actor string, limit int64) agent.ResultEnvelope {
	if limit <= 0 {
		limit = 10
	}
	srv, err := d.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	list, err := srv.Files.List().
		Q("trashed = false").
		OrderBy("modifiedTime desc").
		Fields(fileFields).
		PageSize(limit).
		Context(ctx).Do()
	if err != nil {
		return apiFail("list your recent files", err)
	}
	files := toDriveFiles(list.Files)
	return agent.Succeed(fmt.Sprintf("Here are your %d most recent files.", len(files)), files)
}

// ShareLink makes the file link-viewable and returns its URL.
func (d *DriveClient) ShareLink(ctx context.Context, actor, fileID string) agent.ResultEnvelope {
	srv, err := d.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	_, err = srv.Permissions.Create(fileID, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return apiFail("share the file", err)
	}

	file, err := srv.Files.Get(fileID).Fields("id, name, webViewLink").Context(ctx).Do()
	if err != nil {
		return apiFail("fetch the file link", err)
	}
	return agent.Succeed(
		fmt.Sprintf("Share link for %q: %s", file.Name, file.WebViewLink),
		[]agent.DriveFile{{ID: file.Id, Name: file.Name, Link: file.WebViewLink}},
	)
}

func (d *DriveClient) ListFolder(ctx context.Context, actor, folderName string) agent.ResultEnvelope {
	srv, err := d.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	folders, err := srv.Files.List().
		Q(fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.folder' and trashed = false", escapeQuery(folderName))).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return apiFail("find the folder", err)
	}
	if len(folders.Files) == 0 {
		return agent.Fail("No folder named %q was found.", folderName)
	}

	list, err := srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", folders.Files[0].Id)).
		Fields(fileFields).
		PageSize(25).
		Context(ctx).Do()
	if err != nil {
		return apiFail("list the folder", err)
	}
	files := toDriveFiles(list.Files)
	return agent.Succeed(fmt.Sprintf("Folder %q contains %d files.", folderName, len(files)), files)
}

func toDriveFiles(in []*drive.File) []agent.DriveFile {
	out := make([]agent.DriveFile, 0, len(in))
	for _, f := range in {
		out = append(out, agent.DriveFile{
			ID:       f.Id,
			Name:     f.Name,
			Link:     f.WebViewLink,
			MimeType: f.MimeType,
			Modified: f.ModifiedTime,
		})
	}
	return out
}
