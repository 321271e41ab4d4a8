package workspace

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/vocalagent/vocalagent/agent"
)

// SheetsClient implements agent.SheetsService.
type SheetsClient struct {
	factory ClientFactory
}

func (s *SheetsClient) service(ctx context.Context, actor string) (*sheets.Service, error) {
	httpClient, err := s.factory.HTTPClient(ctx, actor)
	if err != nil {
		return nil, err
	}
	return sheets.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (s *SheetsClient) Create(ctx context.Context, actor, title string) agent.ResultEnvelope {
	srv, err := s.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	created, err := srv.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return apiFail("create the spreadsheet", err)
	}
	return agent.Succeed(
		fmt.Sprintf("Spreadsheet %q created: %s", title, created.SpreadsheetUrl),
		[]agent.DriveFile{{ID: created.SpreadsheetId, Name: title, Link: created.SpreadsheetUrl}},
	)
}

func (s *SheetsClient) AddRow(ctx context.Context, actor, sheetID, rangeName string, values []string) agent.ResultEnvelope {
	srv, err := s.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err = srv.Spreadsheets.Values.Append(sheetID, rangeName, &sheets.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return apiFail("add the row", err)
	}
	return agent.Succeed(fmt.Sprintf("Added a row with %d values.", len(values)), nil)
}

func (s *SheetsClient) Read(ctx context.Context, actor, sheetID, rangeName string) agent.ResultEnvelope {
	srv, err := s.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	resp, err := srv.Spreadsheets.Values.Get(sheetID, rangeName).Context(ctx).Do()
	if err != nil {
		return apiFail("read the sheet", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return agent.Succeed("The range is empty.", agent.SheetData{Range: resp.Range})
	}
	return agent.Succeed(
		fmt.Sprintf("Read %d rows from %s.", len(rows), resp.Range),
		agent.SheetData{Range: resp.Range, Rows: rows},
	)
}

func (s *SheetsClient) Update(ctx context.Context, actor, sheetID, rangeName, value string) agent.ResultEnvelope {
	srv, err := s.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	_, err = srv.Spreadsheets.Values.Update(sheetID, rangeName, &sheets.ValueRange{
		Values: [][]any{{value}},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return apiFail("update the cell", err)
	}
	return agent.Succeed(fmt.Sprintf("Updated %s to %q.", rangeName, value), nil)
}
