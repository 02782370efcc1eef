package sheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// GoogleSource reads registration rows from a Google spreadsheet via the
// Sheets API, using a service account credential file.
type GoogleSource struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

// NewGoogleSource builds a Sheets-backed row source.
func NewGoogleSource(ctx context.Context, credentialsFile, spreadsheetID string) (*GoogleSource, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id required")
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsv4.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleSource{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// ReadAll fetches every populated row of the named sheet, header row included.
// Cells come back stringified; absent trailing cells become empty strings only
// when the row is shorter than the header, which the normalizer tolerates.
func (s *GoogleSource) ReadAll(ctx context.Context, sheetName string) ([][]string, error) {
	readRange := fmt.Sprintf("%s!A:ZZ", sheetName)
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell == nil {
				continue
			}
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
