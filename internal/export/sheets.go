// Package export appends the current report to a Google spreadsheet so a
// filtered view can be shared outside the dashboard.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensedash/internal/core"
	"expensedash/internal/report"
)

// Exporter writes report rows to one sheet of one spreadsheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates an exporter from GOOGLE_SPREADSHEET_ID and
// GOOGLE_SHEET_NAME. Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or application default credentials.
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Exporter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credsJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	credsFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if credsJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case credsJSON != "":
		return gsheet.NewService(ctx, goption.WithCredentialsJSON([]byte(credsJSON)))
	case credsFile != "":
		return gsheet.NewService(ctx, goption.WithCredentialsFile(credsFile))
	default:
		// Application default credentials.
		return gsheet.NewService(ctx)
	}
}

// Export appends the table rows of the view, preceded by a window header and
// followed by the grand total.
func (e *Exporter) Export(ctx context.Context, f core.Range, v report.ViewState) error {
	window := "all dates"
	if f.IsRanged() {
		window = f.From + " — " + f.To
	}

	values := [][]any{
		{"Window", window},
		{"Date", "Header", "Description", "Category", "Cost"},
	}
	for _, row := range v.Rows {
		values = append(values, []any{row.Date, row.Header, row.Description, string(row.Category), row.Cost})
	}
	values = append(values, []any{"", "", "", "Total", v.Total})

	vr := &gsheet.ValueRange{Values: values}
	_, err := e.svc.Spreadsheets.Values.
		Append(e.spreadsheetID, e.sheetName+"!A:E", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to sheet %q: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Report exported to spreadsheet",
		"spreadsheet_id", e.spreadsheetID,
		"sheet", e.sheetName,
		"rows", len(v.Rows))
	return nil
}
