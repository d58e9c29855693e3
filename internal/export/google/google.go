// Package google writes month summaries to a Google Sheets dashboard.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"ledger/internal/core"
	"ledger/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.SummaryWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_CREDENTIALS_JSON for explicit credentials, otherwise
// Application Default Credentials; EXPORT_SHEET_NAME (default
// "Dashboard").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("EXPORT_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Dashboard"
	}

	var opts []goption.ClientOption
	if credsJSON := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); credsJSON != "" {
		opts = append(opts, goption.WithCredentialsJSON([]byte(credsJSON)))
	}
	opts = append(opts, goption.WithScopes(gsheet.SpreadsheetsScope))

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// WriteMonthSummary appends one row per currency plus one row per
// ranked category to the dashboard sheet.
func (c *Client) WriteMonthSummary(ctx context.Context, s export.MonthSummary) (string, error) {
	period := fmt.Sprintf("%04d-%02d", s.Year, s.Month)

	currencies := make([]string, 0, len(s.Totals))
	for currency := range s.Totals {
		currencies = append(currencies, string(currency))
	}
	sort.Strings(currencies)

	var rows [][]interface{}
	for _, currency := range currencies {
		totals := s.Totals[core.CurrencyCode(currency)]
		rows = append(rows, []interface{}{
			period, s.WorkspaceID, "totals", currency,
			totals.IncomeMinor, totals.ExpenseMinor, totals.BalanceMinor,
		})
	}
	for _, entry := range s.TopCategories {
		rows = append(rows, []interface{}{
			period, s.WorkspaceID, "top_category", string(entry.Currency),
			entry.Name, entry.AmountMinor, entry.Count,
		})
	}

	valueRange := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:G", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append summary rows: %w", err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return fmt.Sprintf("%s!%s", c.sheetName, period), nil
}
