// Package sheets exports trend buckets to a Google Sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/trend"
)

var header = []interface{}{"period", "start", "amount", "granularity", "exported_at"}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	now           func() time.Time
}

// New builds an exporter from cfg's Google settings using service account
// credentials.
func New(ctx context.Context, cfg *config.Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Exporter {
	if sheetName == "" {
		sheetName = "Trends"
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		now:           time.Now,
	}
}

// newSheetsService prefers inline JSON credentials over a key file.
func newSheetsService(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	serviceAccountJSON = strings.TrimSpace(serviceAccountJSON)
	serviceAccountFile = strings.TrimSpace(serviceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// Rows renders buckets as sheet rows, header first. Amounts keep their two
// fractional digits as text so the sheet never sees a float.
func Rows(buckets []trend.Bucket, g trend.Granularity, exportedAt time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(buckets)+1)
	rows = append(rows, header)
	stamp := exportedAt.UTC().Format(time.RFC3339)
	for _, b := range buckets {
		rows = append(rows, []interface{}{b.Key, b.Start.String(), b.Amount.String(), string(g), stamp})
	}
	return rows
}

// Export appends buckets to the configured sheet and returns the number of
// data rows written.
func (e *Exporter) Export(ctx context.Context, buckets []trend.Bucket, g trend.Granularity) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if len(buckets) == 0 {
		return 0, nil
	}

	vr := &gsheet.ValueRange{Values: Rows(buckets, g, e.now())}
	rng := fmt.Sprintf("%s!A:E", e.sheetName)
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, core.NewTransportError("export trends", err)
	}

	slog.InfoContext(ctx, "Exported trend buckets",
		"sheet", e.sheetName,
		"rows", len(buckets),
		"granularity", string(g))
	return len(buckets), nil
}
