package sink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"energy_tracker/internal/reconcile"
)

// SheetsSink replaces the contents of one sheet in a Google spreadsheet with
// the melted long-format table: timestamp, metric, value. The long reshape
// keeps the sheet friendly for pivoting in BI tools.
type SheetsSink struct {
	ctx           context.Context
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsSink builds a sink from service-account credentials JSON. The
// credentials come from the environment; a missing or unparseable secret
// fails here so the run can report "sink unavailable" up front.
func NewSheetsSink(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte) (*SheetsSink, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("sheets: no credentials provided")
	}

	service, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: creating service: %w", err)
	}

	return &SheetsSink{
		ctx:           ctx,
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func (s *SheetsSink) Name() string {
	return "sheets:" + s.spreadsheetID
}

func (s *SheetsSink) Write(table *reconcile.Table) error {
	records := reconcile.Melt(table)

	values := make([][]interface{}, 0, len(records)+1)
	values = append(values, []interface{}{"timestamp", "metric", "value"})
	for _, rec := range records {
		var value interface{}
		if rec.Value != nil {
			value = strconv.FormatFloat(*rec.Value, 'f', -1, 64)
		}
		values = append(values, []interface{}{
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.Metric,
			value,
		})
	}

	// Clear first so rows from a longer previous run cannot survive below
	// the new data.
	_, err := s.service.Spreadsheets.Values.
		Clear(s.spreadsheetID, s.sheetName, &sheets.ClearValuesRequest{}).
		Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: clearing %s: %w", s.sheetName, err)
	}

	_, err = s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, s.sheetName+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: writing %d rows: %w", len(values), err)
	}

	return nil
}
