package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Publisher appends rows to a spreadsheet range.
type Publisher interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// GoogleSheetPublisher implements Publisher using the Google Sheets API.
type GoogleSheetPublisher struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

var _ Publisher = (*GoogleSheetPublisher)(nil)

// New builds a publisher from a service account credentials file.
func New(ctx context.Context, credentialsPath, spreadsheetID string, logger *zap.Logger) (*GoogleSheetPublisher, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return NewWithService(service, spreadsheetID, logger), nil
}

func NewWithService(service *sheetsapi.Service, spreadsheetID string, logger *zap.Logger) *GoogleSheetPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleSheetPublisher{service: service, spreadsheetID: spreadsheetID, logger: logger}
}

func (p *GoogleSheetPublisher) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := p.service.Spreadsheets.Values.Append(p.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	p.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}
