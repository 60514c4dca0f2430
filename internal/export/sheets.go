package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/finanzas/internal/common"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsWriter writes a Report into a Google spreadsheet.
type SheetsWriter struct {
	service *sheets.Service
	logger  *slog.Logger
	// OnBatch, when set, is called after each batch of rows is written.
	OnBatch func(written, total int)
	config  SheetsConfig
}

// NewSheetsWriter authenticates and creates a writer.
func NewSheetsWriter(ctx context.Context, cfg SheetsConfig) (*SheetsWriter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ts, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return newSheetsWriter(svc, cfg), nil
}

func newSheetsWriter(svc *sheets.Service, cfg SheetsConfig) *SheetsWriter {
	return &SheetsWriter{
		service: svc,
		config:  cfg,
		logger:  slog.Default().With("component", "sheets"),
	}
}

// Write replaces the sheet's contents with r and returns the spreadsheet ID.
func (w *SheetsWriter) Write(ctx context.Context, r Report) (string, error) {
	w.logger.Info("starting sheets export", "transactions", len(r.Transactions))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, err = w.getOrCreateSpreadsheet(ctx)
		return classifyGoogleError(err)
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if err := common.WithRetry(ctx, func() error {
		return classifyGoogleError(w.clearSheet(ctx, spreadsheetID))
	}, retryOpts); err != nil {
		return "", fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := prepareValues(r)
	for start := 0; start < len(values); start += w.config.BatchSize {
		end := min(start+w.config.BatchSize, len(values))
		batch := values[start:end]

		err := common.WithRetry(ctx, func() error {
			return classifyGoogleError(w.writeBatch(ctx, spreadsheetID, start, batch))
		}, retryOpts)
		if err != nil {
			return "", fmt.Errorf("failed to write batch starting at row %d: %w", start+1, err)
		}
		if w.OnBatch != nil {
			w.OnBatch(end, len(values))
		}
	}

	if w.config.EnableFormatting {
		err := common.WithRetry(ctx, func() error {
			return classifyGoogleError(w.applyFormatting(ctx, spreadsheetID, len(values)))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return spreadsheetID, nil
}

func (w *SheetsWriter) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: w.config.SheetTitle}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later runs write into the same spreadsheet.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

func (w *SheetsWriter) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, w.sheetRange("A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (w *SheetsWriter) writeBatch(ctx context.Context, spreadsheetID string, offset int, batch [][]any) error {
	_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, w.sheetRange(fmt.Sprintf("A%d", offset+1)), &sheets.ValueRange{
		Values: batch,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err == nil {
		w.logger.Debug("wrote batch", "start_row", offset+1, "rows", len(batch))
	}
	return err
}

func (w *SheetsWriter) sheetRange(cells string) string {
	if w.config.SheetTitle == "" {
		return cells
	}
	return fmt.Sprintf("'%s'!%s", w.config.SheetTitle, cells)
}

// headerRows is the number of rows before the transaction table header.
const headerRows = 7

// prepareValues lays out the report as spreadsheet rows.
func prepareValues(r Report) [][]any {
	values := make([][]any, 0, headerRows+1+len(r.Transactions))
	values = append(values,
		[]any{"Historial de Transacciones"},
		[]any{"Generado el", r.GeneratedAt.Format("2006-01-02")},
		[]any{"Total de transacciones", r.Summary.Count},
		[]any{"Ingresos", r.Summary.Income.StringFixed(2)},
		[]any{"Egresos", r.Summary.Expenses.StringFixed(2)},
		[]any{"Balance", r.Summary.Balance.StringFixed(2)},
		[]any{},
	)

	header := make([]any, 0, len(Columns)+1)
	for _, c := range Columns {
		header = append(header, c)
	}
	header = append(header, "Moneda")
	values = append(values, header)

	for _, tx := range r.Transactions {
		date := tx.Date
		if len(date) > 10 {
			date = date[:10]
		}
		values = append(values, []any{
			date,
			tx.Description,
			StripEmoji(tx.Category),
			tx.Reference,
			tx.Amount.StringFixed(2),
			TypeLabel(tx.Type),
			string(tx.Currency),
		})
	}
	return values
}

func (w *SheetsWriter) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int) error {
	sheetID, err := w.sheetID(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: 1},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16},
				}},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: headerRows, EndRowIndex: headerRows + 1, StartColumnIndex: 0, EndColumnIndex: int64(len(Columns) + 1)},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					TextFormat:      &sheets.TextFormat{Bold: true},
					BackgroundColor: &sheets.Color{Red: 34.0 / 255, Green: 197.0 / 255, Blue: 94.0 / 255},
				}},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: headerRows + 1, EndRowIndex: int64(totalRows), StartColumnIndex: 4, EndColumnIndex: 5},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0.00"},
				}},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", StartIndex: 0, EndIndex: int64(len(Columns) + 1)},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: headerRows + 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err = w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}

func (w *SheetsWriter) sheetID(ctx context.Context, spreadsheetID string) (int64, error) {
	ss, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && (w.config.SheetTitle == "" || s.Properties.Title == w.config.SheetTitle) {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", w.config.SheetTitle)
}

// classifyGoogleError marks transient API failures as retryable.
func classifyGoogleError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch {
	case gerr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case gerr.Code >= 500:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return err
	}
}
