// Package gsheets implements sheet.Store over a Google Sheets spreadsheet.
// Each table is a tab whose first row is the header.
package gsheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/knowledgeboard/knowledge-server/internal/sheet"
)

const (
	valueInputRaw       = "RAW"
	renderUnformatted   = "UNFORMATTED_VALUE"
	dateFormattedString = "FORMATTED_STRING"
	insertRows          = "INSERT_ROWS"
	dimensionRows       = "ROWS"
)

// Config selects the spreadsheet and credentials.
type Config struct {
	SpreadsheetID string
	// CredentialsFile is a path to a service account key. Ignored when
	// CredentialsJSON is set.
	CredentialsFile string
	// CredentialsJSON is an inline service account key.
	CredentialsJSON string
}

// ClientOptions builds API client options from cfg. With no credentials the
// library falls back to Application Default Credentials.
func ClientOptions(cfg Config) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	creds := strings.TrimSpace(cfg.CredentialsJSON)
	switch {
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return opts
}

// Client is a sheet.Store backed by the Sheets v4 API.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *slog.Logger

	mu       sync.Mutex
	sheetIDs map[string]int64
	widths   map[string]int
}

var _ sheet.Store = (*Client)(nil)

// New creates a client for cfg.SpreadsheetID.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
		sheetIDs:      make(map[string]int64),
		widths:        make(map[string]int),
	}, nil
}

// Ping fetches spreadsheet properties.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

// EnsureTable implements sheet.Store.
func (c *Client) EnsureTable(ctx context.Context, name string, header []string) error {
	if _, err := c.sheetID(ctx, name); err != nil {
		if err := c.addSheet(ctx, name); err != nil {
			return err
		}
	}

	current, err := c.Header(ctx, name)
	if err != nil {
		return err
	}
	if sheet.HeaderEqual(current, header) {
		return nil
	}

	width := max(len(header), len(current))
	values := make([]any, width)
	for i := range values {
		if i < len(header) {
			values[i] = header[i]
		} else {
			values[i] = ""
		}
	}
	rng := fmt.Sprintf("%s!A1:%s1", quoteSheetName(name), columnLetter(width))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &sheets.ValueRange{Values: [][]any{values}}).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}

	c.mu.Lock()
	c.widths[name] = len(header)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("sheet header repaired", "sheet", name, "columns", len(header))
	}
	return nil
}

// Header implements sheet.Store.
func (c *Client) Header(ctx context.Context, name string) ([]string, error) {
	if _, err := c.sheetID(ctx, name); err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheetName(name)+"!1:1").
		ValueRenderOption(renderUnformatted).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}

	var header []string
	if len(resp.Values) > 0 {
		for _, v := range resp.Values[0] {
			header = append(header, fmt.Sprint(v))
		}
	}

	c.mu.Lock()
	c.widths[name] = len(header)
	c.mu.Unlock()
	return header, nil
}

// Rows implements sheet.Store.
func (c *Client) Rows(ctx context.Context, name string) ([]sheet.Row, error) {
	width, err := c.width(ctx, name)
	if err != nil {
		return nil, err
	}
	if width == 0 {
		return nil, nil
	}

	rng := fmt.Sprintf("%s!A2:%s", quoteSheetName(name), columnLetter(width))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption(renderUnformatted).
		DateTimeRenderOption(dateFormattedString).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", name, err)
	}

	rows := make([]sheet.Row, len(resp.Values))
	for i, values := range resp.Values {
		rows[i] = sheet.Row(values)
	}
	return rows, nil
}

// Append implements sheet.Store.
func (c *Client) Append(ctx context.Context, name string, rows ...sheet.Row) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := c.sheetID(ctx, name); err != nil {
		return err
	}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quoteSheetName(name)+"!A1", toValueRange(rows...)).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return nil
}

// Update implements sheet.Store.
func (c *Client) Update(ctx context.Context, name string, index int, row sheet.Row) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", sheet.ErrRowOutOfRange, index)
	}
	if _, err := c.sheetID(ctx, name); err != nil {
		return err
	}
	rng := rowRange(name, index, max(len(row), 1))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, toValueRange(row)).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s row %d: %w", name, index, err)
	}
	return nil
}

// SetCell implements sheet.Store.
func (c *Client) SetCell(ctx context.Context, name string, index, column int, value any) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", sheet.ErrRowOutOfRange, index)
	}
	if _, err := c.sheetID(ctx, name); err != nil {
		return err
	}
	rng := cellRef(name, index, column)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, toValueRange(sheet.Row{value})).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("set %s: %w", rng, err)
	}
	return nil
}

// Delete implements sheet.Store.
func (c *Client) Delete(ctx context.Context, name string, indexes ...int) error {
	if len(indexes) == 0 {
		return nil
	}
	id, err := c.sheetID(ctx, name)
	if err != nil {
		return err
	}
	rows, err := c.Rows(ctx, name)
	if err != nil {
		return err
	}
	ordered, err := sheet.NormalizeIndexes(indexes, len(rows))
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: deleteRequests(id, ordered)}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete rows from %s: %w", name, err)
	}
	return nil
}

func (c *Client) width(ctx context.Context, name string) (int, error) {
	c.mu.Lock()
	w, ok := c.widths[name]
	c.mu.Unlock()
	if ok {
		return w, nil
	}
	header, err := c.Header(ctx, name)
	if err != nil {
		return 0, err
	}
	return len(header), nil
}

// sheetID resolves a tab title to its numeric id, refreshing the cache once on miss.
func (c *Client) sheetID(ctx context.Context, name string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[name]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("load spreadsheet: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok = c.sheetIDs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, name)
	}
	return id, nil
}

func (c *Client) addSheet(ctx context.Context, name string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		c.mu.Lock()
		c.sheetIDs[name] = resp.Replies[0].AddSheet.Properties.SheetId
		c.mu.Unlock()
	}
	if c.logger != nil {
		c.logger.Info("sheet created", "sheet", name)
	}
	return nil
}

// deleteRequests builds one DeleteDimension request per data row index.
// indexes must already be in descending order.
func deleteRequests(sheetID int64, indexes []int) []*sheets.Request {
	reqs := make([]*sheets.Request, 0, len(indexes))
	for _, i := range indexes {
		start := int64(i) + 1 // skip the header row
		reqs = append(reqs, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       dimensionRows,
					StartIndex:      start,
					EndIndex:        start + 1,
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}
	return reqs
}

func toValueRange(rows ...sheet.Row) *sheets.ValueRange {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = toCell(v)
		}
		values[i] = cells
	}
	return &sheets.ValueRange{Values: values}
}

// toCell converts a value into something the RAW input option stores verbatim.
func toCell(v any) any {
	switch vv := v.(type) {
	case nil:
		return ""
	case time.Time:
		return vv.UTC().Format(time.RFC3339)
	default:
		return vv
	}
}

// columnLetter converts a 1-based column number to its A1 letters.
func columnLetter(n int) string {
	if n < 1 {
		return "A"
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// rowRange addresses data row index (0-based) across width columns.
func rowRange(name string, index, width int) string {
	r := index + 2
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheetName(name), r, columnLetter(width), r)
}

// cellRef addresses one cell of data row index, column 0-based.
func cellRef(name string, index, column int) string {
	return fmt.Sprintf("%s!%s%d", quoteSheetName(name), columnLetter(column+1), index+2)
}
