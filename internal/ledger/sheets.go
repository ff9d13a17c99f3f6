package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"chatorder-service/config"
	"chatorder-service/internal/models"
)

// ErrNotConfigured is returned by every call when the spreadsheet
// credentials are missing. The process keeps running without them.
var ErrNotConfigured = errors.New("spreadsheet ledger is not configured")

const (
	sheetsEndpoint = "https://sheets.googleapis.com/v4/spreadsheets"

	stockRange  = "stock!A:E"
	ordersRange = "orders!A:K"
)

// SheetsClient talks to the shop's spreadsheet. The stock table holds
// one row per (item, unit) with columns {item, unit, _, stock, price};
// the orders table is append-only. Row 1 of each range is data, not a
// header.
// tokenProvider yields a bearer token for upstream Google calls.
type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type SheetsClient struct {
	sheetID  string
	folderID string
	baseURL  string
	tokens   tokenProvider
	httpc    *http.Client
	log      *zap.Logger

	// Order numbers derive from the row count, so count+append must not
	// interleave within the process.
	appendMu sync.Mutex
}

func NewSheetsClient(cfg config.Google, log *zap.Logger) *SheetsClient {
	c := &SheetsClient{
		sheetID:  cfg.SheetID,
		folderID: cfg.DriveFolderID,
		baseURL:  sheetsEndpoint,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
	if cfg.SheetID == "" || cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		log.Warn("spreadsheet credentials missing, ledger calls will fail")
		return c
	}
	ts, err := newTokenSource(cfg.ClientEmail, cfg.PrivateKey, c.httpc)
	if err != nil {
		log.Warn("spreadsheet key is malformed, ledger calls will fail", zap.Error(err))
		return c
	}
	c.tokens = ts
	return c
}

// ReadStock scans the stock table top to bottom and returns the first
// exact (item, unit) match. A pair with no row reads as zero stock at
// zero price.
func (c *SheetsClient) ReadStock(ctx context.Context, item, unit string) (models.StockQuote, error) {
	rows, err := c.getValues(ctx, stockRange)
	if err != nil {
		return models.StockQuote{}, err
	}
	if _, row := findStockRow(rows, item, unit); row != nil {
		return models.StockQuote{
			Stock: cellInt(row, 3),
			Price: cellInt(row, 4),
		}, nil
	}
	return models.StockQuote{}, nil
}

// WriteStock overwrites the stock cell of the first (item, unit) match.
// When the row has disappeared since the read, the write is skipped.
func (c *SheetsClient) WriteStock(ctx context.Context, item, unit string, newStock int) error {
	rows, err := c.getValues(ctx, stockRange)
	if err != nil {
		return err
	}
	idx, row := findStockRow(rows, item, unit)
	if row == nil {
		c.log.Warn("stock row vanished before write, skipping",
			zap.String("item", item), zap.String("unit", unit))
		return nil
	}
	return c.putValues(ctx, stockCellRange(idx), [][]any{{newStock}})
}

// AppendOrder assigns the next order number from the current row count
// and appends the record. The returned number is 1-based.
func (c *SheetsClient) AppendOrder(ctx context.Context, rec models.OrderRecord) (int, error) {
	c.appendMu.Lock()
	defer c.appendMu.Unlock()

	rows, err := c.getValues(ctx, ordersRange)
	if err != nil {
		return 0, err
	}
	orderNo := len(rows) + 1

	row := []any{
		orderNo,
		bangkokTime(rec.Timestamp),
		rec.Customer,
		rec.Item,
		rec.Quantity,
		rec.Unit,
		"",
		rec.DeliveryMethod,
		string(rec.Status),
		"",
		rec.Total,
	}
	if err := c.appendValues(ctx, ordersRange, [][]any{row}); err != nil {
		return 0, err
	}
	return orderNo, nil
}

func findStockRow(rows [][]any, item, unit string) (int, []any) {
	for i, row := range rows {
		if cellString(row, 0) == item && cellString(row, 1) == unit {
			return i, row
		}
	}
	return -1, nil
}

// stockCellRange maps a 0-based data row index to the A1 reference of
// its stock cell (column D, rows starting at 1).
func stockCellRange(idx int) string {
	return fmt.Sprintf("stock!D%d", idx+1)
}

func cellString(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func cellInt(row []any, i int) int {
	n, err := strconv.Atoi(cellString(row, i))
	if err != nil {
		return 0
	}
	return n
}

func bangkokTime(t time.Time) string {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.In(loc).Format("2006-01-02T15:04:05")
}

func (c *SheetsClient) getValues(ctx context.Context, rng string) ([][]any, error) {
	var vr struct {
		Values [][]any `json:"values"`
	}
	u := fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.sheetID, url.PathEscape(rng))
	if err := c.call(ctx, http.MethodGet, u, nil, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (c *SheetsClient) putValues(ctx context.Context, rng string, values [][]any) error {
	u := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW", c.baseURL, c.sheetID, url.PathEscape(rng))
	return c.call(ctx, http.MethodPut, u, map[string]any{"values": values}, nil)
}

func (c *SheetsClient) appendValues(ctx context.Context, rng string, values [][]any) error {
	u := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED", c.baseURL, c.sheetID, url.PathEscape(rng))
	return c.call(ctx, http.MethodPost, u, map[string]any{"values": values}, nil)
}

func (c *SheetsClient) call(ctx context.Context, method, u string, body, out any) error {
	if c.tokens == nil {
		return ErrNotConfigured
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("sheets request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sheets request: %s: %s", resp.Status, string(b))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
