package tradingview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/httputil"
	"github.com/wonny/themescreen/pkg/logger"
)

// ErrUpstream wraps every transport-level failure of the scanner
var ErrUpstream = errors.New("tradingview upstream failure")

// StatusError is returned when the scanner answers with a non-success status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TradingView API %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// DefaultBaseURL is the public scanner host
const DefaultBaseURL = "https://scanner.tradingview.com"

// overFetchFactor compensates for rows dropped by company deduplication
const overFetchFactor = 1.5

// Client fetches screen candidates from the TradingView scanner
// ⭐ SSOT: TradingView 스캐너 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new scanner client. The http client must not retry:
// upstream failures are reported to the caller untouched.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("tradingview"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

type scanRequest struct {
	Markets []string           `json:"markets"`
	Symbols scanSymbols        `json:"symbols"`
	Options map[string]string  `json:"options"`
	Columns []string           `json:"columns"`
	Filter  []contracts.Filter `json:"filter"`
	Sort    scanSort           `json:"sort"`
	Range   [2]int             `json:"range"`
}

type scanSymbols struct {
	Query   scanQuery `json:"query"`
	Tickers []string  `json:"tickers"`
}

type scanQuery struct {
	Types []string `json:"types"`
}

type scanSort struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

type scanResponse struct {
	TotalCount int       `json:"totalCount"`
	Data       []scanRow `json:"data"`
}

type scanRow struct {
	S string        `json:"s"`
	D []interface{} `json:"d"`
}

// FetchCandidates runs one scan and returns at most limit rows deduplicated
// by company name. No retry is attempted.
func (c *Client) FetchCandidates(ctx context.Context, filters []contracts.Filter, limit int, market contracts.Market) ([]contracts.CandidateRecord, error) {
	if market == "" {
		market = contracts.MarketAmerica
	}

	body := scanRequest{
		Markets: []string{string(market)},
		Symbols: scanSymbols{Query: scanQuery{Types: []string{}}, Tickers: []string{}},
		Options: map[string]string{"lang": "en"},
		Columns: Columns,
		Filter:  BuildFilters(filters),
		Sort:    scanSort{SortBy: "market_cap_basic", SortOrder: "desc"},
		Range:   [2]int{0, int(math.Ceil(float64(limit) * overFetchFactor))},
	}

	url := fmt.Sprintf("%s/%s/scan", c.baseURL, market)
	resp, err := c.httpClient.PostJSON(ctx, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	var decoded scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode scan response: %w", ErrUpstream, err)
	}

	if len(decoded.Data) == 0 {
		return []contracts.CandidateRecord{}, nil
	}

	now := c.now()
	rows := make([]contracts.CandidateRecord, 0, len(decoded.Data))
	for _, r := range decoded.Data {
		rows = append(rows, mapRow(r.D, market, now))
	}

	out := Dedupe(rows)
	if len(out) > limit {
		out = out[:limit]
	}

	c.logger.WithFields(map[string]interface{}{
		"market":      market,
		"total_count": decoded.TotalCount,
		"rows":        len(rows),
		"returned":    len(out),
	}).Info("Fetched screen candidates")

	return out, nil
}

// BuildFilters translates theme filters into scanner filters.
// "between" is an alias of "in_range"; other operators pass through.
func BuildFilters(filters []contracts.Filter) []contracts.Filter {
	out := make([]contracts.Filter, 0, len(filters))
	for _, f := range filters {
		op := f.Operation
		if op == "between" {
			op = "in_range"
		}
		out = append(out, contracts.Filter{Left: f.Left, Operation: op, Right: f.Right})
	}
	return out
}

// Dedupe keeps one row per lowercased company name. A later row replaces the
// kept one only when its market cap is strictly larger (missing counts as 0).
// Output keeps first-seen order.
func Dedupe(rows []contracts.CandidateRecord) []contracts.CandidateRecord {
	index := make(map[string]int, len(rows))
	out := make([]contracts.CandidateRecord, 0, len(rows))

	for _, row := range rows {
		key := strings.ToLower(row.Company)
		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, row)
			continue
		}
		if capOrZero(row.MarketCap) > capOrZero(out[pos].MarketCap) {
			out[pos] = row
		}
	}
	return out
}

func capOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
