package tradingview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/httputil"
	"github.com/wonny/themescreen/pkg/logger"
)

func row(name, company string, marketCap interface{}) []interface{} {
	d := make([]interface{}, len(Columns))
	d[colName] = name
	d[colDescription] = company
	d[colExchange] = "NASDAQ"
	d[colSector] = "Electronic Technology"
	d[colClose] = 100.0
	d[colMarketCap] = marketCap
	d[colPE] = 25.0
	d[colRevGrowth] = 20.0
	d[colGrossMargin] = 55.0
	d[colFCFMargin] = -3.0
	d[colRSI] = 48.0
	return d
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	client := NewClient(httputil.NewWithTimeout(log, 5*time.Second).DisableRetry(), srv.URL, log)
	client.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return client, srv
}

func writeRows(w http.ResponseWriter, rows ...[]interface{}) {
	resp := map[string]interface{}{"totalCount": len(rows)}
	data := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, map[string]interface{}{"s": "X:" + r[colName].(string), "d": r})
	}
	resp["data"] = data
	_ = json.NewEncoder(w).Encode(resp)
}

func TestFetchCandidates_RequestShape(t *testing.T) {
	var got map[string]interface{}
	var path string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeRows(w)
	})

	filters := []contracts.Filter{
		{Left: "market_cap_basic", Operation: "greater", Right: 5e9},
		{Left: "RSI", Operation: "between", Right: []interface{}{30, 60}},
	}
	_, err := client.FetchCandidates(context.Background(), filters, 25, contracts.MarketChina)
	require.NoError(t, err)

	assert.Equal(t, "/china/scan", path)
	assert.Equal(t, []interface{}{"china"}, got["markets"])
	assert.Equal(t, []interface{}{0.0, 38.0}, got["range"])
	assert.Len(t, got["columns"], 21)
	assert.Equal(t, map[string]interface{}{"sortBy": "market_cap_basic", "sortOrder": "desc"}, got["sort"])

	sent := got["filter"].([]interface{})
	require.Len(t, sent, 2)
	assert.Equal(t, "greater", sent[0].(map[string]interface{})["operation"])
	assert.Equal(t, "in_range", sent[1].(map[string]interface{})["operation"])
}

func TestFetchCandidates_MapsRows(t *testing.T) {
	earnings := float64(1_700_000_000 + 10*86400)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		d := row("NASDAQ:NVDA", "NVIDIA Corporation", 3e12)
		d[colEarnings] = earnings
		writeRows(w, d)
	})

	rows, err := client.FetchCandidates(context.Background(), nil, 10, contracts.MarketAmerica)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	c := rows[0]
	assert.Equal(t, "NVDA", c.Ticker)
	assert.Equal(t, "NVIDIA Corporation", c.Company)
	assert.Equal(t, "NASDAQ", c.Exchange)
	assert.Equal(t, contracts.MarketAmerica, c.Market)
	assert.InDelta(t, 0.2, *c.RevGrowth, 1e-9)
	assert.InDelta(t, 0.55, *c.GrossMargin, 1e-9)
	assert.InDelta(t, -0.03, *c.FCFMargin, 1e-9)
	assert.Nil(t, c.OpMargin)
	assert.Nil(t, c.SMA200)
	require.NotNil(t, c.EarningsDays)
	assert.Equal(t, 10, *c.EarningsDays)
	require.NotNil(t, c.EarningsDate)
	assert.Equal(t, "2023-11-24", *c.EarningsDate)
}

func TestFetchCandidates_PastEarningsHasNoDays(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		d := row("AAPL", "Apple Inc.", 3e12)
		d[colEarnings] = float64(1_700_000_000 - 5*86400)
		writeRows(w, d)
	})

	rows, err := client.FetchCandidates(context.Background(), nil, 10, contracts.MarketAmerica)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.Nil(t, rows[0].EarningsDays)
	assert.NotNil(t, rows[0].EarningsDate)
}

func TestFetchCandidates_DedupeAndLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeRows(w,
			row("GOOG", "Alphabet Inc.", 5e9),
			row("MSFT", "Microsoft", 2e12),
			row("GOOGL", "ALPHABET INC.", 8e9),
			row("GOOGX", "alphabet inc.", 8e9),
			row("AMZN", "Amazon", nil),
		)
	})

	rows, err := client.FetchCandidates(context.Background(), nil, 2, contracts.MarketAmerica)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "GOOGL", rows[0].Ticker)
	assert.Equal(t, "MSFT", rows[1].Ticker)
}

func TestFetchCandidates_EmptyData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalCount":0,"data":[]}`))
	})

	rows, err := client.FetchCandidates(context.Background(), nil, 10, contracts.MarketAmerica)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFetchCandidates_NonSuccessStatus(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.FetchCandidates(context.Background(), nil, 10, contracts.MarketAmerica)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
	assert.Equal(t, 1, calls)
}

func TestFetchCandidates_Unreachable(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.FetchCandidates(context.Background(), nil, 10, contracts.MarketAmerica)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestDedupe_KeepsFirstOnEqualCap(t *testing.T) {
	rows := Dedupe([]contracts.CandidateRecord{
		{Ticker: "A", Company: "Same", MarketCap: contracts.Float(5)},
		{Ticker: "B", Company: "same", MarketCap: contracts.Float(5)},
		{Ticker: "C", Company: "SAME"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Ticker)
}

func TestMapRow_CompanyFallsBackToTicker(t *testing.T) {
	d := make([]interface{}, len(Columns))
	d[colName] = "SSE:600519"

	rec := mapRow(d, contracts.MarketChina, time.Now())
	assert.Equal(t, "600519", rec.Ticker)
	assert.Equal(t, "600519", rec.Company)
	assert.Nil(t, rec.Close)
	assert.Nil(t, rec.EarningsDate)
}
