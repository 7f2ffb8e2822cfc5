package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, wantFunction, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantFunction, r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetDailyBars(t *testing.T) {
	srv := newTestServer(t, "TIME_SERIES_DAILY", `{
		"Meta Data": {"2. Symbol": "SCHD"},
		"Time Series (Daily)": {
			"2025-01-03": {"1. open": "27.10", "2. high": "27.45", "3. low": "27.00", "4. close": "27.40", "5. volume": "1200300"},
			"2025-01-02": {"1. open": "27.00", "2. high": "27.20", "3. low": "26.90", "4. close": "27.05"}
		}
	}`)

	c := NewClientWithBaseURL("test-key", srv.URL)
	bars, err := c.GetDailyBars(context.Background(), "SCHD", "full")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "2025-01-02", bars[0].Date, "bars come back oldest first")
	assert.Equal(t, "", bars[0].Volume, "missing field stays empty")
	assert.Equal(t, "27.40", bars[1].Close)
	assert.Equal(t, "1200300", bars[1].Volume)
}

func TestGetDailyBars_RateLimitNote(t *testing.T) {
	srv := newTestServer(t, "TIME_SERIES_DAILY", `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`)

	c := NewClientWithBaseURL("test-key", srv.URL)
	_, err := c.GetDailyBars(context.Background(), "SCHD", "full")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPILimit)
	assert.Contains(t, err.Error(), "call frequency")
}

func TestGetDividends(t *testing.T) {
	srv := newTestServer(t, "DIVIDENDS", `{
		"symbol": "SCHD",
		"data": [
			{"ex_dividend_date": "2025-03-26", "declaration_date": "2025-03-24", "record_date": "2025-03-26", "payment_date": "2025-03-31", "amount": "0.2488"},
			{"ex_dividend_date": "2024-12-11", "declaration_date": "None", "record_date": "None", "payment_date": "2024-12-16", "amount": "0.7615"}
		]
	}`)

	c := NewClientWithBaseURL("test-key", srv.URL)
	divs, err := c.GetDividends(context.Background(), "SCHD")
	require.NoError(t, err)
	require.Len(t, divs, 2)
	assert.Equal(t, "2025-03-26", divs[0].RecordDate)
	assert.Equal(t, "0.2488", divs[0].Amount)
	assert.Equal(t, "None", divs[1].RecordDate)
	assert.Equal(t, "2024-12-11", divs[1].ExDividendDate)
}

func TestGetDividends_EmptyHistory(t *testing.T) {
	srv := newTestServer(t, "DIVIDENDS", `{"symbol": "NEWETF", "data": []}`)

	c := NewClientWithBaseURL("test-key", srv.URL)
	divs, err := c.GetDividends(context.Background(), "NEWETF")
	require.NoError(t, err)
	assert.Empty(t, divs)
}

func TestCall_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	_, err := c.GetDividends(context.Background(), "SCHD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGetListingStatus_ActiveETFs(t *testing.T) {
	csvBody := "symbol,name,exchange,assetType,ipoDate,delistingDate,status\r\n" +
		"SCHD,Schwab US Dividend Equity ETF,NYSE ARCA,ETF,2011-10-20,null,Active\r\n" +
		"AAPL,Apple Inc,NASDAQ,Stock,1980-12-12,null,Active\r\n" +
		"JEPI,JPMorgan Equity Premium Income ETF,NYSE ARCA,ETF,2020-05-21,null,Active\r\n" +
		"SCHD,Schwab US Dividend Equity ETF,BATS,ETF,2011-10-20,null,Active\r\n" +
		"OLDX,Old ETF,NYSE ARCA,ETF,2001-01-01,2020-01-01,Delisted\r\n"
	srv := newTestServer(t, "LISTING_STATUS", csvBody)

	c := NewClientWithBaseURL("test-key", srv.URL)
	entries, err := c.GetListingStatus(context.Background(), "active")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "Schwab US Dividend Equity ETF", entries[0].Name)

	etfs := ActiveETFs(entries)
	require.Len(t, etfs, 2)
	assert.Equal(t, "SCHD", etfs[0].Symbol)
	assert.Equal(t, "NYSE ARCA", etfs[0].Exchange, "first listing of a duplicate symbol wins")
	assert.Equal(t, "JEPI", etfs[1].Symbol)
}

func TestGetListingStatus_ThrottledAnswersJSON(t *testing.T) {
	srv := newTestServer(t, "LISTING_STATUS", `{"Information": "API rate limit is 25 requests per day."}`)

	c := NewClientWithBaseURL("test-key", srv.URL)
	_, err := c.GetListingStatus(context.Background(), "active")
	assert.ErrorIs(t, err, ErrAPILimit)
	assert.Contains(t, err.Error(), "25 requests per day")
}

func TestGetListingStatus_ReordersColumnsAndSkipsShortRows(t *testing.T) {
	csvBody := "status,assetType,symbol,name,exchange,ipoDate,delistingDate\n" +
		"Active,ETF,VOO,Vanguard S&P 500 ETF,NYSE ARCA,2010-09-09,null\n" +
		"Active,ETF\n"
	srv := newTestServer(t, "LISTING_STATUS", csvBody)

	c := NewClientWithBaseURL("test-key", srv.URL)
	entries, err := c.GetListingStatus(context.Background(), "active")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "VOO", entries[0].Symbol)
	assert.Equal(t, "NYSE ARCA", entries[0].Exchange)
}

func TestGetListingStatus_RejectsUnknownState(t *testing.T) {
	c := NewClientWithBaseURL("test-key", "http://127.0.0.1:0")
	_, err := c.GetListingStatus(context.Background(), "pending")
	assert.Error(t, err)
}
