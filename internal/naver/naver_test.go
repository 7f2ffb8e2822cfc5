package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

const siseBody = `
 [['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
["20250102", 35000, 35500, 34800, 35200, 123456, 10.5],
["20250103", 35200, 35900, 35100, 35800, null, 10.6]
]
`

func TestGetDailyChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/siseJson.naver", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "069500", q.Get("symbol"))
		assert.Equal(t, "20250101", q.Get("startTime"))
		assert.Equal(t, "20250110", q.Get("endTime"))
		assert.Equal(t, "day", q.Get("timeframe"))
		w.Write([]byte(siseBody))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, srv.URL)
	bars, err := c.GetDailyChart(context.Background(), "069500",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, RawBar{Date: "20250102", Open: "35000", High: "35500", Low: "34800", Close: "35200", Volume: "123456"}, bars[0])
	assert.Equal(t, "", bars[1].Volume, "null volume is reported as missing")
}

func TestParseSiseJSON_HeaderOnly(t *testing.T) {
	bars, err := parseSiseJSON([]byte(`[['날짜', '시가']]`))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestParseSiseJSON_Garbage(t *testing.T) {
	_, err := parseSiseJSON([]byte(`<html>maintenance</html>`))
	assert.Error(t, err)
}

func eucKR(t *testing.T, s string) []byte {
	t.Helper()
	out, err := korean.EUCKR.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func TestGetETFList_DecodesEUCKR(t *testing.T) {
	body := eucKR(t, `{"resultCode":"success","result":{"etfItemList":[
		{"itemcode":"069500","etfTabCode":1,"itemname":"KODEX 200"},
		{"itemcode":"458730","etfTabCode":1,"itemname":"TIGER 미국배당다우존스"}
	]}}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sise/etfItemList.nhn", r.URL.Path)
		w.Header().Set("Content-Type", "application/json;charset=EUC-KR")
		w.Write(body)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, srv.URL)
	items, err := c.GetETFList(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "069500", items[0].Code)
	assert.Equal(t, "TIGER 미국배당다우존스", items[1].Name)
}

func TestGetETFList_FailureCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCode":"fail"}`))
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL(srv.URL, srv.URL).GetETFList(context.Background())
	assert.Error(t, err)
}

const exchangePage = `<html><body>
<table class="tbl_exchange today">
<thead><tr><th>날짜</th><th>매매기준율</th></tr></thead>
<tbody>
<tr class="up"><td class="date">2025.01.03</td><td class="num">1,470.50</td><td class="num">2.50</td></tr>
<tr class="down"><td class="date">2025.01.02</td><td class="num">1,468.00</td><td class="num">4.00</td></tr>
<tr><td colspan="6">&nbsp;</td></tr>
</tbody>
</table></body></html>`

func TestGetUSDKRWPage(t *testing.T) {
	body := eucKR(t, exchangePage)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/marketindex/exchangeDailyQuote.naver", r.URL.Path)
		assert.Equal(t, "FX_USDKRW", r.URL.Query().Get("marketindexCd"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write(body)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, srv.URL)
	rates, err := c.GetUSDKRWPage(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rates, 2, "rows with fewer than two cells are ignored")
	assert.Equal(t, RawRate{Date: "2025.01.03", Rate: "1,470.50"}, rates[0])
	assert.Equal(t, "2025.01.02", rates[1].Date)
}

func TestGetUSDKRWPage_PastEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<table class="tbl_exchange"><tbody></tbody></table>`))
	}))
	defer srv.Close()

	rates, err := NewClientWithBaseURL(srv.URL, srv.URL).GetUSDKRWPage(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestGet_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL(srv.URL, srv.URL).GetUSDKRWPage(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
