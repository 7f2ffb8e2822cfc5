package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/services"
)

// newTestRouter mounts every route on handlers without backing stores.
// Only paths that reject the request before touching a store are safe to hit.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handlers{
		Institutions: &InstitutionHandler{},
		Codes:        &CodeHandler{},
		Experience:   &ExperienceHandler{},
		Planning:     &PlanningHandler{},
		Accounts:     map[models.AccountKind]*AccountHandler{},
		Holdings:     map[models.AccountKind]*HoldingHandler{},
		Sales:        &SaleHandler{},
		ETFs:         map[models.Market]*ETFHandler{},
		Charts:       map[models.Market]*ChartHandler{},
		ETFDividends: map[models.Market]*ETFDividendHandler{},
		Indicators:   &IndicatorHandler{},
		Exchange:     &ExchangeHandler{},
	}
	for _, kind := range models.AccountKinds {
		h.Accounts[kind] = &AccountHandler{kind: kind}
		h.Holdings[kind] = &HoldingHandler{kind: kind}
	}
	for _, m := range []models.Market{models.MarketDomestic, models.MarketUSA} {
		h.ETFs[m] = &ETFHandler{market: m}
		h.Charts[m] = &ChartHandler{market: m}
		h.ETFDividends[m] = &ETFDividendHandler{market: m}
	}
	RegisterRoutes(r.Group("/api/v1"), h)
	return r
}

func doRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"duplicate", fmt.Errorf("create: %w", repository.ErrDuplicateCode), http.StatusBadRequest, "duplicate"},
		{"not found", repository.ErrAccountNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("get bar: %w", repository.ErrBarNotFound), http.StatusNotFound, "not_found"},
		{"validation", fmt.Errorf("%w: quantity must be positive", services.ErrInvalidHolding), http.StatusBadRequest, "bad_request"},
		{"market data", services.ErrInvalidMarketData, http.StatusBadRequest, "bad_request"},
		{"referenced", repository.ErrReferenced, http.StatusBadRequest, "bad_request"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, errorBody(t, w).Error)
		})
	}
}

func TestRoutes_RejectMalformedParams(t *testing.T) {
	r := newTestRouter()
	tests := []struct {
		name string
		path string
	}{
		{"non-numeric id", "/api/v1/financial-institutions/abc"},
		{"zero id", "/api/v1/isa-accounts/0"},
		{"negative skip", "/api/v1/common-code-masters?skip=-1"},
		{"limit too large", "/api/v1/experience-lab-stocks?limit=1001"},
		{"limit zero", "/api/v1/usa-indicators?limit=0"},
		{"bad expense type", "/api/v1/expenses?type=weekly"},
		{"bad income type", "/api/v1/income-targets?type=monthly"},
		{"bad year_month", "/api/v1/isa-account-sales/account/1?year_month=2024-13"},
		{"bad dividend year_month", "/api/v1/isa-account-dividends/account/1?year_month=202401"},
		{"missing months_ago", "/api/v1/domestic-etfs-daily-chart/etf/1/period"},
		{"months_ago too large", "/api/v1/usa-etfs-dividend/etf/1/period?months_ago=241"},
		{"bad chart date", "/api/v1/usa-etfs-daily-chart/etf/1/date/2024-02-30"},
		{"bad exchange date", "/api/v1/usd-krw-exchange/date/yesterday"},
		{"bad account id", "/api/v1/irp-account-details/account/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "bad_request", errorBody(t, w).Error)
		})
	}
}

func TestRoutes_RejectMalformedJSON(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{
		"/api/v1/financial-institutions",
		"/api/v1/isa-accounts",
		"/api/v1/expenses",
		"/api/v1/domestic-etfs",
		"/api/v1/domestic-etfs/bulk",
	} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := doRequest(r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestDownloadTemplate(t *testing.T) {
	r := newTestRouter()
	w := doRequest(r, httptest.NewRequest(http.MethodGet, "/api/v1/pension-fund-account-details/template/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	sheet, err := ParseHoldingsXLSX(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, sheet.Errors)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "069500", sheet.Rows[0].StockCode)
	assert.Equal(t, 2, sheet.Rows[0].Row)
	assert.True(t, sheet.Rows[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, sheet.Rows[0].CurrentPrice.Equal(decimal.NewFromInt(52000)))
	assert.True(t, sheet.Rows[0].PurchaseFee.IsZero())
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_RejectsBeforeTouchingStore(t *testing.T) {
	r := newTestRouter()
	header := strings.Join(holdingsHeader, ",") + "\n"
	tests := []struct {
		name     string
		path     string
		filename string
		content  string
		wantMsg  string
	}{
		{"missing file", "/api/v1/isa-account-details/upload/1", "", "", "file is required"},
		{"unsupported extension", "/api/v1/isa-account-details/upload/1", "holdings.txt", header, "only .xlsx and .csv"},
		{"header only", "/api/v1/irp-account-details/upload/1", "holdings.csv", header, "no data rows"},
		{"empty file", "/api/v1/irp-account-details/upload/1", "holdings.csv", "", "no data rows"},
		{"blank rows only", "/api/v1/isa-account-details/upload/1", "holdings.CSV", header + ",,,,\n , , , , \n", "no data rows"},
		{"corrupt workbook", "/api/v1/isa-account-details/upload/1", "holdings.xlsx", "not a zip", "failed to open workbook"},
		{"bad account id", "/api/v1/isa-account-details/upload/abc", "holdings.csv", header, "invalid account_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, uploadRequest(t, tt.path, tt.filename, tt.content))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, errorBody(t, w).Message, tt.wantMsg)
		})
	}
}

func TestParseHoldingsCSV(t *testing.T) {
	input := strings.Join([]string{
		"종목코드,수량,매입평균가,현재가,매입수수료",
		"069500,10,\"50,000\",52000,150",
		"360750,5,17000.5,18000",
		",,,,",
		"12345,1,1,1,0",
		"133690,,100,100,0",
		"133690,3,abc,100,0",
		"133690,3,100,-1,0",
		"",
		"  305720 , 7 , 9000 , 9100 , ",
	}, "\n")

	sheet, err := ParseHoldingsCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 3)
	first := sheet.Rows[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "069500", first.StockCode)
	assert.True(t, first.PurchaseAvgPrice.Equal(decimal.NewFromInt(50000)))
	assert.True(t, first.PurchaseFee.Equal(decimal.NewFromInt(150)))

	second := sheet.Rows[1]
	assert.Equal(t, "360750", second.StockCode)
	assert.True(t, second.PurchaseAvgPrice.Equal(decimal.RequireFromString("17000.5")))
	assert.True(t, second.PurchaseFee.IsZero())

	last := sheet.Rows[2]
	assert.Equal(t, "305720", last.StockCode)
	assert.True(t, last.Quantity.Equal(decimal.NewFromInt(7)))

	require.Len(t, sheet.Errors, 4)
	assert.Contains(t, sheet.Errors[0], "row 5:")
	assert.Contains(t, sheet.Errors[0], "must be 6 characters")
	assert.Contains(t, sheet.Errors[1], "row 6: quantity is required")
	assert.Contains(t, sheet.Errors[2], "row 7: invalid purchase_avg_price")
	assert.Contains(t, sheet.Errors[3], "row 8: current_price must not be negative")
}

func TestParseHoldingsCSV_Empty(t *testing.T) {
	_, err := ParseHoldingsCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, errNoDataRows)
}

func TestParseHoldingRow_EmptyCode(t *testing.T) {
	_, err := parseHoldingRow(3, []string{"  ", "1", "1", "1"})
	require.Error(t, err)
	assert.Equal(t, "row 3: stock code is empty", err.Error())
}
