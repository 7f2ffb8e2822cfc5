package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fintrack/config"
)

const usaPage = `<html><body>
<table>
<tr><th>Ex-Date</th><th>Amount</th><th>Declared</th><th>Record</th><th>Pay</th></tr>
<tr><td>03/20/2025</td><td>$0.2488</td><td>03/18/2025</td><td>03/20/2025</td><td>03/25/2025</td></tr>
<tr><td>Dec 11, 2024</td><td>$0.2645</td><td>Dec 9, 2024</td><td>Dec 11, 2024</td><td>Dec 16, 2024</td></tr>
<tr><td colspan="5">Show more</td></tr>
</table></body></html>`

func TestFetch_USALayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/symbol/SCHD/dividends", r.URL.Path)
		w.Write([]byte(usaPage))
	}))
	defer srv.Close()

	p := NewDividendPage(config.DividendPageConfig{
		PageURL:        srv.URL + "/symbol/{ticker}/dividends",
		RecordDateCol:  3,
		PaymentDateCol: 4,
		AmountCol:      1,
		TaxableCol:     -1,
	})

	rows, err := p.Fetch(context.Background(), "SCHD")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RawDividend{RecordDate: "03/20/2025", PaymentDate: "03/25/2025", Amount: "$0.2488"}, rows[0])
	assert.Equal(t, "Dec 11, 2024", rows[1].RecordDate)
	assert.Empty(t, rows[1].Taxable)
}

func TestFetch_DomesticLayout(t *testing.T) {
	page := `<table><tbody>
<tr><td>1</td><td>x</td><td>x</td><td>x</td><td>2025.01.31</td><td>2025.02.04</td><td>x</td><td>1,250원</td><td>1,100</td></tr>
</tbody></table>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p := NewDividendPage(config.DividendPageConfig{
		PageURL:        srv.URL + "/etf/{ticker}",
		RecordDateCol:  4,
		PaymentDateCol: 5,
		AmountCol:      7,
		TaxableCol:     8,
	})

	rows, err := p.Fetch(context.Background(), "458730")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, RawDividend{RecordDate: "2025.01.31", PaymentDate: "2025.02.04", Amount: "1,250원", Taxable: "1,100"}, rows[0])
}

func TestFetch_NoPageURL(t *testing.T) {
	_, err := NewDividendPage(config.DividendPageConfig{}).Fetch(context.Background(), "SCHD")
	assert.ErrorIs(t, err, ErrNoPageURL)
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewDividendPage(config.DividendPageConfig{PageURL: srv.URL + "/{ticker}"}).Fetch(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestURL(t *testing.T) {
	p := NewDividendPage(config.DividendPageConfig{PageURL: "https://example.com/{ticker}/dividends?t={ticker}"})
	assert.Equal(t, "https://example.com/SCHD/dividends?t=SCHD", p.URL("SCHD"))
}
