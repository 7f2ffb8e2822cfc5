package alphavantage

// apiNotes carries the fields AlphaVantage uses instead of data when a call is throttled or rejected
type apiNotes struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (n apiNotes) message() string {
	switch {
	case n.ErrorMessage != "":
		return n.ErrorMessage
	case n.Note != "":
		return n.Note
	case n.Information != "":
		return n.Information
	}
	return "empty response"
}

// TimeSeriesDailyResponse represents the AlphaVantage TIME_SERIES_DAILY response
type TimeSeriesDailyResponse struct {
	apiNotes
	TimeSeries map[string]DailyOHLCV `json:"Time Series (Daily)"`
}

// DailyOHLCV is one day of the TIME_SERIES_DAILY payload
type DailyOHLCV struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// DividendsResponse represents the AlphaVantage DIVIDENDS response
type DividendsResponse struct {
	apiNotes
	Symbol string          `json:"symbol"`
	Data   []DividendEntry `json:"data"`
}

// DividendEntry is one distribution of the DIVIDENDS payload
type DividendEntry struct {
	ExDividendDate  string `json:"ex_dividend_date"`
	DeclarationDate string `json:"declaration_date"`
	RecordDate      string `json:"record_date"`
	PaymentDate     string `json:"payment_date"`
	Amount          string `json:"amount"`
}

// RawBar is a daily bar with its fields as text
type RawBar struct {
	Date   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// RawDividend is a distribution with its fields as text. Dates may be "None".
type RawDividend struct {
	ExDividendDate string
	RecordDate     string
	PaymentDate    string
	Amount         string
}
