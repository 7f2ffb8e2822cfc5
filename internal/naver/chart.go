package naver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// RawBar is one siseJson row with its fields as text.
// Date is YYYYMMDD as sent by Naver.
type RawBar struct {
	Date   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// GetDailyChart fetches daily bars for a KRX code between start and end inclusive
func (c *Client) GetDailyChart(ctx context.Context, code string, start, end time.Time) ([]RawBar, error) {
	params := url.Values{}
	params.Set("symbol", code)
	params.Set("requestType", "1")
	params.Set("startTime", start.Format("20060102"))
	params.Set("endTime", end.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.get(ctx, c.apiURL+"/siseJson.naver?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", code, err)
	}
	return parseSiseJSON(body)
}

// parseSiseJSON reads the JavaScript array literal siseJson returns:
//
//	[['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
//	["20250102", 35000, 35500, 34800, 35200, 123456, 10.5], ...]
//
// The header row uses single quotes, so quotes are normalized before decoding.
func parseSiseJSON(body []byte) ([]RawBar, error) {
	normalized := bytes.ReplaceAll(bytes.TrimSpace(body), []byte("'"), []byte(`"`))
	if len(normalized) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.UseNumber()
	var rows [][]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode siseJson: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	bars := make([]RawBar, 0, len(rows)-1)
	for _, row := range rows[1:] {
		bars = append(bars, RawBar{
			Date:   cell(row, 0),
			Open:   cell(row, 1),
			High:   cell(row, 2),
			Low:    cell(row, 3),
			Close:  cell(row, 4),
			Volume: cell(row, 5),
		})
	}
	return bars, nil
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(row[i])
}
