package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ETFItem is one row of the Naver ETF item list
type ETFItem struct {
	Code string `json:"itemcode"`
	Name string `json:"itemname"`
	// TabCode is Naver's ETF category (1 domestic index, 2 sector, 3 overseas, 4 leverage, 5 commodity, 6 bond, 7 other)
	TabCode int `json:"etfTabCode"`
}

type etfItemListResponse struct {
	ResultCode string `json:"resultCode"`
	Result     struct {
		ETFItemList []ETFItem `json:"etfItemList"`
	} `json:"result"`
}

// GetETFList fetches every ETF currently listed on KRX
func (c *Client) GetETFList(ctx context.Context) ([]ETFItem, error) {
	body, err := c.get(ctx, c.financeURL+"/api/sise/etfItemList.nhn")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch etf list: %w", err)
	}

	var resp etfItemListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal etf list: %w", err)
	}
	if !strings.EqualFold(resp.ResultCode, "success") {
		return nil, fmt.Errorf("etf list returned result code %q", resp.ResultCode)
	}
	return resp.Result.ETFItemList, nil
}
