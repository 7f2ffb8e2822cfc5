package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/services"
)

// ETFHandler handles /domestic-etfs and /usa-etfs
type ETFHandler struct {
	market    models.Market
	marketSvc *services.MarketService
	etfRepo   *repository.ETFRepository
}

// NewETFHandler creates an ETFHandler bound to market
func NewETFHandler(market models.Market, marketSvc *services.MarketService, etfRepo *repository.ETFRepository) *ETFHandler {
	return &ETFHandler{market: market, marketSvc: marketSvc, etfRepo: etfRepo}
}

// List handles GET /{market}-etfs
// @Summary List ETFs
// @Tags etfs
// @Produce json
// @Param etf_type query string false "Only ETFs of this type"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.ETF
// @Router /domestic-etfs [get]
// @Router /usa-etfs [get]
func (h *ETFHandler) List(c *gin.Context) {
	etfType := c.Query("etf_type")
	listPage(c, func(ctx context.Context, p models.Page) ([]models.ETF, error) {
		return h.etfRepo.List(ctx, h.market, etfType, p.Skip, p.Limit)
	})
}

// Get handles GET /{market}-etfs/:id
// @Summary Get an ETF
// @Tags etfs
// @Produce json
// @Param id path int true "ETF ID"
// @Success 200 {object} models.ETF
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs/{id} [get]
// @Router /usa-etfs/{id} [get]
func (h *ETFHandler) Get(c *gin.Context) {
	getOne(c, func(ctx context.Context, id int64) (*models.ETF, error) {
		return h.etfRepo.GetByID(ctx, h.market, id)
	})
}

// Create handles POST /{market}-etfs
// @Summary Create an ETF
// @Tags etfs
// @Accept json
// @Produce json
// @Param body body models.ETFRequest true "ETF"
// @Success 201 {object} models.ETF
// @Failure 400 {object} models.ErrorResponse
// @Router /domestic-etfs [post]
// @Router /usa-etfs [post]
func (h *ETFHandler) Create(c *gin.Context) {
	createOne(c, func(ctx context.Context, req *models.ETFRequest) (*models.ETF, error) {
		return h.marketSvc.CreateETF(ctx, h.market, req)
	})
}

// BulkCreate handles POST /{market}-etfs/bulk
// @Summary Create many ETFs
// @Description Tickers that already exist are skipped, invalid items are reported in errors
// @Tags etfs
// @Accept json
// @Produce json
// @Param body body []models.ETFRequest true "ETFs"
// @Success 200 {object} models.BulkCreateResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /domestic-etfs/bulk [post]
// @Router /usa-etfs/bulk [post]
func (h *ETFHandler) BulkCreate(c *gin.Context) {
	var reqs []models.ETFRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.marketSvc.BulkCreateETFs(c.Request.Context(), h.market, reqs))
}

// Update handles PUT /{market}-etfs/:id
// @Summary Update an ETF
// @Tags etfs
// @Accept json
// @Produce json
// @Param id path int true "ETF ID"
// @Param body body models.ETFRequest true "ETF"
// @Success 200 {object} models.ETF
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs/{id} [put]
// @Router /usa-etfs/{id} [put]
func (h *ETFHandler) Update(c *gin.Context) {
	updateOne(c, func(ctx context.Context, id int64, req *models.ETFRequest) (*models.ETF, error) {
		return h.marketSvc.UpdateETF(ctx, h.market, id, req)
	})
}

// Delete handles DELETE /{market}-etfs/:id
// @Summary Delete an ETF with its chart and dividends
// @Tags etfs
// @Param id path int true "ETF ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs/{id} [delete]
// @Router /usa-etfs/{id} [delete]
func (h *ETFHandler) Delete(c *gin.Context) {
	deleteOne(c, "etf", func(ctx context.Context, id int64) error {
		return h.etfRepo.Delete(ctx, h.market, id)
	})
}

// monthsAgo reads the required ?months_ago query parameter
func monthsAgo(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Query("months_ago"))
	if err != nil || n < 1 || n > services.MaxMonthsAgo {
		badRequest(c, "months_ago must be between 1 and "+strconv.Itoa(services.MaxMonthsAgo))
		return 0, false
	}
	return n, true
}

// ChartHandler handles /domestic-etfs-daily-chart and /usa-etfs-daily-chart
type ChartHandler struct {
	market    models.Market
	marketSvc *services.MarketService
	chartRepo *repository.ChartRepository
}

// NewChartHandler creates a ChartHandler bound to market
func NewChartHandler(market models.Market, marketSvc *services.MarketService, chartRepo *repository.ChartRepository) *ChartHandler {
	return &ChartHandler{market: market, marketSvc: marketSvc, chartRepo: chartRepo}
}

// ListByETF handles GET /{market}-etfs-daily-chart/etf/:etf_id
// @Summary List the daily bars of an ETF, newest first
// @Tags charts
// @Produce json
// @Param etf_id path int true "ETF ID"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.DailyBar
// @Failure 400 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart/etf/{etf_id} [get]
// @Router /usa-etfs-daily-chart/etf/{etf_id} [get]
func (h *ChartHandler) ListByETF(c *gin.Context) {
	etfID, ok := parseID(c, "etf_id")
	if !ok {
		return
	}
	listPage(c, func(ctx context.Context, p models.Page) ([]models.DailyBar, error) {
		return h.chartRepo.ListByETF(ctx, h.market, etfID, p.Skip, p.Limit)
	})
}

// Latest handles GET /{market}-etfs-daily-chart/etf/:etf_id/latest
// @Summary Get the most recent bar of an ETF
// @Tags charts
// @Produce json
// @Param etf_id path int true "ETF ID"
// @Success 200 {object} models.DailyBar
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart/etf/{etf_id}/latest [get]
// @Router /usa-etfs-daily-chart/etf/{etf_id}/latest [get]
func (h *ChartHandler) Latest(c *gin.Context) {
	etfID, ok := parseID(c, "etf_id")
	if !ok {
		return
	}
	bar, err := h.chartRepo.Latest(c.Request.Context(), h.market, etfID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bar)
}

// ByDate handles GET /{market}-etfs-daily-chart/etf/:etf_id/date/:date
// @Summary Get the bar of an ETF for one date
// @Tags charts
// @Produce json
// @Param etf_id path int true "ETF ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.DailyBar
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart/etf/{etf_id}/date/{date} [get]
// @Router /usa-etfs-daily-chart/etf/{etf_id}/date/{date} [get]
func (h *ChartHandler) ByDate(c *gin.Context) {
	etfID, ok := parseID(c, "etf_id")
	if !ok {
		return
	}
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	bar, err := h.chartRepo.GetByDate(c.Request.Context(), h.market, etfID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bar)
}

// Period handles GET /{market}-etfs-daily-chart/etf/:etf_id/period
// @Summary List the bars of an ETF for the last N months, oldest first
// @Tags charts
// @Produce json
// @Param etf_id path int true "ETF ID"
// @Param months_ago query int true "Window length in months (1-240)"
// @Success 200 {array} models.DailyBar
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart/etf/{etf_id}/period [get]
// @Router /usa-etfs-daily-chart/etf/{etf_id}/period [get]
func (h *ChartHandler) Period(c *gin.Context) {
	etfID, ok := parseID(c, "etf_id")
	if !ok {
		return
	}
	months, ok := monthsAgo(c)
	if !ok {
		return
	}
	bars, err := h.marketSvc.ChartPeriod(c.Request.Context(), h.market, etfID, months)
	if err != nil {
		respondError(c, err)
		return
	}
	if bars == nil {
		bars = []models.DailyBar{}
	}
	c.JSON(http.StatusOK, bars)
}

// Get handles GET /{market}-etfs-daily-chart/:id
// @Summary Get a daily bar
// @Tags charts
// @Produce json
// @Param id path int true "Bar ID"
// @Success 200 {object} models.DailyBar
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart/{id} [get]
// @Router /usa-etfs-daily-chart/{id} [get]
func (h *ChartHandler) Get(c *gin.Context) {
	getOne(c, func(ctx context.Context, id int64) (*models.DailyBar, error) {
		return h.chartRepo.GetByID(ctx, h.market, id)
	})
}

// Create handles POST /{market}-etfs-daily-chart
// @Summary Create a daily bar
// @Description (etf_id, date) must be unique
// @Tags charts
// @Accept json
// @Produce json
// @Param body body models.DailyBar true "Bar"
// @Success 201 {object} models.DailyBar
// @Failure 400 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart [post]
// @Router /usa-etfs-daily-chart [post]
func (h *ChartHandler) Create(c *gin.Context) {
	createOne(c, func(ctx context.Context, b *models.DailyBar) (*models.DailyBar, error) {
		if err := services.ValidateBar(b, true); err != nil {
			return nil, err
		}
		id, err := h.chartRepo.Create(ctx, h.market, b)
		if err != nil {
			return nil, err
		}
		return h.chartRepo.GetByID(ctx, h.market, id)
	})
}

// Update handles PUT /{market}-etfs-daily-chart/:id
// @Summary Update the values of a daily bar
// @Description etf_id and date are never changed
// @Tags charts
// @Accept json
// @Produce json
// @Param id path int true "Bar ID"
// @Param body body models.DailyBar true "Bar"
// @Success 200 {object} models.DailyBar
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart/{id} [put]
// @Router /usa-etfs-daily-chart/{id} [put]
func (h *ChartHandler) Update(c *gin.Context) {
	updateOne(c, func(ctx context.Context, id int64, b *models.DailyBar) (*models.DailyBar, error) {
		if err := services.ValidateBar(b, false); err != nil {
			return nil, err
		}
		if err := h.chartRepo.Update(ctx, h.market, id, b); err != nil {
			return nil, err
		}
		return h.chartRepo.GetByID(ctx, h.market, id)
	})
}

// Delete handles DELETE /{market}-etfs-daily-chart/:id
// @Summary Delete a daily bar
// @Tags charts
// @Param id path int true "Bar ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-daily-chart/{id} [delete]
// @Router /usa-etfs-daily-chart/{id} [delete]
func (h *ChartHandler) Delete(c *gin.Context) {
	deleteOne(c, "daily bar", func(ctx context.Context, id int64) error {
		return h.chartRepo.Delete(ctx, h.market, id)
	})
}

// ETFDividendHandler handles /domestic-etfs-dividend and /usa-etfs-dividend
type ETFDividendHandler struct {
	market       models.Market
	marketSvc    *services.MarketService
	dividendRepo *repository.ETFDividendRepository
}

// NewETFDividendHandler creates an ETFDividendHandler bound to market
func NewETFDividendHandler(market models.Market, marketSvc *services.MarketService, dividendRepo *repository.ETFDividendRepository) *ETFDividendHandler {
	return &ETFDividendHandler{market: market, marketSvc: marketSvc, dividendRepo: dividendRepo}
}

// ListByETF handles GET /{market}-etfs-dividend/etf/:etf_id
// @Summary List the distributions of an ETF, newest first
// @Tags dividends
// @Produce json
// @Param etf_id path int true "ETF ID"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.ETFDividend
// @Failure 400 {object} models.ErrorResponse
// @Router /domestic-etfs-dividend/etf/{etf_id} [get]
// @Router /usa-etfs-dividend/etf/{etf_id} [get]
func (h *ETFDividendHandler) ListByETF(c *gin.Context) {
	etfID, ok := parseID(c, "etf_id")
	if !ok {
		return
	}
	listPage(c, func(ctx context.Context, p models.Page) ([]models.ETFDividend, error) {
		return h.dividendRepo.ListByETF(ctx, h.market, etfID, p.Skip, p.Limit)
	})
}

// Period handles GET /{market}-etfs-dividend/etf/:etf_id/period
// @Summary List the distributions of an ETF for the last N months, oldest first
// @Tags dividends
// @Produce json
// @Param etf_id path int true "ETF ID"
// @Param months_ago query int true "Window length in months (1-240)"
// @Success 200 {array} models.ETFDividend
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-dividend/etf/{etf_id}/period [get]
// @Router /usa-etfs-dividend/etf/{etf_id}/period [get]
func (h *ETFDividendHandler) Period(c *gin.Context) {
	etfID, ok := parseID(c, "etf_id")
	if !ok {
		return
	}
	months, ok := monthsAgo(c)
	if !ok {
		return
	}
	divs, err := h.marketSvc.DividendPeriod(c.Request.Context(), h.market, etfID, months)
	if err != nil {
		respondError(c, err)
		return
	}
	if divs == nil {
		divs = []models.ETFDividend{}
	}
	c.JSON(http.StatusOK, divs)
}

// Get handles GET /{market}-etfs-dividend/:id
// @Summary Get a distribution
// @Tags dividends
// @Produce json
// @Param id path int true "Dividend ID"
// @Success 200 {object} models.ETFDividend
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-dividend/{id} [get]
// @Router /usa-etfs-dividend/{id} [get]
func (h *ETFDividendHandler) Get(c *gin.Context) {
	getOne(c, func(ctx context.Context, id int64) (*models.ETFDividend, error) {
		return h.dividendRepo.GetByID(ctx, h.market, id)
	})
}

// Create handles POST /{market}-etfs-dividend
// @Summary Create a distribution
// @Description (etf_id, record_date) must be unique; domestic rows need payment_date
// @Tags dividends
// @Accept json
// @Produce json
// @Param body body models.ETFDividend true "Dividend"
// @Success 201 {object} models.ETFDividend
// @Failure 400 {object} models.ErrorResponse
// @Router /domestic-etfs-dividend [post]
// @Router /usa-etfs-dividend [post]
func (h *ETFDividendHandler) Create(c *gin.Context) {
	createOne(c, func(ctx context.Context, d *models.ETFDividend) (*models.ETFDividend, error) {
		if err := services.ValidateETFDividend(h.market, d, true); err != nil {
			return nil, err
		}
		id, err := h.dividendRepo.Create(ctx, h.market, d)
		if err != nil {
			return nil, err
		}
		return h.dividendRepo.GetByID(ctx, h.market, id)
	})
}

// Update handles PUT /{market}-etfs-dividend/:id
// @Summary Update the values of a distribution
// @Description etf_id and record_date are never changed
// @Tags dividends
// @Accept json
// @Produce json
// @Param id path int true "Dividend ID"
// @Param body body models.ETFDividend true "Dividend"
// @Success 200 {object} models.ETFDividend
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-dividend/{id} [put]
// @Router /usa-etfs-dividend/{id} [put]
func (h *ETFDividendHandler) Update(c *gin.Context) {
	updateOne(c, func(ctx context.Context, id int64, d *models.ETFDividend) (*models.ETFDividend, error) {
		if err := services.ValidateETFDividend(h.market, d, false); err != nil {
			return nil, err
		}
		if err := h.dividendRepo.Update(ctx, h.market, id, d); err != nil {
			return nil, err
		}
		return h.dividendRepo.GetByID(ctx, h.market, id)
	})
}

// Delete handles DELETE /{market}-etfs-dividend/:id
// @Summary Delete a distribution
// @Tags dividends
// @Param id path int true "Dividend ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /domestic-etfs-dividend/{id} [delete]
// @Router /usa-etfs-dividend/{id} [delete]
func (h *ETFDividendHandler) Delete(c *gin.Context) {
	deleteOne(c, "etf dividend", func(ctx context.Context, id int64) error {
		return h.dividendRepo.Delete(ctx, h.market, id)
	})
}

// IndicatorHandler handles /usa-indicators
type IndicatorHandler struct {
	repo *repository.IndicatorRepository
}

// NewIndicatorHandler creates a new IndicatorHandler
func NewIndicatorHandler(repo *repository.IndicatorRepository) *IndicatorHandler {
	return &IndicatorHandler{repo: repo}
}

// List handles GET /usa-indicators
// @Summary List USA market indicators
// @Description Ordered by order_no, then id
// @Tags indicators
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Indicator
// @Router /usa-indicators [get]
func (h *IndicatorHandler) List(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.Indicator, error) {
		return h.repo.List(ctx, p.Skip, p.Limit)
	})
}

// Get handles GET /usa-indicators/:id
// @Summary Get a USA market indicator
// @Tags indicators
// @Produce json
// @Param id path int true "Indicator ID"
// @Success 200 {object} models.Indicator
// @Failure 404 {object} models.ErrorResponse
// @Router /usa-indicators/{id} [get]
func (h *IndicatorHandler) Get(c *gin.Context) {
	getOne(c, h.repo.GetByID)
}

// Create handles POST /usa-indicators
// @Summary Create a USA market indicator
// @Tags indicators
// @Accept json
// @Produce json
// @Param body body models.IndicatorRequest true "Indicator"
// @Success 201 {object} models.Indicator
// @Failure 400 {object} models.ErrorResponse
// @Router /usa-indicators [post]
func (h *IndicatorHandler) Create(c *gin.Context) {
	createOne(c, func(ctx context.Context, req *models.IndicatorRequest) (*models.Indicator, error) {
		if err := services.ValidateIndicator(req, true); err != nil {
			return nil, err
		}
		id, err := h.repo.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		return h.repo.GetByID(ctx, id)
	})
}

// Update handles PUT /usa-indicators/:id
// @Summary Update a USA market indicator
// @Description Only the fields present in the body change
// @Tags indicators
// @Accept json
// @Produce json
// @Param id path int true "Indicator ID"
// @Param body body models.IndicatorRequest true "Indicator"
// @Success 200 {object} models.Indicator
// @Failure 404 {object} models.ErrorResponse
// @Router /usa-indicators/{id} [put]
func (h *IndicatorHandler) Update(c *gin.Context) {
	updateOne(c, func(ctx context.Context, id int64, req *models.IndicatorRequest) (*models.Indicator, error) {
		if err := services.ValidateIndicator(req, false); err != nil {
			return nil, err
		}
		if err := h.repo.Update(ctx, id, req); err != nil {
			return nil, err
		}
		return h.repo.GetByID(ctx, id)
	})
}

// Delete handles DELETE /usa-indicators/:id
// @Summary Delete a USA market indicator
// @Tags indicators
// @Param id path int true "Indicator ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /usa-indicators/{id} [delete]
func (h *IndicatorHandler) Delete(c *gin.Context) {
	deleteOne(c, "indicator", h.repo.Delete)
}

// ExchangeHandler handles /usd-krw-exchange
type ExchangeHandler struct {
	repo *repository.ExchangeRepository
}

// NewExchangeHandler creates a new ExchangeHandler
func NewExchangeHandler(repo *repository.ExchangeRepository) *ExchangeHandler {
	return &ExchangeHandler{repo: repo}
}

// List handles GET /usd-krw-exchange
// @Summary List USD/KRW rates, newest first
// @Tags exchange
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.ExchangeRate
// @Router /usd-krw-exchange [get]
func (h *ExchangeHandler) List(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.ExchangeRate, error) {
		return h.repo.List(ctx, p.Skip, p.Limit)
	})
}

// Get handles GET /usd-krw-exchange/:id
// @Summary Get a USD/KRW rate
// @Tags exchange
// @Produce json
// @Param id path int true "Rate ID"
// @Success 200 {object} models.ExchangeRate
// @Failure 404 {object} models.ErrorResponse
// @Router /usd-krw-exchange/{id} [get]
func (h *ExchangeHandler) Get(c *gin.Context) {
	getOne(c, h.repo.GetByID)
}

func (h *ExchangeHandler) byDate(c *gin.Context, get func(ctx context.Context, d models.Date) (*models.ExchangeRate, error)) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	rate, err := get(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

// ByDate handles GET /usd-krw-exchange/date/:date
// @Summary Get the USD/KRW rate quoted on a date
// @Tags exchange
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.ExchangeRate
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /usd-krw-exchange/date/{date} [get]
func (h *ExchangeHandler) ByDate(c *gin.Context) {
	h.byDate(c, h.repo.GetByDate)
}

// Nearest handles GET /usd-krw-exchange/date/:date/nearest
// @Summary Get the latest USD/KRW rate on or before a date
// @Tags exchange
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.ExchangeRate
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /usd-krw-exchange/date/{date}/nearest [get]
func (h *ExchangeHandler) Nearest(c *gin.Context) {
	h.byDate(c, h.repo.GetNearest)
}

// Create handles POST /usd-krw-exchange
// @Summary Create a USD/KRW rate
// @Tags exchange
// @Accept json
// @Produce json
// @Param body body models.ExchangeRate true "Rate"
// @Success 201 {object} models.ExchangeRate
// @Failure 400 {object} models.ErrorResponse
// @Router /usd-krw-exchange [post]
func (h *ExchangeHandler) Create(c *gin.Context) {
	createOne(c, func(ctx context.Context, e *models.ExchangeRate) (*models.ExchangeRate, error) {
		if err := services.ValidateExchangeRate(e, true); err != nil {
			return nil, err
		}
		id, err := h.repo.Create(ctx, e)
		if err != nil {
			return nil, err
		}
		return h.repo.GetByID(ctx, id)
	})
}

// Update handles PUT /usd-krw-exchange/:id
// @Summary Update a USD/KRW rate
// @Description The date is never changed
// @Tags exchange
// @Accept json
// @Produce json
// @Param id path int true "Rate ID"
// @Param body body models.ExchangeRate true "Rate"
// @Success 200 {object} models.ExchangeRate
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /usd-krw-exchange/{id} [put]
func (h *ExchangeHandler) Update(c *gin.Context) {
	updateOne(c, func(ctx context.Context, id int64, e *models.ExchangeRate) (*models.ExchangeRate, error) {
		if err := services.ValidateExchangeRate(e, false); err != nil {
			return nil, err
		}
		if err := h.repo.Update(ctx, id, e); err != nil {
			return nil, err
		}
		return h.repo.GetByID(ctx, id)
	})
}

// Delete handles DELETE /usd-krw-exchange/:id
// @Summary Delete a USD/KRW rate
// @Tags exchange
// @Param id path int true "Rate ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /usd-krw-exchange/{id} [delete]
func (h *ExchangeHandler) Delete(c *gin.Context) {
	deleteOne(c, "exchange rate", h.repo.Delete)
}
