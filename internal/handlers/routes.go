package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/epeers/fintrack/internal/models"
)

// accountPrefixes maps each account family to its URL stem
var accountPrefixes = map[models.AccountKind]string{
	models.AccountKindISA:     "isa",
	models.AccountKindIRP:     "irp",
	models.AccountKindPension: "pension-fund",
}

// Handlers bundles every endpoint group served under /api/v1
type Handlers struct {
	Institutions *InstitutionHandler
	Codes        *CodeHandler
	Experience   *ExperienceHandler
	Planning     *PlanningHandler
	Accounts     map[models.AccountKind]*AccountHandler
	Holdings     map[models.AccountKind]*HoldingHandler
	Sales        *SaleHandler
	ETFs         map[models.Market]*ETFHandler
	Charts       map[models.Market]*ChartHandler
	ETFDividends map[models.Market]*ETFDividendHandler
	Indicators   *IndicatorHandler
	Exchange     *ExchangeHandler
}

type crud interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func registerCRUD(g *gin.RouterGroup, h crud) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterRoutes mounts all endpoint groups on api
func RegisterRoutes(api *gin.RouterGroup, h *Handlers) {
	registerCRUD(api.Group("/financial-institutions"), h.Institutions)
	registerCRUD(api.Group("/experience-lab-stocks"), h.Experience)

	masters := api.Group("/common-code-masters")
	masters.GET("", h.Codes.ListMasters)
	masters.GET("/:id", h.Codes.GetMaster)
	masters.GET("/:id/details", h.Codes.GetMasterWithDetails)
	masters.POST("", h.Codes.CreateMaster)
	masters.PUT("/:id", h.Codes.UpdateMaster)
	masters.DELETE("/:id", h.Codes.DeleteMaster)

	details := api.Group("/common-code-details")
	details.GET("", h.Codes.ListDetails)
	details.GET("/:id", h.Codes.GetDetail)
	details.POST("", h.Codes.CreateDetail)
	details.PUT("/:id", h.Codes.UpdateDetail)
	details.DELETE("/:id", h.Codes.DeleteDetail)

	expenses := api.Group("/expenses")
	expenses.GET("", h.Planning.ListExpenses)
	expenses.GET("/:id", h.Planning.GetExpense)
	expenses.POST("", h.Planning.CreateExpense)
	expenses.PUT("/:id", h.Planning.UpdateExpense)
	expenses.DELETE("/:id", h.Planning.DeleteExpense)

	targets := api.Group("/income-targets")
	targets.GET("", h.Planning.ListIncomeTargets)
	targets.GET("/:id", h.Planning.GetIncomeTarget)
	targets.POST("", h.Planning.CreateIncomeTarget)
	targets.PUT("/:id", h.Planning.UpdateIncomeTarget)
	targets.DELETE("/:id", h.Planning.DeleteIncomeTarget)

	retirement := api.Group("/early-retirement-initial-setting")
	retirement.GET("", h.Planning.GetRetirementSetting)
	retirement.POST("", h.Planning.SaveRetirementSetting)
	retirement.PUT("", h.Planning.SaveRetirementSetting)

	for _, kind := range models.AccountKinds {
		prefix := accountPrefixes[kind]
		if ah, ok := h.Accounts[kind]; ok {
			registerCRUD(api.Group("/"+prefix+"-accounts"), ah)
		}
		if hh, ok := h.Holdings[kind]; ok {
			g := api.Group("/" + prefix + "-account-details")
			registerCRUD(g, hh)
			g.GET("/account/:account_id", hh.ListByAccount)
			g.GET("/template/download", hh.DownloadTemplate)
			g.POST("/upload/:account_id", hh.Upload)
		}
	}

	sales := api.Group("/isa-account-sales")
	sales.GET("", h.Sales.ListSales)
	sales.GET("/account/:account_id", h.Sales.ListSalesByAccount)
	sales.GET("/:id", h.Sales.GetSale)
	sales.POST("", h.Sales.CreateSale)
	sales.PUT("/:id", h.Sales.UpdateSale)
	sales.DELETE("/:id", h.Sales.DeleteSale)

	divs := api.Group("/isa-account-dividends")
	divs.GET("", h.Sales.ListDividends)
	divs.GET("/account/:account_id", h.Sales.ListDividendsByAccount)
	divs.GET("/:id", h.Sales.GetDividend)
	divs.POST("", h.Sales.CreateDividend)
	divs.PUT("/:id", h.Sales.UpdateDividend)
	divs.DELETE("/:id", h.Sales.DeleteDividend)

	for _, m := range []models.Market{models.MarketDomestic, models.MarketUSA} {
		prefix := "/" + string(m) + "-etfs"
		if eh, ok := h.ETFs[m]; ok {
			g := api.Group(prefix)
			registerCRUD(g, eh)
			g.POST("/bulk", eh.BulkCreate)
		}
		if ch, ok := h.Charts[m]; ok {
			g := api.Group(prefix + "-daily-chart")
			g.GET("/:id", ch.Get)
			g.POST("", ch.Create)
			g.PUT("/:id", ch.Update)
			g.DELETE("/:id", ch.Delete)
			g.GET("/etf/:etf_id", ch.ListByETF)
			g.GET("/etf/:etf_id/latest", ch.Latest)
			g.GET("/etf/:etf_id/date/:date", ch.ByDate)
			g.GET("/etf/:etf_id/period", ch.Period)
		}
		if dh, ok := h.ETFDividends[m]; ok {
			g := api.Group(prefix + "-dividend")
			g.GET("/:id", dh.Get)
			g.POST("", dh.Create)
			g.PUT("/:id", dh.Update)
			g.DELETE("/:id", dh.Delete)
			g.GET("/etf/:etf_id", dh.ListByETF)
			g.GET("/etf/:etf_id/period", dh.Period)
		}
	}

	registerCRUD(api.Group("/usa-indicators"), h.Indicators)

	exchange := api.Group("/usd-krw-exchange")
	registerCRUD(exchange, h.Exchange)
	exchange.GET("/date/:date", h.Exchange.ByDate)
	exchange.GET("/date/:date/nearest", h.Exchange.Nearest)
}
