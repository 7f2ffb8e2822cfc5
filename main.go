package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/epeers/fintrack/config"
	"github.com/epeers/fintrack/docs"
	"github.com/epeers/fintrack/internal/database"
	"github.com/epeers/fintrack/internal/handlers"
	"github.com/epeers/fintrack/internal/middleware"
	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/services"
)

// @title Fintrack API
// @version 1.0
// @description Personal finance backend: accounts, holdings, planning and ETF market data.
// @BasePath /api/v1
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	// Initialize repositories
	institutionRepo := repository.NewInstitutionRepository(db.Pool)
	codeRepo := repository.NewCodeRepository(db.Pool)
	experienceRepo := repository.NewExperienceRepository(db.Pool)
	planningRepo := repository.NewPlanningRepository(db.Pool)
	accountRepo := repository.NewAccountRepository(db.Pool)
	holdingRepo := repository.NewHoldingRepository(db.Pool)
	saleRepo := repository.NewSaleRepository(db.Pool)
	etfRepo := repository.NewETFRepository(db.Pool)
	chartRepo := repository.NewChartRepository(db.Pool)
	etfDividendRepo := repository.NewETFDividendRepository(db.Pool)
	indicatorRepo := repository.NewIndicatorRepository(db.Pool)
	exchangeRepo := repository.NewExchangeRepository(db.Pool)

	// Initialize services
	accountSvc := services.NewAccountService(accountRepo, holdingRepo)
	holdingSvc := services.NewHoldingService(db.Pool, accountRepo, holdingRepo)
	saleSvc := services.NewSaleService(saleRepo, accountRepo)
	planningSvc := services.NewPlanningService(planningRepo)
	marketSvc := services.NewMarketService(etfRepo, chartRepo, etfDividendRepo)

	// Initialize handlers
	h := &handlers.Handlers{
		Institutions: handlers.NewInstitutionHandler(institutionRepo),
		Codes:        handlers.NewCodeHandler(codeRepo),
		Experience:   handlers.NewExperienceHandler(experienceRepo),
		Planning:     handlers.NewPlanningHandler(planningSvc, planningRepo),
		Accounts:     map[models.AccountKind]*handlers.AccountHandler{},
		Holdings:     map[models.AccountKind]*handlers.HoldingHandler{},
		Sales:        handlers.NewSaleHandler(saleSvc, saleRepo),
		ETFs:         map[models.Market]*handlers.ETFHandler{},
		Charts:       map[models.Market]*handlers.ChartHandler{},
		ETFDividends: map[models.Market]*handlers.ETFDividendHandler{},
		Indicators:   handlers.NewIndicatorHandler(indicatorRepo),
		Exchange:     handlers.NewExchangeHandler(exchangeRepo),
	}
	for _, kind := range models.AccountKinds {
		h.Accounts[kind] = handlers.NewAccountHandler(kind, accountSvc)
		h.Holdings[kind] = handlers.NewHoldingHandler(kind, holdingSvc, holdingRepo)
	}
	for _, m := range []models.Market{models.MarketDomestic, models.MarketUSA} {
		h.ETFs[m] = handlers.NewETFHandler(m, marketSvc, etfRepo)
		h.Charts[m] = handlers.NewChartHandler(m, marketSvc, chartRepo)
		h.ETFDividends[m] = handlers.NewETFDividendHandler(m, marketSvc, etfDividendRepo)
	}

	// Setup Gin router
	if cfg.LogLevel < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterRoutes(router.Group("/api/v1"), h)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.CORS(router),
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Info("Server exited")
}
