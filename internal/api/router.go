package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sku-pricing/internal/api/handlers"
	"sku-pricing/internal/api/middleware"
	"sku-pricing/internal/backtest"
	"sku-pricing/internal/config"
	"sku-pricing/internal/store"
	"sku-pricing/internal/telemetry"
)

// Deps are the collaborators the HTTP API is wired with.
type Deps struct {
	Config  config.Config
	Store   store.Store
	Metrics *telemetry.Metrics
	Logger  zerolog.Logger
	Cache   *backtest.ResultCache
}

// NewRouter builds the gin engine with middleware and every route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Metrics == nil {
		d.Metrics = telemetry.New()
	}
	if d.Cache == nil {
		ttl, _ := d.Config.Server.TTL()
		d.Cache = backtest.NewResultCache(ttl)
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(d.Logger))
	router.Use(middleware.CORS(d.Config.Server.CORSOrigins))
	router.Use(middleware.Logger(d.Logger, d.Metrics))

	runner := backtest.New(
		backtest.WithWorkers(d.Config.Backtest.Workers),
		backtest.WithLogger(d.Logger),
		backtest.WithObserver(d.Metrics),
	)

	healthHandler := handlers.NewHealthHandler(d.Store)
	decisionHandler := handlers.NewDecisionHandler(d.Store, d.Config.Pricing)
	backtestHandler := handlers.NewBacktestHandler(d.Config, runner, d.Cache)
	strategyHandler := handlers.NewStrategyHandler(d.Config)
	overrideHandler := handlers.NewOverrideHandler(d.Store, d.Metrics)

	router.GET("/health", healthHandler.Health)
	router.GET("/health/status", healthHandler.Status)
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/decisions", decisionHandler.Decide)
		v1.GET("/decisions", decisionHandler.Between)
		v1.GET("/skus/:product_id/latest-decision", decisionHandler.LatestDecision)
		v1.GET("/skus/:product_id/history", decisionHandler.History)

		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.GET("/backtest/:id/outcomes", backtestHandler.GetOutcomes)
		v1.POST("/backtest/compare", backtestHandler.CompareBacktests)

		v1.GET("/strategies", strategyHandler.ListStrategies)

		v1.POST("/overrides", overrideHandler.CreateOverride)
		v1.GET("/overrides", overrideHandler.ListOverrides)
		v1.POST("/overrides/:type/release", overrideHandler.ReleaseOverride)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
	})
	return router
}
