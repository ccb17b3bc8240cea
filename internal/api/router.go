package api

import (
	"time"

	"fridge-recommender/internal/api/handlers/fridge"
	"fridge-recommender/internal/api/handlers/health"
	"fridge-recommender/internal/api/middleware"
	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/core/metrics"
	"fridge-recommender/internal/core/recommend"
	"fridge-recommender/internal/infrastructure/config"
	"fridge-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps 路由所需的服務
type Deps struct {
	Service  *recommend.Service
	Corpus   *corpus.Store
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger(deps.Metrics))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查與指標不受限流與超時影響
	healthHandler := health.NewHandler(deps.Corpus, cfg.App.Version)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst)
		api.Use(middleware.RateLimit(limiter))
	}
	api.Use(middleware.RequestContext(cfg.Server.RequestTimeout))

	fridgeHandler := fridge.NewHandler(deps.Service, cfg.App.Debug)
	{
		fridgeGroup := api.Group("/fridge")
		fridgeGroup.POST("/match", fridgeHandler.HandleMatch)
		fridgeGroup.GET("/recipe/:id", fridgeHandler.HandleRecipeDetail)

		recipeGroup := api.Group("/recipes")
		recipeGroup.GET("", fridgeHandler.HandleListRecipes)
		recipeGroup.GET("/daily", fridgeHandler.HandleDaily)
		recipeGroup.GET("/fitness", fridgeHandler.HandleFitness)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
