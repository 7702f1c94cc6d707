package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sharktrack/sharktrack-backend-go/internal/config"
	"github.com/sharktrack/sharktrack-backend-go/internal/handler"
	"github.com/sharktrack/sharktrack-backend-go/internal/metrics"
	"github.com/sharktrack/sharktrack-backend-go/internal/middleware"
	"github.com/sharktrack/sharktrack-backend-go/internal/service"
)

// Dependencies are the services the routes are served from
type Dependencies struct {
	Pipeline *service.PipelineService
	Datasets *service.DatasetService
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "SharkTrack Backend API is running",
			"source":  deps.Pipeline.SourceName(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))

	vizHandler := handler.NewVisualizationHandler(deps.Pipeline, cfg.Hotspot.DefaultZoom)
	datasetHandler := handler.NewDatasetHandler(deps.Datasets)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	{
		// 可视化接口
		viz := api.Group("/viz")
		{
			viz.GET("/summary", vizHandler.GetSummary)
			viz.GET("/histogram", vizHandler.GetHistogram)
			viz.GET("/confidence", vizHandler.GetConfidence)
			viz.GET("/heatmap", vizHandler.GetHeatmap)
			viz.GET("/hotspots", vizHandler.GetHotspots)
			viz.GET("/overview", vizHandler.GetOverview)
		}

		// 数据集接口
		datasets := api.Group("/datasets")
		{
			datasets.GET("", datasetHandler.ListDatasets)
			datasets.POST("/:name", middleware.Auth(cfg.JWTSecret), datasetHandler.ImportDataset)
		}
	}

	return r
}
