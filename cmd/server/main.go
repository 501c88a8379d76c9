package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"catalog-service/internal/handler"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("catalog-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting catalog-service", appConfig.LogFields()...)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Connect(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("Database connection established")

	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	store := repository.NewStore(db, log)
	products := handler.NewProductHandler(store)
	suppliers := handler.NewSupplierHandler(store)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Product API routes
	productAPI := e.Group("/api/v1/products")
	productAPI.GET("", products.ListProducts)
	productAPI.GET("/search", products.SearchProducts)
	productAPI.GET("/:code", products.GetProduct)
	productAPI.POST("", products.CreateProduct)
	productAPI.PUT("/:code", products.UpdateProduct)
	productAPI.DELETE("/:code", products.DeleteProduct)

	// Supplier lookup
	e.GET("/api/v1/suppliers", suppliers.ListSuppliers)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
