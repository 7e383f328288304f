package main

import (
	"inventory-service/internal/export"
	"inventory-service/internal/handler"
	"inventory-service/internal/imagestore"
	mid "inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/internal/store"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("inventory-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting inventory-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Open the record store backend. A damaged local store is rebuilt once
	// from scratch; the reset is surfaced on /health rather than terminating.
	db, dataReset, err := database.Init(appConfig,
		&model.Product{},
		&model.Supplier{},
		&model.ContactPerson{},
		&store.SideAttribute{},
	)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if dataReset {
		log.Warn("Local store was damaged and has been reset; all data was discarded")
	}
	log.Info("Database connection established", zap.Bool("sync_enabled", appConfig.Sync.Enabled))

	// Stores
	records := store.NewRecordStore(db, log)
	side := store.NewSideAttributeStore(db, log)
	images := imagestore.NewImageStore(appConfig.Storage.DataDir, side, log)
	exporter := export.NewExporter(appConfig.Storage.ExportDir, log)

	// Handlers
	productHandler := handler.NewProductHandler(records, side, images)
	supplierHandler := handler.NewSupplierHandler(records, side, images)
	contactHandler := handler.NewContactHandler(records, side, images)
	attachmentHandler := handler.NewAttachmentHandler(records, side, images)
	exportHandler := handler.NewExportHandler(records, exporter)
	syncHandler := handler.NewSyncHandler(records, appConfig.Sync.Enabled)
	healthHandler := handler.NewHealthHandler(records, dataReset)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", healthHandler.Check)

	auth := mid.AuthMiddleware(jwtUtil)

	// Product API routes
	productAPI := e.Group("/api/products", auth)
	productAPI.GET("", productHandler.List)
	productAPI.GET("/:id", productHandler.Get)
	productAPI.POST("", productHandler.Create)
	productAPI.PUT("/:id", productHandler.Update)
	productAPI.DELETE("/:id", productHandler.Delete)
	productAPI.POST("/:id/images", attachmentHandler.UploadProductImage)
	productAPI.GET("/:id/images/:index", attachmentHandler.GetProductImage)
	productAPI.DELETE("/:id/images/:index", attachmentHandler.DeleteProductImage)

	// Supplier API routes
	supplierAPI := e.Group("/api/suppliers", auth)
	supplierAPI.GET("", supplierHandler.List)
	supplierAPI.GET("/:id", supplierHandler.Get)
	supplierAPI.POST("", supplierHandler.Create)
	supplierAPI.PUT("/:id", supplierHandler.Update)
	supplierAPI.DELETE("/:id", supplierHandler.Delete)
	supplierAPI.POST("/:id/images", attachmentHandler.UploadSupplierImage)
	supplierAPI.GET("/:id/images/:index", attachmentHandler.GetSupplierImage)
	supplierAPI.DELETE("/:id/images/:index", attachmentHandler.DeleteSupplierImage)
	supplierAPI.GET("/:id/contacts", contactHandler.List)
	supplierAPI.POST("/:id/contacts", contactHandler.Create)

	// Contact API routes
	contactAPI := e.Group("/api/contacts", auth)
	contactAPI.GET("/:id", contactHandler.Get)
	contactAPI.PUT("/:id", contactHandler.Update)
	contactAPI.DELETE("/:id", contactHandler.Delete)
	contactAPI.POST("/:id/card", attachmentHandler.UploadContactCard)
	contactAPI.GET("/:id/card", attachmentHandler.GetContactCard)
	contactAPI.DELETE("/:id/card", attachmentHandler.DeleteContactCard)
	contactAPI.POST("/:id/photo", attachmentHandler.UploadContactPhoto)
	contactAPI.GET("/:id/photo", attachmentHandler.GetContactPhoto)
	contactAPI.DELETE("/:id/photo", attachmentHandler.DeleteContactPhoto)

	// Export API routes
	exportAPI := e.Group("/api/export", auth)
	exportAPI.GET("/products", exportHandler.Products)
	exportAPI.GET("/suppliers", exportHandler.Suppliers)

	// Sync merge routes for remote change notifications
	syncAPI := e.Group("/api/sync", auth)
	syncAPI.POST("/products/:id", syncHandler.MergeProduct)
	syncAPI.POST("/suppliers/:id", syncHandler.MergeSupplier)
	syncAPI.POST("/contacts/:id", syncHandler.MergeContact)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
