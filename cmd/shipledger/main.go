package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KhaledMKhaled/shipledger/internal/config"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/handler"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/KhaledMKhaled/shipledger/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting shipledger service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Supplier{},
		&entity.ProductType{},
		&entity.ExchangeRate{},
		&entity.Shipment{},
		&entity.ShipmentItem{},
		&entity.ShipmentShippingDetails{},
		&entity.ShipmentCustomsDetails{},
		&entity.ShipmentPayment{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, rate caching and refresh tokens degraded", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// No token required
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		api := v1.Group("")
		api.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			api.GET("/auth/me", h.Auth.Me)

			// Accountants record money; everyone signed in may read.
			write := middleware.RequireRole(entity.RoleAccountant)

			shipments := api.Group("/shipments")
			{
				shipments.GET("", h.Shipment.ListShipments)
				shipments.GET("/export", h.Shipment.ExportShipments)
				shipments.GET("/:id", h.Shipment.GetShipment)
				shipments.POST("", write, h.Shipment.CreateShipment)
				shipments.PUT("/:id", write, h.Shipment.UpdateShipment)
				shipments.DELETE("/:id", write, h.Shipment.DeleteShipment)
				shipments.PUT("/:id/shipping-details", write, h.Shipment.UpdateShippingDetails)
				shipments.PUT("/:id/customs-details", write, h.Shipment.UpdateCustomsDetails)
				shipments.POST("/:id/deliver", write, h.Shipment.DeliverShipment)
				shipments.POST("/:id/archive", write, h.Shipment.ArchiveShipment)
				shipments.POST("/:id/recalculate", write, h.Shipment.RecalculateShipment)

				shipments.GET("/:id/payments", h.Payment.ListPayments)
				shipments.POST("/:id/payments", write, h.Payment.CreatePayment)
			}

			api.POST("/payments/:id/receipt", write, h.Payment.UploadReceipt)

			suppliers := api.Group("/suppliers")
			{
				suppliers.GET("", h.Supplier.ListSuppliers)
				suppliers.GET("/:id", h.Supplier.GetSupplier)
				suppliers.GET("/:id/statement", h.Supplier.GetSupplierStatement)
				suppliers.POST("", write, h.Supplier.CreateSupplier)
				suppliers.PUT("/:id", write, h.Supplier.UpdateSupplier)
				suppliers.DELETE("/:id", write, h.Supplier.DeleteSupplier)
			}

			rates := api.Group("/rates")
			{
				rates.GET("", h.Rate.ListRates)
				rates.GET("/latest", h.Rate.GetLatestRate)
				rates.POST("", write, h.Rate.CreateRate)
			}

			api.GET("/product-types", h.ProductType.ListProductTypes)
			api.POST("/product-types", write, h.ProductType.CreateProductType)

			api.GET("/dashboard/accounting", h.Dashboard.GetAccountingOverview)

			// Account management is the manager's alone.
			manager := middleware.RequireRole(entity.RoleManager)
			api.GET("/users", manager, h.Auth.ListUsers)
			api.POST("/users", manager, h.Auth.CreateUser)
		}
	}
}
