package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/config"
	inventoryentity "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/entity"
	inventoryhandler "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/handler"
	inventoryrepo "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/repository"
	inventorysvc "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/service"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/middleware"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/handler"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/shared/objectstore"
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
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	zapLogger.Info("Starting nutaria-production service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 迁移生产执行相关表
	if err := db.AutoMigrate(
		&entity.ProcessDefinition{},
		&entity.ProcessStep{},
		&entity.ProcessLotRun{},
		&entity.StepRun{},
		&entity.SortingOutput{},
		&entity.SortingWaste{},
		&entity.MetalCheckAttempt{},
		&entity.MetalCheckRejection{},
		&entity.PackagingRun{},
		&entity.PackEntry{},
		&entity.WeightCheck{},
		&entity.PackagingPhoto{},
		&entity.PackagingWaste{},
		&entity.StorageAllocation{},
		&inventoryentity.SupplyBatch{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化对象存储
	var store *objectstore.Client
	if cfg.MinIO.Endpoint != "" {
		store, err = objectstore.New(objectstore.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("Failed to init object store, photo upload disabled", zap.Error(err))
			store = nil
		} else if err := store.EnsureBucket(context.Background()); err != nil {
			zapLogger.Warn("Failed to ensure object store bucket", zap.Error(err))
		}
	}

	// 初始化依赖
	invRepos := inventoryrepo.NewRepositories(db)
	invSvc := inventorysvc.NewInventoryService(invRepos.SupplyBatch)
	invHandler := inventoryhandler.NewBatchHandler(invSvc)

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, invSvc, store, rdb)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 注册路由
	registerRoutes(router, handlers, invHandler, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
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
		Logger: logger.Default.LogMode(logger.Info),
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

func registerRoutes(r *gin.Engine, h *handler.Handlers, invH *inventoryhandler.BatchHandler, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 生产执行
		production := v1.Group("/production")
		{
			// 工艺流程定义
			production.POST("/processes", h.Process.CreateProcess)
			production.GET("/processes", h.Process.ListProcesses)
			production.GET("/processes/:id", h.Process.GetProcess)

			// 批次执行
			production.POST("/lot-runs/ensure", h.LotRun.EnsureRun)
			production.GET("/lot-runs", h.LotRun.ListRuns)
			production.GET("/lot-runs/:id", h.LotRun.GetRun)
			production.PUT("/lot-runs/:id/steps/:stepId", h.LotRun.AdvanceStep)
			production.POST("/lot-runs/:id/complete", h.LotRun.CompleteRun)

			// 分选产出
			production.POST("/step-runs/:id/sorting-outputs", h.Sorting.AddOutput)
			production.GET("/step-runs/:id/sorting-outputs", h.Sorting.ListOutputs)
			production.GET("/sorting-outputs/:id", h.Sorting.GetOutput)
			production.POST("/sorting-outputs/:id/waste", h.Sorting.AddWaste)

			// 金属检测
			production.POST("/sorting-outputs/:id/metal-checks", h.MetalCheck.RecordAttempt)
			production.GET("/sorting-outputs/:id/metal-checks", h.MetalCheck.History)

			// 包装
			production.POST("/step-runs/:id/packaging", h.Packaging.EnsureRun)
			production.GET("/packaging/:id", h.Packaging.GetRun)
			production.POST("/step-runs/:id/pack-entries", h.Packaging.AddPackEntry)
			production.POST("/packaging/:id/weight-checks", h.Packaging.AddWeightCheck)
			production.POST("/packaging/:id/photos", h.Packaging.AddPhoto)
			production.POST("/packaging/:id/waste", h.Packaging.AddWaste)

			// 仓储分配
			production.GET("/pack-entries/:id/allocations", h.Storage.ListAllocations)
			production.POST("/pack-entries/:id/allocations", h.Storage.AddAllocation)
			production.PUT("/storage-allocations/:id", h.Storage.UpdateAllocation)
			production.DELETE("/storage-allocations/:id", h.Storage.DeleteAllocation)

			// 生产看板
			production.GET("/dashboard", h.Dashboard.GetSummary)
		}

		// 原料库存
		inventory := v1.Group("/inventory")
		{
			inventory.POST("/batches", invH.CreateBatch)
			inventory.GET("/batches", invH.ListBatches)
			inventory.GET("/batches/:id", invH.GetBatch)
		}
	}
}
