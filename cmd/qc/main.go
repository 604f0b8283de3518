package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/config"
	"github.com/bitfantasy/nimo-qc/internal/middleware"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/handler"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/bitfantasy/nimo-qc/internal/shared/cache"
	"github.com/bitfantasy/nimo-qc/internal/shared/storage"
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

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("nimo-qc stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	zapLogger.Info("Starting nimo-qc service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(
		&entity.Inspection{},
		&entity.Defect{},
		&entity.SequenceCounter{},
		&entity.CAPATask{},
		&entity.ActivityLog{},
	); err != nil {
		return fmt.Errorf("migrate qc tables: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services := service.NewServices(
		repository.NewRepositories(db),
		initCache(ctx, cfg, zapLogger),
		initStorage(ctx, cfg.MinIO, zapLogger),
		zapLogger,
	)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, zapLogger)
	registerRoutes(router, handler.NewHandlers(services), cfg, db)

	// 事件流为长连接，不设写超时
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zapLogger.Info("Server exited")
	return nil
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
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

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// initCache Redis 不可用时退回进程内缓存
func initCache(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) cache.Cache {
	if cfg.Redis.Enabled {
		rdb := initRedis(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := rdb.Ping(pingCtx).Err()
		if err == nil {
			zapLogger.Info("Analytics cache backed by redis", zap.String("addr", cfg.Redis.Addr()))
			return cache.NewRedisCache(rdb, cfg.QC.CacheTTL)
		}
		zapLogger.Warn("Redis unavailable, using in-memory analytics cache", zap.Error(err))
		rdb.Close()
	}
	return cache.NewMemoryCache(cfg.QC.CacheSize, cfg.QC.CacheTTL)
}

// initStorage 未配置 MinIO 时照片上传返回 503
func initStorage(ctx context.Context, cfg config.MinIOConfig, zapLogger *zap.Logger) storage.ObjectStore {
	if !cfg.Enabled {
		zapLogger.Warn("MinIO disabled, defect photo upload unavailable")
		return nil
	}
	store, err := storage.NewMinIOStore(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
	if err != nil {
		zapLogger.Warn("Failed to init MinIO client", zap.Error(err))
		return nil
	}
	if err := store.EnsureBucket(ctx); err != nil {
		zapLogger.Warn("Failed to ensure MinIO bucket", zap.String("bucket", cfg.Bucket), zap.Error(err))
		return nil
	}
	return store
}

// eventsPath 事件流不压缩，否则帧会滞留在 gzip 缓冲区
const eventsPath = "/api/v1/qc/events"

func newRouter(cfg *config.Config, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(zapLogger),
		middleware.CORS(cfg.Server.CORSOrigins...),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{eventsPath})),
	)
	return router
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, db *gorm.DB) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1", middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer))
	h.Register(v1)
}
