package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devlink/devlink-backend/internal/config"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/handler"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/internal/repository"
	"github.com/devlink/devlink-backend/internal/routes"
	"github.com/devlink/devlink-backend/internal/service"
	"github.com/devlink/devlink-backend/internal/ws"
	pkgcache "github.com/devlink/devlink-backend/pkg/cache"
	"github.com/devlink/devlink-backend/pkg/jwt"
	pkglogger "github.com/devlink/devlink-backend/pkg/logger"
	pkgredis "github.com/devlink/devlink-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           DevLink Backend API
// @version         1.0
// @description     DevLink Developer Network - Chat, Presence and Message Request API
//
// @host            localhost:8082
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := db.AutoMigrate(
		&domain.Member{},
		&domain.FollowEdge{},
		&domain.Thread{},
		&domain.Message{},
		&domain.MessageRequest{},
		&domain.Notification{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	// WebSocket hub
	wsHub := ws.NewHub(redisClient)

	// JWT manager
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpireMins,
		cfg.JWT.RefreshExpireMins,
	)

	// Repositories
	memberRepo := repository.NewMemberRepository(db)
	followRepo := repository.NewFollowRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	notificationSvc := service.NewNotificationService(notificationRepo, wsHub)
	authSvc := service.NewAuthService(memberRepo, jwtManager)
	followSvc := service.NewFollowService(followRepo, memberRepo, notificationSvc)
	chatSvc := service.NewChatService(threadRepo, messageRepo, memberRepo, cacheService, wsHub,
		cfg.Chat.ReadWindow, cfg.Chat.DeletePageSize)
	requestSvc := service.NewRequestService(requestRepo, followRepo, memberRepo,
		chatSvc, notificationSvc, wsHub, 500*time.Millisecond)
	presenceSvc := service.NewPresenceService(memberRepo, threadRepo, cacheService, wsHub,
		cfg.Presence.Throttle(), cfg.Presence.Staleness())
	chatListSvc := service.NewChatListService(threadRepo, messageRepo, chatSvc, cacheService, wsHub)
	feedSvc := service.NewFeedService(redisClient)

	// Presence rides the hub's session lifecycle: first socket marks the
	// user online, last socket marks them offline.
	wsHub.SetSessionListener(presenceSvc)
	// A client ack over the socket stamps delivered receipts, same as the
	// REST endpoint.
	wsHub.SetAckHandler(func(threadID, userID string) {
		if err := chatSvc.MarkDelivered(threadID, userID); err != nil {
			pkglogger.Warn("ws delivery ack for thread %s by %s failed: %v", threadID, userID, err)
		}
	})
	go wsHub.Run()

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	go presenceSvc.RunReaper(reaperCtx, cfg.Presence.Staleness())

	// Handlers
	allowedOrigins := strings.Join(cfg.CORS.AllowedOrigins, ",")
	authHandler := handler.NewAuthHandler(authSvc)
	chatHandler := handler.NewChatHandler(chatSvc, chatListSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	presenceHandler := handler.NewPresenceHandler(presenceSvc, cfg.Presence.Heartbeat())
	followHandler := handler.NewFollowHandler(followSvc)
	feedHandler := handler.NewFeedHandler(feedSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	wsHandler := handler.NewWSHandler(wsHub, allowedOrigins)

	// Router
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsOrigins := cfg.CORS.AllowedOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           86400,
	}))

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	if redisClient != nil && env == "production" {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "devlink-backend",
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(router,
		authHandler,
		chatHandler,
		requestHandler,
		presenceHandler,
		followHandler,
		feedHandler,
		notificationHandler,
		wsHandler,
		jwtManager,
	)

	// Serve with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Info("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down...")

	stopReaper()
	wsHub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.Error("Server shutdown: %v", err)
	}
	pkglogger.Info("Server stopped")
}

// initDB opens the MySQL connection and applies pool settings
func initDB(cfg *config.Config) (*gorm.DB, error) {
	logMode := gormlogger.Warn
	if cfg.Server.Env == "local" {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	return db, nil
}
