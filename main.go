package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/attachments"
	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/logging"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/services"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		logger.Warnw("tracing disabled", "error", err)
	} else {
		defer shutdownTracing(ctx)
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatalw("failed to connect to db", "error", err)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warnw("redis unavailable, presence mirror disabled", "error", err)
		redisClient = nil
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	logger.Infow("event publisher ready", "mode", rabbitmq.PublisherMode(publisher))

	if amqpPub, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err == nil {
		observability.SetPublisher(amqpPub)
		defer amqpPub.Close()
	}

	audit := telemetry.NewAuditEmitter(publisher, "messaging.audit", serviceName, cfg.Env)

	userRepo := repositories.NewUserRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	presenceRepo := repositories.NewPresenceRepo(database)
	badgeRepo := repositories.NewBadgeRepo(database)

	hub := ws.NewHub(logger)
	attachmentStore := attachments.NewFileStore(cfg.AttachmentDir, cfg.AttachmentBaseURL)

	presenceService := services.NewPresenceService(presenceRepo, redisClient, cfg.RedisPrefix, cfg.PresenceTTL, logger)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, hub, logger)
	badgeService := services.NewBadgeService(badgeRepo, notificationService, services.DefaultAwardRules(), logger)
	messageService := services.NewMessageService(userRepo, conversationRepo, messageRepo, notificationService, badgeService, hub, attachmentStore, logger)
	conversationService := services.NewConversationService(conversationRepo, messageRepo, userRepo, presenceService, logger)

	verifier := middleware.NewVerifier(cfg.JWTSecret)

	messageHandler := handlers.NewMessageHandler(messageService, conversationService, audit)
	notificationHandler := handlers.NewNotificationHandler(notificationService, presenceService)
	badgeHandler := handlers.NewBadgeHandler(badgeService)
	wsHandler := ws.NewHandler(hub, verifier, presenceService, notificationService, cfg.PresenceGrace, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static(cfg.AttachmentBaseURL, cfg.AttachmentDir)

	authMiddleware := middleware.AuthMiddleware(verifier)

	api := router.Group("/api", authMiddleware)
	{
		api.POST("/messages", messageHandler.Send)
		api.PUT("/messages/:message_id", messageHandler.Edit)
		api.DELETE("/messages/:message_id", messageHandler.Delete)
		api.POST("/messages/typing", messageHandler.Typing)

		api.GET("/conversations", messageHandler.ListConversations)
		api.GET("/conversations/stats", messageHandler.Stats)
		api.GET("/conversations/:conversation_id/messages", messageHandler.History)
		api.PUT("/conversations/:conversation_id/read", messageHandler.MarkRead)
		api.PUT("/conversations/:conversation_id/archive", messageHandler.Archive)

		api.GET("/notifications", notificationHandler.List)
		api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		api.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		api.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		api.DELETE("/notifications/:id", notificationHandler.Delete)
		api.POST("/notifications", notificationHandler.Create)
		api.POST("/notifications/bulk", notificationHandler.CreateBulk)

		api.GET("/users/:user_id/online-status", notificationHandler.OnlineStatus)
		api.GET("/users/online", notificationHandler.OnlineUsers)

		api.GET("/badges", badgeHandler.List)
		api.POST("/badges/award", badgeHandler.Award)
	}

	router.GET("/ws", wsHandler.Handle)

	logger.Infow("listening", "port", cfg.Port, "env", cfg.Env)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("server error", "error", err)
	}
}
