package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat_gateway_service/internal/api/handlers"
	apirouter "chat_gateway_service/internal/api/router"
	"chat_gateway_service/internal/chat/app"
	"chat_gateway_service/internal/chat/hub"
	"chat_gateway_service/internal/chat/repository"
	chatrouter "chat_gateway_service/internal/chat/router"
	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/database"
	"chat_gateway_service/pkg/logger"
	testtool "chat_gateway_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatGateway, config.EnvConfig.ChatGatewayLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.ChatGateway](config.EnvConfig.ChatGateway, config.EnvConfig.ChatGatewayYAMLPath)
	cfg.Websocket = cfg.Websocket.WithDefaults()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var done closer
	defer done.run()
	checks := map[string]database.HealthCheck{}

	// 1. PostgreSQL (users, channels, channel_members)
	db, err := database.NewPGConnection(postgresConnection(cfg.PostgreSQL))
	if err != nil {
		logger.Log.Fatal("Unable to connect to PostgreSQL after retries",
			zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("get sql.DB", zap.Error(err))
	}
	done.add(func() { _ = sqlDB.Close() })
	checks["postgres"] = sqlDB.PingContext

	channelRepo := repository.NewChannelRepository(db)
	if err := channelRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("migrate channels", zap.Error(err))
	}
	userRepo := repository.NewUserRepository(db)

	// 2. message store / unread index / credentials / notifications
	messageStore := newMessageStore(ctx, cfg, db, checks, &done)
	unread := newUnreadIndex(cfg, checks, &done)
	issuer := newTokenIssuer(ctx, cfg, checks, &done)
	notifier := newNotifier(cfg.Notifier, &done)

	// 3. chat core
	chat := app.NewChatService(hub.New(), channelRepo, messageStore, unread, issuer, notifier, cfg.Websocket)

	// 4. grpc health
	interval := cfg.HealthInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	reporter := database.NewHealthReporter(checks, interval)
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Log.Fatal("listen grpc health", zap.String("port", cfg.GRPCPort), zap.Error(err))
		}
		go func() {
			if err := reporter.Serve(lis); err != nil {
				logger.Log.Warn("grpc health server stopped", zap.Error(err))
			}
		}()
		go reporter.Run(ctx)
	}

	if cfg.PprofAddr != "" {
		testtool.StartPprof(cfg.PprofAddr)
	}

	// 5. Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatGatewayLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	apirouter.RegisterRoutes(r, apirouter.Handlers{
		Auth:     handlers.NewAuthHandler(userRepo, issuer),
		Groups:   handlers.NewGroupHandler(channelRepo, messageStore, chat),
		Messages: handlers.NewMessageHandler(messageStore, chat),
	}, issuer)
	chatrouter.RegisterRoutes(r, chatrouter.NewChatWebsocketHandler(chat, cfg.Websocket))

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down chat gateway")
		reporter.Stop()
		if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Warn("fiber shutdown", zap.Error(err))
		}
	}()

	// Listen
	port := ":" + cfg.Port
	logger.Log.Info("Chat Gateway listening", zap.String("port", port), zap.String("store", cfg.Store.Messages),
		zap.String("unread", cfg.Unread.Driver), zap.String("auth", cfg.Auth.Mode), zap.String("notifier", cfg.Notifier.Driver))
	if err := r.Listen(port); err != nil {
		logger.Log.Error("Failed to start Fiber", zap.Error(err))
	}
}
