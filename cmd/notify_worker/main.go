package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat_gateway_service/internal/chat/repository"
	notifapp "chat_gateway_service/internal/notification/app"
	notifrepo "chat_gateway_service/internal/notification/repository"
	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/database"
	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.NotifyWorker, config.EnvConfig.NotifyWorkerLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.NotifyWorker](config.EnvConfig.NotifyWorker, config.EnvConfig.NotifyWorkerYAMLPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. PostgreSQL (notification preferences)
	db, err := database.NewPGConnection(database.Connection{
		ConnectStr:    database.PostgresDSN(cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to PostgreSQL after retries",
			zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}

	// 2. queue
	consumer := newConsumer(cfg.Notifier)
	defer consumer.Close()

	// 3. senders
	email := notifrepo.NewSMTPSender(notifrepo.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	worker := notifapp.NewWorker(repository.NewUserRepository(db), email, notifrepo.NewLogPushSender())

	if err := worker.Run(ctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Error("notify worker stopped", zap.Error(err))
	}
}

func newConsumer(cfg config.NotifierConfig) notifrepo.Consumer {
	connection := database.Connection{
		RetryCount:    cfg.RetryCount,
		RetryInterval: time.Duration(cfg.RetryInterval),
	}

	switch cfg.Driver {
	case "kafka":
		r, err := database.NewKafkaReaderWithRetry(database.KafkaConnection{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaTopic,
			GroupID:       cfg.KafkaGroupID,
			RetryCount:    cfg.RetryCount,
			RetryInterval: time.Duration(cfg.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal("connect kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.Error(err))
		}
		return notifrepo.NewKafkaConsumer(r)
	default:
		connection.ConnectStr = database.RabbitURL(cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port)
		conn, err := database.ConnectRabbitMQWithRetry(connection)
		if err != nil {
			logger.Log.Fatal("connect rabbitmq", zap.String("host", cfg.RabbitMQ.IP), zap.Error(err))
		}
		ch, err := database.OpenQueueChannel(conn, cfg.QueueName)
		if err != nil {
			logger.Log.Fatal("open rabbitmq channel", zap.Error(err))
		}
		return notifrepo.NewRabbitConsumer(ch, cfg.QueueName)
	}
}
