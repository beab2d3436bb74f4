package main

import (
	"context"
	"fmt"
	"time"

	"chat_gateway_service/internal/chat/repository"
	notifapp "chat_gateway_service/internal/notification/app"
	notifrepo "chat_gateway_service/internal/notification/repository"
	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/database"
	"chat_gateway_service/pkg/logger"
	"chat_gateway_service/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// closer 關閉時依註冊順序反向執行
type closer []func()

func (c *closer) add(f func()) { *c = append(*c, f) }

func (c closer) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func postgresConnection(cfg config.DatabaseConfig) database.Connection {
	return database.Connection{
		ConnectStr:    database.PostgresDSN(cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database),
		RetryCount:    cfg.RetryCount,
		RetryInterval: time.Duration(cfg.RetryInterval),
	}
}

// newMessageStore postgres (gorm) or mongo
func newMessageStore(ctx context.Context, cfg config.ChatGateway, db *gorm.DB, checks map[string]database.HealthCheck, done *closer) repository.MessageStore {
	switch cfg.Store.Messages {
	case "mongo":
		uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
		mongo, err := database.NewMongoDB(ctx,
			database.Connection{
				ConnectStr:    uri,
				RetryCount:    cfg.MongoSQL.RetryCount,
				RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
			},
			cfg.MongoSQL.Database)
		if err != nil {
			logger.Log.Fatal("Unable to connect to mongoDB database after retries",
				zap.String("host", cfg.MongoSQL.Host), zap.Error(err))
		}
		done.add(func() { _ = mongo.Close(context.Background()) })

		if err := repository.EnsureIndexes(ctx, mongo.Database); err != nil {
			logger.Log.Fatal("ensure mongo indexes", zap.Error(err))
		}
		checks["mongo"] = func(ctx context.Context) error { return mongo.Client.Ping(ctx, nil) }
		return repository.NewMongoMessageRepository(mongo.Database)
	default:
		if err := repository.MigrateMessages(db); err != nil {
			logger.Log.Fatal("migrate messages", zap.Error(err))
		}
		return repository.NewMessageRepository(db)
	}
}

// newUnreadIndex redis (standalone or sentinel) or in-process memory
func newUnreadIndex(cfg config.ChatGateway, checks map[string]database.HealthCheck, done *closer) repository.UnreadIndex {
	if cfg.Unread.Driver == "memory" {
		logger.Log.Warn("unread index kept in memory, receipts do not survive restart")
		return repository.NewMemoryUnreadIndex()
	}

	var (
		client *redis.Client
		err    error
	)
	if cfg.Redis.Addr != "" {
		client, err = database.NewRedisStandaloneClient(cfg.Redis.Addr, cfg.Redis.RedisDB)
	} else {
		masterName, sentinel := config.GetRedisSetting()
		client, err = database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	}
	if err != nil {
		logger.Log.Fatal("connect redis", zap.Error(err))
	}
	done.add(func() { _ = client.Close() })

	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return repository.NewRedisUnreadIndex(client)
}

// newTokenIssuer opaque keys in auth_tokens (pgx) or signed JWT
func newTokenIssuer(ctx context.Context, cfg config.ChatGateway, checks map[string]database.HealthCheck, done *closer) repository.TokenIssuer {
	if cfg.Auth.Mode == "jwt" {
		token.Configure(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		return repository.NewJWTResolver(config.EnvConfig.ChatGateway)
	}

	pool, err := database.NewDatabaseConnection(postgresConnection(cfg.PostgreSQL))
	if err != nil {
		logger.Log.Fatal("Unable to connect to token database after retries", zap.Error(err))
	}
	done.add(pool.Close)

	if err := repository.MigrateTokens(ctx, pool); err != nil {
		logger.Log.Fatal("migrate auth_tokens", zap.Error(err))
	}
	checks["auth_tokens"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	return repository.NewTokenRepository(pool)
}

// newNotifier publish jobs for notify_worker
func newNotifier(cfg config.NotifierConfig, done *closer) *notifapp.AsyncNotifier {
	var pub notifrepo.Publisher

	switch cfg.Driver {
	case "rabbitmq":
		conn := connectRabbitMQ(cfg)
		done.add(func() { _ = conn.Close() })

		ch, err := database.OpenQueueChannel(conn, cfg.QueueName)
		if err != nil {
			logger.Log.Fatal("open rabbitmq channel", zap.Error(err))
		}
		pub = notifrepo.NewRabbitPublisher(ch, cfg.QueueName)
	case "kafka":
		w, err := database.NewKafkaWriterWithRetry(kafkaConnection(cfg))
		if err != nil {
			logger.Log.Fatal("connect kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.Error(err))
		}
		pub = notifrepo.NewKafkaPublisher(w)
	default:
		pub = notifrepo.NewLogPublisher()
	}

	n := notifapp.NewAsyncNotifier(pub, cfg.Buffer)
	done.add(func() {
		if err := n.Close(); err != nil {
			logger.Log.Warn("close notifier", zap.Error(err))
		}
	})
	return n
}

func connectRabbitMQ(cfg config.NotifierConfig) *amqp.Connection {
	conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    database.RabbitURL(cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port),
		RetryCount:    cfg.RetryCount,
		RetryInterval: time.Duration(cfg.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("connect rabbitmq", zap.String("host", cfg.RabbitMQ.IP), zap.Error(err))
	}
	return conn
}

func kafkaConnection(cfg config.NotifierConfig) database.KafkaConnection {
	return database.KafkaConnection{
		Brokers:       cfg.KafkaBrokers,
		Topic:         cfg.KafkaTopic,
		GroupID:       cfg.KafkaGroupID,
		RetryCount:    cfg.RetryCount,
		RetryInterval: time.Duration(cfg.RetryInterval),
	}
}
