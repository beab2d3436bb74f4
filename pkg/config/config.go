package config

import "time"

// ChatGateway definition chat_gateway YAML structure
type ChatGateway struct {
	Port     string `mapstructure:"port"`
	GRPCPort string `mapstructure:"grpc_port"`

	PostgreSQL DatabaseConfig  `mapstructure:"pg"`
	MongoSQL   DatabaseConfig  `mapstructure:"mongo"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Store      StoreConfig     `mapstructure:"store"`
	Unread     UnreadConfig    `mapstructure:"unread"`
	Notifier   NotifierConfig  `mapstructure:"notifier"`
	Websocket  WebsocketConfig `mapstructure:"websocket"`

	HealthInterval time.Duration `mapstructure:"health_interval"`
	PprofAddr      string        `mapstructure:"pprof_addr"`
}

// NotifyWorker definition notify_worker YAML structure
type NotifyWorker struct {
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Notifier   NotifierConfig `mapstructure:"notifier"`
	SMTP       SMTPConfig     `mapstructure:"smtp"`
}

// RedisConfig definition redis setting, Addr 為空時使用 sentinel
type RedisConfig struct {
	RedisDB int    `mapstructure:"redis_db"`
	Addr    string `mapstructure:"addr"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// AuthConfig definition credential setting
type AuthConfig struct {
	// Mode token | jwt
	Mode      string        `mapstructure:"mode"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// StoreConfig select message store backend
type StoreConfig struct {
	// Messages postgres | mongo
	Messages string `mapstructure:"messages"`
}

// UnreadConfig select unread index backend
type UnreadConfig struct {
	// Driver redis | memory
	Driver string `mapstructure:"driver"`
}

// NotifierConfig definition notification transport
type NotifierConfig struct {
	// Driver rabbitmq | kafka | log
	Driver        string   `mapstructure:"driver"`
	QueueName     string   `mapstructure:"queue_name"`
	Buffer        int      `mapstructure:"buffer"`
	RabbitMQ      MQConfig `mapstructure:"rabbitmq"`
	KafkaBrokers  []string `mapstructure:"kafka_brokers"`
	KafkaTopic    string   `mapstructure:"kafka_topic"`
	KafkaGroupID  string   `mapstructure:"kafka_group_id"`
	RetryCount    int      `mapstructure:"retry_count"`
	RetryInterval int      `mapstructure:"retry_interval"`
}

// MQConfig definition rabbitmq setting
type MQConfig struct {
	IP       string `mapstructure:"ip"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// WebsocketConfig definition per-connection limits
type WebsocketConfig struct {
	SendBuffer     int           `mapstructure:"send_buffer"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	OpTimeout      time.Duration `mapstructure:"op_timeout"`
}

// SMTPConfig definition mail relay
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// WithDefaults fill zero websocket values
func (w WebsocketConfig) WithDefaults() WebsocketConfig {
	if w.SendBuffer <= 0 {
		w.SendBuffer = 256
	}
	if w.PingPeriod <= 0 {
		w.PingPeriod = 54 * time.Second
	}
	if w.WriteWait <= 0 {
		w.WriteWait = 10 * time.Second
	}
	if w.MaxMessageSize <= 0 {
		w.MaxMessageSize = 4096
	}
	if w.OpTimeout <= 0 {
		w.OpTimeout = 5 * time.Second
	}
	return w
}
