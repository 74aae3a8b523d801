package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	OrderStorePostgres = "postgres"
	OrderStoreMongo    = "mongo"

	EventsNone     = "none"
	EventsRabbitMQ = "rabbitmq"
	EventsKafka    = "kafka"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	OrderStore string // postgres / mongo
	MongoURI   string
	MongoDB    string

	JWTSecret      string        // セッション署名シークレット
	SessionTTL     time.Duration // セッションcookieの有効期限
	CookieSecure   bool
	AdminSignupKey string // 空なら管理者登録は無効

	EventsBackend string // none / rabbitmq / kafka
	RabbitMQURL   string
	KafkaBrokers  []string
	KafkaTopic    string

	FEURL           string // CORS許可オリジン
	StaticDir       string // SPAのdist（空なら配信しない）
	ShutdownTimeout time.Duration
}

// Loadは環境変数から設定を読む
func Load() (Config, error) {
	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := durationOr("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	shutdown, err := durationOr("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cookieSecure, err := boolOr("COOKIE_SECURE", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "thokmarket"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		OrderStore: strings.ToLower(getenv("ORDER_STORE", OrderStorePostgres)),
		MongoURI:   os.Getenv("MONGO_URI"),
		MongoDB:    getenv("MONGO_DB", "thokmarket"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionTTL:     sessionTTL,
		CookieSecure:   cookieSecure,
		AdminSignupKey: os.Getenv("ADMIN_SIGNUP_KEY"),

		EventsBackend: strings.ToLower(getenv("EVENTS_BACKEND", EventsNone)),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getenv("KAFKA_TOPIC", "orders"),

		FEURL:           getenv("FE_URL", "http://localhost:5173"),
		StaticDir:       os.Getenv("STATIC_DIR"),
		ShutdownTimeout: shutdown,
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	switch cfg.OrderStore {
	case OrderStorePostgres:
	case OrderStoreMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when ORDER_STORE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("ORDER_STORE must be postgres or mongo: %q", cfg.OrderStore)
	}

	switch cfg.EventsBackend {
	case EventsNone:
	case EventsRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return Config{}, fmt.Errorf("RABBITMQ_URL is required when EVENTS_BACKEND=rabbitmq")
		}
	case EventsKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
		}
	default:
		return Config{}, fmt.Errorf("EVENTS_BACKEND must be none, rabbitmq or kafka: %q", cfg.EventsBackend)
	}

	return cfg, nil
}

// Postgres接続文字列
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// ":8080"形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
