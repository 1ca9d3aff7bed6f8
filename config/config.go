package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type (
	APP struct {
		Name          string
		Host          string
		Port          string
		Env           string
		JWTSecret     string
		PublicBaseURL string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	Storage struct {
		URL        string
		ServiceKey string
		Bucket     string
	}
	MQ struct {
		User             string
		Password         string
		Vhost            string
		Host             string
		AmqpPort         string
		ExpiryExchange   string
		WaitQueueName    string
		ExpiredQueueName string
	}
	Limits struct {
		MaxFileSizeBytes int64
		MaxFileCount     int
		DefaultTTL       time.Duration
		MaxTTL           time.Duration
	}
	Cleanup struct {
		Strategy      string // "events" or "sweep"
		SweepInterval time.Duration
	}

	Config struct {
		App     APP
		DB      DB
		Storage Storage
		MQ      MQ
		Limits  Limits
		Cleanup Cleanup
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func Load() Config {
	app := APP{
		Name:          getEnv("SERVICE_NAME", "filesharingapi"),
		Host:          getEnv("SERVICE_HOST", ""),
		Port:          getEnv("SERVICE_PORT", "5000"),
		Env:           getEnv("SERVICE_ENV", ""),
		JWTSecret:     getEnv("SERVICE_JWT_SECRET", ""),
		PublicBaseURL: getEnv("SERVICE_PUBLIC_BASE_URL", "http://localhost:5000"),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	storage := Storage{
		URL:        getEnv("SUPABASE_URL", ""),
		ServiceKey: getEnv("SUPABASE_KEY", ""),
		Bucket:     getEnv("SUPABASE_BUCKET", "files"),
	}
	mq := MQ{
		User:             getEnv("RABBITMQ_USER", ""),
		Password:         getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:            getEnv("RABBITMQ_VHOST", ""),
		Host:             getEnv("RABBITMQ_HOST", ""),
		AmqpPort:         getEnv("RABBITMQ_AMQP_PORT", ""),
		ExpiryExchange:   getEnv("RABBITMQ_EXPIRY_EXCHANGE", "filesharing.expiry"),
		WaitQueueName:    getEnv("RABBITMQ_WAIT_QUEUE", "filesharing.expiry.wait"),
		ExpiredQueueName: getEnv("RABBITMQ_EXPIRED_QUEUE", "filesharing.expiry.expired"),
	}
	limits := Limits{
		MaxFileSizeBytes: getEnvInt64("LIMITS_MAX_FILE_SIZE_BYTES", 50<<20),
		MaxFileCount:     int(getEnvInt64("LIMITS_MAX_FILE_COUNT", 10)),
		DefaultTTL:       time.Duration(getEnvInt64("TTL_IN_SECONDS", 3600)) * time.Second,
		MaxTTL:           time.Duration(getEnvInt64("LIMITS_MAX_TTL_SECONDS", 7*24*3600)) * time.Second,
	}
	cleanup := Cleanup{
		Strategy:      getEnv("EXPIRY_STRATEGY", "events"),
		SweepInterval: time.Duration(getEnvInt64("CLEANUP_INTERVAL_SECONDS", 300)) * time.Second,
	}

	return Config{
		App:     app,
		DB:      db,
		Storage: storage,
		MQ:      mq,
		Limits:  limits,
		Cleanup: cleanup,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// EventsEnabled reports whether the event-driven expiry notifier should run.
// The periodic sweep runs in both modes as the safety net for missed events.
func (c Config) EventsEnabled() bool { return c.Cleanup.Strategy != "sweep" }
