package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultMaxCartItems caps how many line items one merge request may carry.
const defaultMaxCartItems = 100

type Config struct {
	HTTPPort          string
	MongoURI          string
	MongoDBName       string
	RedisAddr         string
	RedisPassword     string
	KafkaBrokers      []string
	ProductServiceURL string
	CouponServiceURL  string
	MaxCartItems      int
	LogLevel          string

	RequestTimeout  time.Duration
	ResolverTimeout time.Duration
	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		HTTPPort:          getEnv("HTTP_PORT", "7004"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "cartdb"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://product:7005"),
		CouponServiceURL:  getEnv("COUPON_SERVICE_URL", "http://coupon:7003"),
		MaxCartItems:      getEnvInt("MAX_CART_ITEMS", defaultMaxCartItems),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RequestTimeout:    30 * time.Second,
		ResolverTimeout:   10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
