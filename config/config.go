package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendRelational = "relational"
	BackendDocument   = "document"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	ServerPort  string
	Backend     string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string

	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	MongoURI      string
	MongoDatabase string

	RabbitURL string

	RedisAddr               string
	RateLimitCapacity       int
	RateLimitRefillInterval time.Duration
}

// Load reads the environment. A .env file in the working directory is loaded
// first when present; variables already set in the process win.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() *Config {
	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Backend:     strings.ToLower(getEnv("STORE_BACKEND", BackendRelational)),
		CORSOrigins: parseCSV(getEnv("CORS_ORIGINS", "*")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "eventos_db"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 10),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDatabase: getEnv("MONGO_DATABASE", "eventos_db"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RateLimitCapacity:       getInt("RATE_LIMIT_CAPACITY", 60),
		RateLimitRefillInterval: getDuration("RATE_LIMIT_REFILL_INTERVAL", time.Second),
	}
	if cfg.Backend != BackendDocument {
		cfg.Backend = BackendRelational
	}
	if cfg.DBDriver != DriverMySQL {
		cfg.DBDriver = DriverPostgres
	}
	defaultPort := "5432"
	if cfg.DBDriver == DriverMySQL {
		defaultPort = "3306"
	}
	cfg.DBPort = getEnv("DB_PORT", defaultPort)
	return cfg
}

// DSN renders the connection string for the configured relational driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
