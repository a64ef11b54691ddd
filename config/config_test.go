package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "STORE_BACKEND", "DB_DRIVER", "DB_PORT", "RABBITMQ_URL", "REDIS_ADDR", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendRelational, cfg.Backend)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.RabbitURL)
	assert.Equal(t, time.Second, cfg.RateLimitRefillInterval)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Document")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "bogus")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, ,http://127.0.0.1:3000")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "250ms")

	cfg := FromEnv()

	assert.Equal(t, BackendDocument, cfg.Backend)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.RateLimitRefillInterval)
}

func TestFromEnv_UnknownBackendFallsBack(t *testing.T) {
	t.Setenv("STORE_BACKEND", "cassandra")

	assert.Equal(t, BackendRelational, FromEnv().Backend)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: DriverPostgres, DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "eventos", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=eventos sslmode=disable", cfg.DSN())

	cfg.DBDriver = DriverMySQL
	cfg.DBPort = "3306"
	assert.Equal(t, "u:p@tcp(db:3306)/eventos?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DSN())
}
