package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"HOST", "PORT", "DATABASE_DRIVER", "DATABASE_URL", "REDIS_ADDR", "KAFKA_BROKERS",
		"KAFKA_TOPIC", "JWT_SECRET", "LOG_LEVEL", "REQUEST_TIMEOUT", "RATE_LIMIT",
	} {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", conf.Addr())
	assert.Equal(t, 15*time.Second, conf.Server.RequestTimeout)
	assert.Equal(t, "sqlite3", conf.DB.Driver)
	assert.NotEmpty(t, conf.DB.URL)
	assert.Empty(t, conf.Redis.Addr)
	assert.Empty(t, conf.Kafka.Brokers)
	assert.Equal(t, "user-topic", conf.Kafka.Topic)
	assert.Empty(t, conf.Auth.JWTSecret)
	assert.Zero(t, conf.RateLimit.Rate)
	assert.Equal(t, "info", conf.Log.Level)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
  request_timeout: 5s
db:
  driver: mysql
  url: root:@tcp(127.0.0.1:3306)/user-db
redis:
  addr: localhost:6379
  ttl: 1m
kafka:
  brokers: [localhost:9092, localhost:9093]
rate_limit:
  rate: 10
  burst: 20
`), 0o600))

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", conf.Addr())
	assert.Equal(t, 5*time.Second, conf.Server.RequestTimeout)
	assert.Equal(t, "mysql", conf.DB.Driver)
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/user-db", conf.DB.URL)
	assert.Equal(t, "localhost:6379", conf.Redis.Addr)
	assert.Equal(t, time.Minute, conf.Redis.TTL)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, conf.Kafka.Brokers)
	assert.Equal(t, 10.0, conf.RateLimit.Rate)
	assert.Equal(t, 20, conf.RateLimit.Burst)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\n"), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "postgres://localhost/users")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT", "1.5")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", conf.Server.Port)
	assert.Equal(t, "pgx", conf.DB.Driver)
	assert.Equal(t, "postgres://localhost/users", conf.DB.URL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, conf.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, conf.Server.RequestTimeout)
	assert.Equal(t, 1.5, conf.RateLimit.Rate)
	assert.Equal(t, 4, conf.RateLimit.Burst)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "user-topic")
	defer w.Close()

	assert.Equal(t, "user-topic", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}

func TestLoad_KafkaBrokersTrimmed(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", " a:9092, b:9092 ,,")

	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, conf.Kafka.Brokers)
}

func TestLoad_KafkaBrokersOnlySeparators(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", " , ")

	conf, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, conf.Kafka.Brokers)
}
