package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "auditadmin", cfg.JWTIssuer)
	assert.Equal(t, "masterdata.audit", cfg.Kafka.AuditTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AUDITADMIN_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("REDIS_READ_TIMEOUT", "1s")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Second, cfg.Redis.ReadTimeout)
}

func TestFromEnvBadNumbersFallBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "lots")
	t.Setenv("REDIS_DIAL_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
}
