package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///tmp/farmcloud.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, SequenceBackendDatabase, cfg.OrderSequenceBackend)
	assert.Equal(t, 5*time.Minute, cfg.SettingsCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.False(t, cfg.WhatsAppEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"database backend", Config{OrderSequenceBackend: SequenceBackendDatabase}, false},
		{"redis backend without url", Config{OrderSequenceBackend: SequenceBackendRedis}, true},
		{"redis backend", Config{OrderSequenceBackend: SequenceBackendRedis, RedisURL: "redis://localhost:6379"}, false},
		{"unknown backend", Config{OrderSequenceBackend: "etcd"}, true},
		{"negative rate limit", Config{OrderSequenceBackend: SequenceBackendDatabase, RateLimitWrites: -1}, true},
		{"sqlite in production", Config{OrderSequenceBackend: SequenceBackendDatabase, AppEnv: "production", DatabaseURL: "sqlite://x.db"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
