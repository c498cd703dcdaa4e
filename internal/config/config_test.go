package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "piiguard", cfg.MetricsNamespace)
				assert.Empty(t, cfg.PIIEncryptionKey)
				assert.Equal(t, "v1", cfg.PIIEncryptionKeyVersion)
				assert.Equal(t, "aes-gcm", cfg.PIIEncryptionAlgorithm)
				assert.Equal(t, "aead", cfg.PIIEncryptionBackend)
				assert.Equal(t, "gotrue", cfg.IdentityProvider)
				assert.Empty(t, cfg.AdminEmailAllowlist)
				assert.Equal(t, 60*time.Minute, cfg.AdminIdleTimeout)
				assert.Equal(t, 7*24*time.Hour, cfg.AdminAbsoluteTimeout)
				assert.True(t, cfg.SessionPolicyEnforced())
				assert.Equal(t, "memory", cfg.AdminSessionStore)
				assert.Equal(t, "memory", cfg.RateLimitStore)
				assert.Equal(t, time.Minute, cfg.RateLimitAdminWindow)
				assert.Equal(t, 100, cfg.RateLimitAdminMaxRequests)
				assert.Equal(t, 5, cfg.RateLimitFormMaxRequests)
				assert.Equal(t, 20, cfg.RateLimitChatMaxRequests)
				assert.Equal(t, 10*time.Minute, cfg.RateLimitEntryTTL)
				assert.Equal(t, 5*time.Second, cfg.AuditWriteTimeout)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/testdb",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/testdb", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load pii key configuration",
			envVars: map[string]string{
				"PII_ENCRYPTION_KEY":         "0123456789abcdef0123456789abcdef",
				"PII_ENCRYPTION_KEY_VERSION": "v2",
				"PII_PREVIOUS_KEYS":          "v1:fedcba9876543210fedcba9876543210",
				"PII_ENCRYPTION_ALGORITHM":   "chacha20-poly1305",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.PIIEncryptionKey)
				assert.Equal(t, "v2", cfg.PIIEncryptionKeyVersion)
				assert.Equal(t, "v1:fedcba9876543210fedcba9876543210", cfg.PIIPreviousKeys)
				assert.Equal(t, "chacha20-poly1305", cfg.PIIEncryptionAlgorithm)
			},
		},
		{
			name: "load admin session configuration",
			envVars: map[string]string{
				"ADMIN_EMAIL_ALLOWLIST":       "Ops@Example.com, cto@example.com",
				"ADMIN_IDLE_TIMEOUT_MINUTES":  "15",
				"ADMIN_ABSOLUTE_TIMEOUT_DAYS": "2",
				"ADMIN_SESSION_POLICY_MODE":   "provider",
				"ADMIN_SESSION_STORE":         "redis",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Ops@Example.com, cto@example.com", cfg.AdminEmailAllowlist)
				assert.Equal(t, 15*time.Minute, cfg.AdminIdleTimeout)
				assert.Equal(t, 48*time.Hour, cfg.AdminAbsoluteTimeout)
				assert.False(t, cfg.SessionPolicyEnforced())
				assert.Equal(t, "redis", cfg.AdminSessionStore)
			},
		},
		{
			name: "absolute timeout is read in days",
			envVars: map[string]string{
				"ADMIN_ABSOLUTE_TIMEOUT_DAYS":  "1",
				"ADMIN_ABSOLUTE_TIMEOUT_HOURS": "72",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 24*time.Hour, cfg.AdminAbsoluteTimeout)
			},
		},
		{
			name: "load rate limit configuration",
			envVars: map[string]string{
				"RATE_LIMIT_STORE":                "redis",
				"REDIS_URL":                       "redis://cache:6379/1",
				"RATE_LIMIT_ADMIN_WINDOW_SECONDS": "30",
				"RATE_LIMIT_ADMIN_MAX_REQUESTS":   "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "redis", cfg.RateLimitStore)
				assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
				assert.Equal(t, 30*time.Second, cfg.RateLimitAdminWindow)
				assert.Equal(t, 10, cfg.RateLimitAdminMaxRequests)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()
			tt.validate(t, cfg)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		expected string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.expected, cfg.GetGinMode())
		})
	}
}
