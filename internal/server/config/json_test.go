package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":   "www.example:9000",
		"database_dsn":         "postgres://json",
		"secret_key":           "my_secret_key",
		"password_hash_scheme": "argon2id",
		"smtp_host":            "smtp.example",
		"smtp_port":            2525,
		"smtp_timeout":         "30s",
		"mail_template_source": "s3",
		"s3_bucket":            "bucket",
		"s3_prefix":            "mail",
		"otlp_endpoint":        "http://otel:4318",
		"shutdown_timeout":     int64(2 * time.Second),
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://json", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "argon2id", cfg.PasswordHashScheme)
		assert.Equal(t, "smtp.example", cfg.SMTPHost)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, 30*time.Second, cfg.SMTPTimeout)
		assert.Equal(t, "s3", cfg.MailTemplateSource)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "mail", cfg.S3Prefix)
		assert.Equal(t, "http://otel:4318", cfg.OTLPEndpoint)
		assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("missing keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"smtp_host": "other"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "other", cfg.SMTPHost)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 10*time.Second, cfg.SMTPTimeout)
	})

	t.Run("config path from environment", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("SHOPACCOUNTS_CONFIG", pathFlag)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
	})

	t.Run("no config → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrGRPC: "defaults:1234", SMTPTimeout: time.Minute}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, time.Minute, cfg.SMTPTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
