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
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"http_addr":         "0.0.0.0:9000",
		"grpc_health_addr":  "",
		"database_dsn":      "postgres://db",
		"secret_key":        "my_secret_key",
		"token_lifetime":    "2h",
		"token_format":      "paseto",
		"password_hasher":   "argon2id",
		"bcrypt_cost":       12,
		"delete_policy":     "cascade",
		"enforce_ownership": true,
		"log_level":         "debug",
		"s3_root_user":      "user",
		"s3_root_password":  "password",
		"s3_bucket":         "bucket",
		"s3_region":         "region",
		"s3_base_endpoint":  "base_endpoint",
		"presign_ttl":       300000000000,
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "0.0.0.0:9000", cfg.HTTPAddr)
		assert.Equal(t, "", cfg.GRPCHealthAddr)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.TokenLifetime)
		assert.Equal(t, TokenFormatPaseto, cfg.TokenFormat)
		assert.Equal(t, HasherArgon2id, cfg.PasswordHasher)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, DeletePolicyCascade, cfg.DeletePolicy)
		assert.True(t, cfg.EnforceOwnership)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 5*time.Minute, cfg.PresignTTL)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"delete_policy": "orphan"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, DeletePolicyOrphan, cfg.DeletePolicy)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, 24*time.Hour, cfg.TokenLifetime)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HTTPAddr: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
