package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kinganjia/backend/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-grpc", ":6000", "-d", "db", "-s", "secret", "-t", "30",
				"-format", "paseto", "-hasher", "argon2id", "-cost", "12", "-policy", "cascade", "-owner=true",
				"-log", "debug", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1",
				"-e", "http://endpoint", "-presign", "5",
			},
			expected: &Config{
				HTTPAddr:         "127.0.0.1:9090",
				GRPCHealthAddr:   ":6000",
				DatabaseDSN:      "db",
				SecretKey:        "secret",
				TokenLifetime:    30 * time.Minute,
				TokenFormat:      "paseto",
				PasswordHasher:   "argon2id",
				BcryptCost:       12,
				DeletePolicy:     "cascade",
				EnforceOwnership: true,
				LogLevel:         "debug",
				S3RootUser:       "user",
				S3RootPassword:   "password",
				S3Bucket:         "bucket",
				S3Region:         "us-west-1",
				S3BaseEndpoint:   "http://endpoint",
				PresignTTL:       5 * time.Minute,
			},
		},
		{
			name:        "non-numeric lifetime panics",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseEnv(t *testing.T) {
	vars := map[string]string{
		"KN_HTTP_ADDR":         ":7070",
		"KN_TOKEN_LIFETIME":    "45m",
		"KN_DELETE_POLICY":     "orphan",
		"KN_ENFORCE_OWNERSHIP": "true",
		"KN_BCRYPT_COST":       "11",
	}
	env := flagx.Env{Lookup: func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, env)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 45*time.Minute, cfg.TokenLifetime)
	assert.Equal(t, DeletePolicyOrphan, cfg.DeletePolicy)
	assert.True(t, cfg.EnforceOwnership)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, "secretKey", cfg.SecretKey)
}
