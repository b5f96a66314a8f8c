package config

import (
	"encoding/json"
	"os"

	"github.com/kinganjia/backend/internal/flagx"
	"github.com/kinganjia/backend/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointers distinguish
// "absent" from zero so a partial file only overrides what it names.
// Durations accept "15m" or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr         *string         `json:"http_addr"`
	GRPCHealthAddr   *string         `json:"grpc_health_addr"`
	DatabaseDSN      *string         `json:"database_dsn"`
	SecretKey        *string         `json:"secret_key"`
	TokenLifetime    *timex.Duration `json:"token_lifetime"`
	TokenFormat      *string         `json:"token_format"`
	PasswordHasher   *string         `json:"password_hasher"`
	BcryptCost       *int            `json:"bcrypt_cost"`
	DeletePolicy     *string         `json:"delete_policy"`
	EnforceOwnership *bool           `json:"enforce_ownership"`
	LogLevel         *string         `json:"log_level"`
	S3RootUser       *string         `json:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	PresignTTL       *timex.Duration `json:"presign_ttl"`
}

// parseJson loads the file named by -c/-config into config. Without the flag
// nothing is loaded. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenLifetime != nil {
		config.TokenLifetime = c.TokenLifetime.Duration
	}
	setString(&config.TokenFormat, c.TokenFormat)
	setString(&config.PasswordHasher, c.PasswordHasher)
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	setString(&config.DeletePolicy, c.DeletePolicy)
	if c.EnforceOwnership != nil {
		config.EnforceOwnership = *c.EnforceOwnership
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PresignTTL != nil {
		config.PresignTTL = c.PresignTTL.Duration
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
