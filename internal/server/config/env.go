package config

import "github.com/kinganjia/backend/internal/flagx"

var osEnv = flagx.OSEnv

// parseEnv overlays KN_* environment variables.
func parseEnv(config *Config, env flagx.Env) {
	env.String("KN_HTTP_ADDR", &config.HTTPAddr)
	env.String("KN_GRPC_HEALTH_ADDR", &config.GRPCHealthAddr)
	env.String("KN_DATABASE_DSN", &config.DatabaseDSN)
	env.String("KN_SECRET_KEY", &config.SecretKey)
	env.Duration("KN_TOKEN_LIFETIME", &config.TokenLifetime)
	env.String("KN_TOKEN_FORMAT", &config.TokenFormat)
	env.String("KN_PASSWORD_HASHER", &config.PasswordHasher)
	env.Int("KN_BCRYPT_COST", &config.BcryptCost)
	env.String("KN_DELETE_POLICY", &config.DeletePolicy)
	env.Bool("KN_ENFORCE_OWNERSHIP", &config.EnforceOwnership)
	env.String("KN_LOG_LEVEL", &config.LogLevel)
	env.String("KN_S3_ROOT_USER", &config.S3RootUser)
	env.String("KN_S3_ROOT_PASSWORD", &config.S3RootPassword)
	env.String("KN_S3_BUCKET", &config.S3Bucket)
	env.String("KN_S3_REGION", &config.S3Region)
	env.String("KN_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	env.Duration("KN_PRESIGN_TTL", &config.PresignTTL)
}
