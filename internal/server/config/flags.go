package config

import (
	"flag"
	"os"
	"time"

	"github.com/kinganjia/backend/internal/flagx"
)

var serverFlags = []string{
	"-a", "-grpc", "-d", "-s", "-t", "-format", "-hasher", "-cost",
	"-policy", "-owner", "-log", "-u", "-p", "-b", "-g", "-e", "-presign",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        HTTP bind address (e.g. ":8080")
//	-grpc string     gRPC health bind address
//	-d string        PostgreSQL DSN
//	-s string        token secret key
//	-t int           token lifetime, minutes
//	-format string   token format: jwt|paseto
//	-hasher string   password hasher: bcrypt|argon2id
//	-cost int        bcrypt cost
//	-policy string   delete policy: reject|cascade|orphan
//	-owner bool      only owners may modify claims and images
//	-log string      log level
//	-u, -p string    S3 root user / password
//	-b, -g string    S3 bucket / region
//	-e string        S3 base endpoint
//	-presign int     presigned URL lifetime, minutes
//
// os.Args is filtered first so flags owned by other loaders do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.GRPCHealthAddr, "grpc", config.GRPCHealthAddr, "address of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenLifetime := fs.Int("t", int(config.TokenLifetime.Minutes()), "token lifetime (in minutes)")
	fs.StringVar(&config.TokenFormat, "format", config.TokenFormat, "token format (jwt|paseto)")
	fs.StringVar(&config.PasswordHasher, "hasher", config.PasswordHasher, "password hasher (bcrypt|argon2id)")
	fs.IntVar(&config.BcryptCost, "cost", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.DeletePolicy, "policy", config.DeletePolicy, "delete policy (reject|cascade|orphan)")
	fs.BoolVar(&config.EnforceOwnership, "owner", config.EnforceOwnership, "restrict claim and image mutation to their owner")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	presignTTL := fs.Int("presign", int(config.PresignTTL.Minutes()), "presigned URL lifetime (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenLifetime = time.Duration(*tokenLifetime) * time.Minute
	config.PresignTTL = time.Duration(*presignTTL) * time.Minute
}
