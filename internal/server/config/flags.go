package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-s", "-t", "-r", "-u", "-p", "-b", "-g", "-e",
	"-reveal-attempts", "-reveal-window",
	"-revocation-backend", "-ratelimit-backend",
	"-redis-addr", "-redis-password", "-redis-db",
	"-log-level", "-audit-s3",
}

// parseFlags populates Config fields from command-line flags.
//
// Short flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-u/-p       S3 user and password
//	-b/-g/-e    S3 bucket, region and base endpoint
//
// Long flags cover the rate limiter, backends, Redis and logging. Boolean
// flags must use the -audit-s3=true form.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 audit bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.IntVar(&config.RevealMaxAttempts, "reveal-attempts", config.RevealMaxAttempts, "reveal attempts per window")
	fs.DurationVar(&config.RevealWindow, "reveal-window", config.RevealWindow, "reveal rate limit window")
	fs.StringVar(&config.RevocationBackend, "revocation-backend", config.RevocationBackend, "memory|postgres|redis")
	fs.StringVar(&config.RateLimitBackend, "ratelimit-backend", config.RateLimitBackend, "memory|redis")
	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "redis database number")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "debug|info|warn|error")
	fs.BoolVar(&config.AuditS3Enabled, "audit-s3", config.AuditS3Enabled, "archive audit records to S3")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
