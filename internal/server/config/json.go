package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secretvault/internal/flagx"
	"github.com/dmitrijs2005/secretvault/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "1h" style
// strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	RevealMaxAttempts            int            `json:"reveal_max_attempts"`
	RevealWindow                 timex.Duration `json:"reveal_window"`
	RevocationBackend            string         `json:"revocation_backend"`
	RevocationSweepInterval      timex.Duration `json:"revocation_sweep_interval"`
	RateLimitBackend             string         `json:"rate_limit_backend"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      int            `json:"redis_db"`
	RedisPrefix                  string         `json:"redis_prefix"`
	KDFTime                      uint32         `json:"kdf_time"`
	KDFMemoryKiB                 uint32         `json:"kdf_memory_kib"`
	KDFThreads                   uint8          `json:"kdf_threads"`
	AnswerHashCost               int            `json:"answer_hash_cost"`
	LogLevel                     string         `json:"log_level"`
	AuditWriteTimeout            timex.Duration `json:"audit_write_timeout"`
	AuditS3Enabled               bool           `json:"audit_s3_enabled"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:             c.EndpointAddrGRPC,
		DatabaseDSN:                  c.DatabaseDSN,
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		RevealMaxAttempts:            c.RevealMaxAttempts,
		RevealWindow:                 timex.Duration{Duration: c.RevealWindow},
		RevocationBackend:            c.RevocationBackend,
		RevocationSweepInterval:      timex.Duration{Duration: c.RevocationSweepInterval},
		RateLimitBackend:             c.RateLimitBackend,
		RedisAddr:                    c.RedisAddr,
		RedisPassword:                c.RedisPassword,
		RedisDB:                      c.RedisDB,
		RedisPrefix:                  c.RedisPrefix,
		KDFTime:                      c.KDFTime,
		KDFMemoryKiB:                 c.KDFMemoryKiB,
		KDFThreads:                   c.KDFThreads,
		AnswerHashCost:               c.AnswerHashCost,
		LogLevel:                     c.LogLevel,
		AuditWriteTimeout:            timex.Duration{Duration: c.AuditWriteTimeout},
		AuditS3Enabled:               c.AuditS3Enabled,
		S3RootUser:                   c.S3RootUser,
		S3RootPassword:               c.S3RootPassword,
		S3Bucket:                     c.S3Bucket,
		S3Region:                     c.S3Region,
		S3BaseEndpoint:               c.S3BaseEndpoint,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.DatabaseDSN = j.DatabaseDSN
	c.SecretKey = j.SecretKey
	c.AccessTokenValidityDuration = j.AccessTokenValidityDuration.Duration
	c.RefreshTokenValidityDuration = j.RefreshTokenValidityDuration.Duration
	c.RevealMaxAttempts = j.RevealMaxAttempts
	c.RevealWindow = j.RevealWindow.Duration
	c.RevocationBackend = j.RevocationBackend
	c.RevocationSweepInterval = j.RevocationSweepInterval.Duration
	c.RateLimitBackend = j.RateLimitBackend
	c.RedisAddr = j.RedisAddr
	c.RedisPassword = j.RedisPassword
	c.RedisDB = j.RedisDB
	c.RedisPrefix = j.RedisPrefix
	c.KDFTime = j.KDFTime
	c.KDFMemoryKiB = j.KDFMemoryKiB
	c.KDFThreads = j.KDFThreads
	c.AnswerHashCost = j.AnswerHashCost
	c.LogLevel = j.LogLevel
	c.AuditWriteTimeout = j.AuditWriteTimeout.Duration
	c.AuditS3Enabled = j.AuditS3Enabled
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
}

// parseJson overlays the JSON file named by -c/-config (or the
// SECRETVAULT_CONFIG variable) onto config. Keys missing from the file keep
// their current values. An unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}
	c.apply(config)
}
