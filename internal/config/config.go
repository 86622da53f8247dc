// Package config loads process-wide settings from the environment once at
// startup. The resulting Config is immutable; services receive the values
// they need through their constructors.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultAddr         = ":8080"
	defaultIssuer       = "creativecube"
	defaultAudience     = "creativecube-api"
	defaultAccessMins   = 30
	defaultRefreshDays  = 14
	minSecretBytes      = 32
	defaultS3Region     = "us-east-1"
	defaultMaxBodyBytes = 32 << 20
)

// Config holds runtime settings for the CreativeCube API server.
type Config struct {
	Addr        string
	DatabaseDSN string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration

	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3BaseURL      string

	MaxBodyBytes int64
}

// Load reads settings from CC_* environment variables, applying defaults for
// anything unset. It fails when the signing secret is missing or too short.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:           getenv("CC_ADDR", defaultAddr),
		DatabaseDSN:    os.Getenv("CC_PG_DSN"),
		JWTSecret:      os.Getenv("CC_JWT_SECRET"),
		JWTIssuer:      getenv("CC_JWT_ISSUER", defaultIssuer),
		JWTAudience:    getenv("CC_JWT_AUDIENCE", defaultAudience),
		S3AccessKey:    os.Getenv("CC_S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("CC_S3_SECRET_KEY"),
		S3Bucket:       os.Getenv("CC_S3_BUCKET"),
		S3Region:       getenv("CC_S3_REGION", defaultS3Region),
		S3BaseEndpoint: os.Getenv("CC_S3_ENDPOINT"),
		S3BaseURL:      os.Getenv("CC_S3_BASE_URL"),
		MaxBodyBytes:   defaultMaxBodyBytes,
	}

	if len(cfg.JWTSecret) < minSecretBytes {
		return nil, errors.New("config: CC_JWT_SECRET must be at least 32 bytes")
	}

	accessMins, err := getenvInt("CC_ACCESS_TOKEN_MINUTES", defaultAccessMins)
	if err != nil {
		return nil, err
	}
	refreshDays, err := getenvInt("CC_REFRESH_TOKEN_DAYS", defaultRefreshDays)
	if err != nil {
		return nil, err
	}
	cfg.AccessTTL = time.Duration(accessMins) * time.Minute
	cfg.RefreshTTL = time.Duration(refreshDays) * 24 * time.Hour

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer", key)
	}
	return n, nil
}
