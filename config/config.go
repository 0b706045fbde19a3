package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/gameplay-insights/backend/pkg/apperrs"
)

// AnalysisMode selects how the analyze endpoint runs: holding the caller's
// connection open until the job completes, or dispatching a background task
// observed via the status endpoint. The two modes are mutually exclusive
// per deployment.
const (
	AnalysisModeSync       = "sync"
	AnalysisModeBackground = "background"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	AWS      AWSConfig
	Bedrock  BedrockConfig
	Analysis AnalysisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// AWSConfig holds AWS credentials and the S3 bucket for videos and
// analysis documents.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// BedrockConfig holds the Data Automation and Agent identifiers.
type BedrockConfig struct {
	AgentID      string // empty disables the conversational agent path
	AgentAliasID string
	ProjectARN   string // empty falls back to the public default project
	ProfileARN   string // execution profile, required by the runtime API
}

// AnalysisConfig holds job polling and dispatch settings.
type AnalysisConfig struct {
	Mode         string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Load reads configuration from environment, with optional .env file.
// Required identifiers (bucket, region, profile ARN) fail fast with a
// ConfigurationError rather than defaulting silently.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "1800"))
	pollInterval := getEnvInt("ANALYSIS_POLL_INTERVAL_SEC", 30)
	maxWait := getEnvInt("ANALYSIS_MAX_WAIT_SEC", 1800)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8000"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
		},
		AWS: AWSConfig{
			Region:          os.Getenv("AWS_REGION"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:          os.Getenv("AWS_BUCKET_NAME"),
		},
		Bedrock: BedrockConfig{
			AgentID:      getEnv("BEDROCK_AGENT_ID", ""),
			AgentAliasID: getEnv("BEDROCK_AGENT_ALIAS_ID", "TSTALIASID"),
			ProjectARN:   getEnv("DATA_AUTOMATION_PROJECT_ARN", ""),
			ProfileARN:   os.Getenv("DATA_AUTOMATION_PROFILE_ARN"),
		},
		Analysis: AnalysisConfig{
			Mode:         getEnv("ANALYSIS_MODE", AnalysisModeSync),
			PollInterval: time.Duration(pollInterval) * time.Second,
			MaxWait:      time.Duration(maxWait) * time.Second,
		},
	}

	if cfg.AWS.Region == "" {
		return nil, &apperrs.ConfigurationError{Key: "AWS_REGION"}
	}
	if cfg.AWS.Bucket == "" {
		return nil, &apperrs.ConfigurationError{Key: "AWS_BUCKET_NAME"}
	}
	if cfg.Bedrock.ProfileARN == "" {
		return nil, &apperrs.ConfigurationError{Key: "DATA_AUTOMATION_PROFILE_ARN"}
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
