// Package config provides configuration management for Lithograph.
// It loads settings from environment variables with the LITHOGRAPH_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings for the Lithograph application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Report   ReportConfig
	LLM      LLMConfig
	Security SecurityConfig
	Language LanguageConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 8080)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains data directory configuration.
type StorageConfig struct {
	DataPath     string // Root data directory holding minerals/ (default: ./data)
	HistoryPath  string // SQLite report history database path (default: <DataPath>/history.db)
	WatchEnabled bool   // Reload the catalog when mineral folders change on disk (default: true)
}

// ReportConfig contains report pipeline configuration. These values are
// passed explicitly into the report service so the pipeline has no ambient
// globals.
type ReportConfig struct {
	BuildCommand       string        // Typesetting command (default: latexmk)
	BuildArgs          []string      // Arguments before the source filename
	BuildTimeout       time.Duration // Hard deadline for one build invocation (default: 60s)
	MaxRecommendations int           // Recommendation cap per report (default: 5)
	RulesPath          string        // Optional YAML recommendation rules override
}

// LLMConfig contains configuration for AI-assisted field suggestion and
// translation. An empty API key disables both features.
type LLMConfig struct {
	OpenAIAPIKey string // OpenAI API key
	OpenAIModel  string // OpenAI model name (default: gpt-4o-mini)
	OpenAIURL    string // OpenAI base URL (default: https://api.openai.com)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode  string // Security mode: development, production (default: development)
	AdminPassword string // Admin password for the publish endpoints
}

// LanguageConfig contains localization settings.
type LanguageConfig struct {
	Default string // Default catalog language code (default: en)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the LITHOGRAPH_ prefix.
func LoadConfig() (*Config, error) {
	dataPath := getEnv("LITHOGRAPH_DATA_PATH", "./data")

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("LITHOGRAPH_PORT", 8080),
			Host: getEnv("LITHOGRAPH_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			DataPath:     dataPath,
			HistoryPath:  getEnv("LITHOGRAPH_HISTORY_PATH", dataPath+"/history.db"),
			WatchEnabled: getEnvBool("LITHOGRAPH_WATCH_ENABLED", true),
		},
		Report: ReportConfig{
			BuildCommand:       getEnv("LITHOGRAPH_BUILD_COMMAND", "latexmk"),
			BuildArgs:          []string{"-xelatex", "-interaction=nonstopmode", "-halt-on-error"},
			BuildTimeout:       getEnvDuration("LITHOGRAPH_BUILD_TIMEOUT", 60*time.Second),
			MaxRecommendations: getEnvInt("LITHOGRAPH_MAX_RECOMMENDATIONS", 5),
			RulesPath:          getEnv("LITHOGRAPH_RULES_PATH", ""),
		},
		LLM: LLMConfig{
			OpenAIAPIKey: getEnv("LITHOGRAPH_OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("LITHOGRAPH_OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIURL:    getEnv("LITHOGRAPH_OPENAI_URL", "https://api.openai.com"),
		},
		Security: SecurityConfig{
			SecurityMode:  getEnv("LITHOGRAPH_SECURITY_MODE", "development"),
			AdminPassword: getEnv("LITHOGRAPH_ADMIN_PASSWORD", ""),
		},
		Language: LanguageConfig{
			Default: getEnv("LITHOGRAPH_DEFAULT_LANGUAGE", "en"),
		},
	}

	return cfg, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. It recognizes "true", "1", "yes" as true and "false", "0", "no"
// as false.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "90s") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
