// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	commonerrors "mobility-intake/internal/common/errors"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like GENAI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)
		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "mobility-intake"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = "gpt-4o"
	}
	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 30000
	}
	if cfg.Orchestrator.HealthCacheTTL == 0 {
		cfg.Orchestrator.HealthCacheTTL = 30000
	}
	if cfg.Orchestrator.ProbeTimeout == 0 {
		cfg.Orchestrator.ProbeTimeout = 2000
	}
	if cfg.Orchestrator.PredictTimeout == 0 {
		cfg.Orchestrator.PredictTimeout = 10000
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 1800
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// validateConfig surfaces deployment mistakes at startup instead of
// per-request. A route configured with an unusable backend URL is an
// explicit configuration error, never silently disabled.
func validateConfig(cfg *Config) error {
	if cfg.GenAI.BaseURL == "" && cfg.GenAI.APIKey == "" {
		return commonerrors.NewInvalidConfigurationError(
			"genai: base_url or api_key must be set, the fallback path requires a generative backend")
	}

	for route, rc := range cfg.Routes {
		if rc.BackendURL == "" {
			continue // route always takes the fallback path
		}
		u, err := url.Parse(rc.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return commonerrors.NewInvalidConfigurationError(
				fmt.Sprintf("routes.%s: backend_url %q is not a valid URL", route, rc.BackendURL))
		}
	}

	switch cfg.Session.Store {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return commonerrors.NewInvalidConfigurationError(
				"session: store is redis but database.redis.address is empty")
		}
	default:
		return commonerrors.NewInvalidConfigurationError(
			fmt.Sprintf("session: unknown store %q", cfg.Session.Store))
	}

	return nil
}
