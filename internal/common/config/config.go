// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig              `mapstructure:"app"`
	Server       ServerConfig           `mapstructure:"server"`
	GenAI        GenAIConfig            `mapstructure:"genai"`
	Orchestrator OrchestratorConfig     `mapstructure:"orchestrator"`
	Routes       map[string]RouteConfig `mapstructure:"routes"`
	Session      SessionConfig          `mapstructure:"session"`
	Database     DatabaseConfig         `mapstructure:"database"`
	Logging      LoggingConfig          `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// GenAIConfig configures the generative backend used for both field
// extraction and the fallback prediction path. Any OpenAI-compatible
// chat-completions endpoint works.
type GenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// OrchestratorConfig carries the global routing knobs.
type OrchestratorConfig struct {
	EnableBackends bool `mapstructure:"enable_backends"`
	HealthCacheTTL int  `mapstructure:"health_cache_ttl"` // milliseconds
	ProbeTimeout   int  `mapstructure:"probe_timeout"`    // milliseconds
	PredictTimeout int  `mapstructure:"predict_timeout"`  // milliseconds
}

// RouteConfig configures one route's dedicated prediction backend.
// Zero timeouts inherit the orchestrator defaults. An empty BackendURL
// means the route has no backend and always takes the fallback path.
type RouteConfig struct {
	BackendURL     string `mapstructure:"backend_url"`
	PredictPath    string `mapstructure:"predict_path"`
	ProbeTimeout   int    `mapstructure:"probe_timeout"`   // milliseconds
	PredictTimeout int    `mapstructure:"predict_timeout"` // milliseconds
}

type SessionConfig struct {
	Store string `mapstructure:"store"` // "memory" or "redis"
	TTL   int    `mapstructure:"ttl"`   // seconds, abandonment timeout
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func (g GenAIConfig) TimeoutDuration() time.Duration {
	return time.Duration(g.Timeout) * time.Millisecond
}

func (o OrchestratorConfig) HealthCacheTTLDuration() time.Duration {
	return time.Duration(o.HealthCacheTTL) * time.Millisecond
}

func (o OrchestratorConfig) ProbeTimeoutDuration() time.Duration {
	return time.Duration(o.ProbeTimeout) * time.Millisecond
}

func (o OrchestratorConfig) PredictTimeoutDuration() time.Duration {
	return time.Duration(o.PredictTimeout) * time.Millisecond
}

func (s SessionConfig) TTLDuration() time.Duration {
	return time.Duration(s.TTL) * time.Second
}
