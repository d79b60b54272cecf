// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Server   ServerConfig            `mapstructure:"server"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Report   ReportConfig            `mapstructure:"report"`
	Model    ModelConfig             `mapstructure:"model"`
	Upload   UploadConfig            `mapstructure:"upload"`
	Database DatabaseConfig          `mapstructure:"database"`
	Cache    CacheConfig             `mapstructure:"cache"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Mode            string   `mapstructure:"mode"`             // gin mode: debug, release, test
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	TrustedProxies  []string `mapstructure:"trusted_proxies"`
}

// Addr returns the listen address for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ReportConfig controls PDF rendering. An empty FontDir renders with the
// built-in core font; otherwise both font files must exist at render time.
type ReportConfig struct {
	FontDir     string `mapstructure:"font_dir"`
	FontFamily  string `mapstructure:"font_family"`
	RegularFont string `mapstructure:"regular_font"`
	BoldFont    string `mapstructure:"bold_font"`
	Author      string `mapstructure:"author"`
	Compress    bool   `mapstructure:"compress"`
}

// ModelConfig points at the serialized anomaly-detection artifact.
type ModelConfig struct {
	Path     string `mapstructure:"path"`
	Required bool   `mapstructure:"required"`
}

type UploadConfig struct {
	MaxBytes    int64 `mapstructure:"max_bytes"`
	PreviewRows int   `mapstructure:"preview_rows"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds rendered-report cache settings.
type CacheConfig struct {
	ReportTTL int `mapstructure:"report_ttl"` // seconds
}

// ReportTTLDuration converts the configured TTL.
func (c CacheConfig) ReportTTLDuration() time.Duration {
	return time.Duration(c.ReportTTL) * time.Second
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}
