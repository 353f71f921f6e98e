package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default locations and values
const (
	DefaultConfigPath   = "config/config.yaml"
	ConfigPathEnv       = "SOP_CONFIG_FILE"
	DefaultAPIKeyEnv    = "GEMINI_API_KEY"
	FallbackAPIKeyEnv   = "API_KEY"
	DefaultModel        = "gemini-3-flash-preview"
	DefaultTemperature  = 0.3
	defaultNarrationTTL = 30 * time.Second
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Planning  PlanningConfig  `yaml:"planning"`
	Narration NarrationConfig `yaml:"narration"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"` // e.g. "10s"
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetShutdownTimeout returns the graceful shutdown window
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

type PlanningConfig struct {
	DefaultProduct string `yaml:"default_product"`
	// DefaultMonth is YYYY-MM; empty selects the current month
	DefaultMonth string `yaml:"default_month"`
}

type NarrationConfig struct {
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
}

// GetTimeoutDuration returns the narration request timeout
func (n NarrationConfig) GetTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(n.Timeout)
	if err != nil || d <= 0 {
		return defaultNarrationTTL
	}
	return d
}

// APIKey looks the credential up in the configured environment variable,
// then in API_KEY
func (n NarrationConfig) APIKey() string {
	name := n.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(FallbackAPIKeyEnv))
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
	WriteTimeout string   `yaml:"write_timeout"`
}

// GetWriteTimeout returns the per-message publish timeout
func (k KafkaConfig) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(k.WriteTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, ShutdownTimeout: "10s"},
		Planning: PlanningConfig{
			DefaultProduct: "standard",
		},
		Narration: NarrationConfig{
			APIKeyEnv:   DefaultAPIKeyEnv,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			Timeout:     "30s",
		},
		Kafka: KafkaConfig{
			Brokers:      []string{"localhost:9092"},
			Topic:        "sop.scenarios",
			WriteTimeout: "5s",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// ResolvePath picks the config file: the explicit path, then SOP_CONFIG_FILE, then the default
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(ConfigPathEnv); env != "" {
		return env
	}
	return DefaultConfigPath
}

// LoadEnv loads .env files into the process environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading env file %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig reads the YAML file over the defaults. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid logging format %q (expected console or json)", c.Logging.Format)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka is enabled but brokers or topic are missing")
	}
	if c.Narration.Temperature < 0 || c.Narration.Temperature > 2 {
		return fmt.Errorf("invalid narration temperature %v", c.Narration.Temperature)
	}
	return nil
}
