package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Classifier  ClassifierConfig  `mapstructure:"classifier"`
	PromptGuard PromptGuardConfig `mapstructure:"prompt_guard"`
	Teacher     TeacherConfig     `mapstructure:"teacher"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type MetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	EnableLatency bool `mapstructure:"enable_latency"`
	EnableScores  bool `mapstructure:"enable_scores"`
	EnableCache   bool `mapstructure:"enable_cache"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

// ClassifierConfig points at the tool-guard inference sidecar and its
// exported label artifact.
type ClassifierConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	Token          string  `mapstructure:"token"`
	ConfigPath     string  `mapstructure:"config_path"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	BreakerTimeout int     `mapstructure:"breaker_timeout_seconds"`
	MaxFailures    uint32  `mapstructure:"breaker_max_failures"`
	CacheTTLMin    int     `mapstructure:"cache_ttl_minutes"`
}

type PromptGuardConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// TeacherConfig points the distillation tooling at the reference model's
// OpenAI-compatible endpoint.
type TeacherConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	ApiKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Workers     int     `mapstructure:"workers"`
	DataDir     string  `mapstructure:"data_dir"`
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	Exporter string                 `mapstructure:"exporter"`
	Settings map[string]interface{} `mapstructure:"settings"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("⚠️ Warning: Could not load main config file: %v", err)
	}

	setDefaultValues()

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8081
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Classifier.TimeoutSeconds == 0 {
		globalConfig.Classifier.TimeoutSeconds = 30
	}
	if globalConfig.Classifier.BreakerTimeout == 0 {
		globalConfig.Classifier.BreakerTimeout = 30
	}
	if globalConfig.Classifier.MaxFailures == 0 {
		globalConfig.Classifier.MaxFailures = 5
	}
	if globalConfig.Classifier.CacheTTLMin == 0 {
		globalConfig.Classifier.CacheTTLMin = 10
	}
	if globalConfig.Classifier.ConfigPath == "" {
		globalConfig.Classifier.ConfigPath = "classifier_config.json"
	}
}

func GetConfig() *Config {
	return &globalConfig
}
