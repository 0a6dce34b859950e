package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Provider  ProviderConfig            `mapstructure:"provider"`
	Webhooks  WebhooksConfig            `mapstructure:"webhooks"`
	Callbacks CallbacksConfig           `mapstructure:"callbacks"`
	Database  DatabaseConfig            `mapstructure:"database"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Debug     DebugConfig               `mapstructure:"debug"`
	Merchants map[string]MerchantConfig `mapstructure:"merchants"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type ProviderConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	AuthURL string        `mapstructure:"auth_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WebhooksConfig struct {
	DefaultCallbackURL string        `mapstructure:"default_callback_url"`
	DeliveryTimeout    time.Duration `mapstructure:"delivery_timeout"`
}

type CallbacksConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type DatabaseConfig struct {
	DeliveryLogPath string        `mapstructure:"delivery_log_path"`
	RetainFor       time.Duration `mapstructure:"retain_for"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type DebugConfig struct {
	Environment string `mapstructure:"environment"`
	Endpoints   bool   `mapstructure:"endpoints"`
}

// MerchantConfig is one tenant's slice of the merchants.* key space. The map
// key in Config.Merchants is the tenant's routable key (used in webhook paths).
type MerchantConfig struct {
	ClientID         string `mapstructure:"client_id"`
	ClientSecret     string `mapstructure:"client_secret"`
	MerchantID       string `mapstructure:"merchant_id"`
	ProviderAPIKey   string `mapstructure:"provider_api_key"`
	SourceCode       string `mapstructure:"source_code"`
	APIKey           string `mapstructure:"api_key"`
	WebhookSecret    string `mapstructure:"webhook_secret"`
	RequireSignature bool   `mapstructure:"require_signature"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("provider.timeout", "15s")
	viper.SetDefault("webhooks.delivery_timeout", "10s")
	viper.SetDefault("callbacks.ttl", "72h")
	viper.SetDefault("callbacks.sweep_interval", "15m")
	viper.SetDefault("database.retain_for", "720h")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("debug.environment", "production")
}

// Production reports whether debug surfaces must stay disabled regardless of
// the endpoints flag.
func (c *Config) Production() bool {
	return c.Debug.Environment == "production"
}
