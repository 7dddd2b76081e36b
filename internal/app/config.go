package app

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/qrcodes-backend/internal/data/db"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/envutil"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/platform/qrimage"
	"github.com/yungbote/qrcodes-backend/internal/platform/shopify"
)

//go:embed config.yaml
var defaultConfigYAML []byte

const configPathEnv = "QRCODES_CONFIG_YAML"

type ServerConfig struct {
	Port        string   `yaml:"port"`
	AppBaseURL  string   `yaml:"app_base_url"`
	CORSOrigins []string `yaml:"cors_allow_origins"`
}

type ShopifyConfig struct {
	APIKey           string        `yaml:"api_key"`
	APISecret        string        `yaml:"api_secret"`
	AdminAccessToken string        `yaml:"admin_access_token"`
	APIVersion       string        `yaml:"api_version"`
	Timeout          time.Duration `yaml:"timeout"`
	BaseURL          string        `yaml:"base_url"`
}

func (c ShopifyConfig) Client() shopify.Config {
	return shopify.Config{APIVersion: c.APIVersion, Timeout: c.Timeout, BaseURL: c.BaseURL}
}

type EnrichConfig struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type MetricsConfig struct {
	Enabled     bool          `yaml:"enabled"`
	ScrapeEvery time.Duration `yaml:"scrape_every"`
}

type Config struct {
	Server  ServerConfig             `yaml:"server"`
	DB      db.Config                `yaml:"database"`
	Shopify ShopifyConfig            `yaml:"shopify"`
	Enrich  EnrichConfig             `yaml:"enrich"`
	QRImage qrimage.Config           `yaml:"qr_image"`
	Redis   RedisConfig              `yaml:"redis"`
	Metrics MetricsConfig            `yaml:"metrics"`
	Otel    observability.OtelConfig `yaml:"otel"`
}

// LoadConfig layers the embedded defaults, an optional YAML file named by
// QRCODES_CONFIG_YAML, and environment variables, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse embedded config: %w", err)
	}
	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config overlay", "path", path)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	c.Server.Port = envutil.String("PORT", c.Server.Port)
	c.Server.AppBaseURL = envutil.String("APP_BASE_URL", c.Server.AppBaseURL)
	c.Server.CORSOrigins = envutil.List("CORS_ALLOW_ORIGINS", c.Server.CORSOrigins)

	c.DB.Driver = envutil.String("DB_DRIVER", c.DB.Driver)
	c.DB.Host = envutil.String("POSTGRES_HOST", c.DB.Host)
	c.DB.Port = envutil.String("POSTGRES_PORT", c.DB.Port)
	c.DB.User = envutil.String("POSTGRES_USER", c.DB.User)
	c.DB.Password = envutil.String("POSTGRES_PASSWORD", c.DB.Password)
	c.DB.Name = envutil.String("POSTGRES_NAME", c.DB.Name)
	c.DB.SSLMode = envutil.String("POSTGRES_SSLMODE", c.DB.SSLMode)
	c.DB.SQLitePath = envutil.String("SQLITE_PATH", c.DB.SQLitePath)

	c.Shopify.APIKey = envutil.String("SHOPIFY_API_KEY", c.Shopify.APIKey)
	c.Shopify.APISecret = envutil.String("SHOPIFY_API_SECRET", c.Shopify.APISecret)
	c.Shopify.AdminAccessToken = envutil.String("SHOPIFY_ADMIN_ACCESS_TOKEN", c.Shopify.AdminAccessToken)
	c.Shopify.APIVersion = envutil.String("SHOPIFY_API_VERSION", c.Shopify.APIVersion)
	c.Shopify.Timeout = envutil.Seconds("SHOPIFY_TIMEOUT_SECONDS", c.Shopify.Timeout)
	c.Shopify.BaseURL = envutil.String("SHOPIFY_BASE_URL", c.Shopify.BaseURL)

	c.Enrich.MaxConcurrency = envutil.Int("ENRICH_MAX_CONCURRENCY", c.Enrich.MaxConcurrency)

	c.QRImage.Size = envutil.Int("QR_IMAGE_SIZE", c.QRImage.Size)
	c.QRImage.Level = envutil.String("QR_IMAGE_LEVEL", c.QRImage.Level)
	c.QRImage.FontPath = envutil.String("QR_LABEL_FONT", c.QRImage.FontPath)

	c.Redis.Addr = envutil.String("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envutil.String("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = envutil.Int("REDIS_DB", c.Redis.DB)
	c.Redis.Channel = envutil.String("REDIS_CHANNEL", c.Redis.Channel)

	c.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.ScrapeEvery = envutil.Seconds("METRICS_SCRAPE_SECONDS", c.Metrics.ScrapeEvery)

	c.Otel.Enabled = envutil.Bool("OTEL_ENABLED", c.Otel.Enabled)
	c.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", c.Otel.ServiceName)
	c.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", c.Otel.Environment)
	c.Otel.Version = envutil.String("OTEL_SERVICE_VERSION", c.Otel.Version)
	c.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Otel.Endpoint)
	c.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Otel.Insecure)
	if h := observability.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")); h != nil {
		c.Otel.Headers = h
	}
	if v := strings.TrimSpace(os.Getenv("OTEL_SAMPLE_RATIO")); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			c.Otel.SampleRatio = r
		}
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.Server.AppBaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("app_base_url must be an absolute url, got %q", c.Server.AppBaseURL)
	}
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.DB.Driver)
	}
	if c.Shopify.APIKey != "" && c.Shopify.APISecret == "" {
		return fmt.Errorf("shopify api_secret is required when api_key is set")
	}
	return nil
}
