package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"
)

const defaultConfigPath = "config/app.yaml"

// Supported reference document backends.
const (
	StoreDir      = "dir"
	StorePostgres = "postgres"
	StoreS3       = "s3"
	StoreRedis    = "redis"
)

type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Server       ServerConfig       `yaml:"server"`
	Redis        RedisConfig        `yaml:"redis"`
	AWS          AWSConfig          `yaml:"aws"`
	Logging      LoggingConfig      `yaml:"logging"`
	CORS         CORSConfig         `yaml:"cors"`
	Store        StoreConfig        `yaml:"store"`
	Organisation OrganisationConfig `yaml:"organisation"`
	Inbound      InboundConfig      `yaml:"inbound"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"postgres"`
	SSLMode  string `yaml:"sslmode" env:"POSTGRES_SSL_MODE" env-default:"disable"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type AWSConfig struct {
	Region          string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	EndpointURL     string `yaml:"endpoint_url" env:"AWS_ENDPOINT_URL"`
	Bucket          string `yaml:"bucket" env:"AWS_S3_BUCKET" env-default:"wms-reference-data"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	Filename   string `yaml:"filename" env:"LOG_FILE" env-default:"logs/wms.log"`
	MaxSize    int    `yaml:"max_size" env:"LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"max_age" env:"LOG_MAX_AGE" env-default:"28"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS" env-default:"true"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	AllowedMethods   []string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   []string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Accept,Content-Type,X-User-ID"`
	ExposedHeaders   []string `yaml:"exposed_headers" env:"CORS_EXPOSED_HEADERS" env-default:"X-Request-ID"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int      `yaml:"max_age" env:"CORS_MAX_AGE" env-default:"300"`
}

// StoreConfig selects where reference documents live.
type StoreConfig struct {
	Backend      string `yaml:"backend" env:"STORE_BACKEND" env-default:"dir"`
	Dir          string `yaml:"dir" env:"STORE_DIR" env-default:"data"`
	RefreshCron  string `yaml:"refresh_cron" env:"REFRESH_CRON"`
	PersistAsync bool   `yaml:"persist_async" env:"PERSIST_ASYNC" env-default:"false"`
}

// OrganisationConfig identifies the pools that count as "me" for stock
// classification.
type OrganisationConfig struct {
	MyPools []string `yaml:"my_pools" env:"ORG_MY_POOLS" env-default:"pool-main"`
}

type InboundConfig struct {
	ReceivingPoolID string `yaml:"receiving_pool" env:"INBOUND_RECEIVING_POOL" env-default:"pool-receiving"`
	ReceivingAreaID string `yaml:"receiving_area" env:"INBOUND_RECEIVING_AREA" env-default:"area-receiving"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
}

// Load reads the optional YAML file named by CONFIG_FILE, then overlays the
// environment.
func Load() (*Config, error) {
	cfg := &Config{}
	path := configPath()
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPath() string {
	if v := strings.TrimSpace(os.Getenv("CONFIG_FILE")); v != "" {
		return v
	}
	return defaultConfigPath
}

func normalize(cfg *Config) {
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreDir
	}
	cfg.Store.RefreshCron = strings.TrimSpace(cfg.Store.RefreshCron)
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Organisation.MyPools = trimList(cfg.Organisation.MyPools)
	cfg.CORS.AllowedOrigins = trimList(cfg.CORS.AllowedOrigins)
	cfg.CORS.AllowedMethods = trimList(cfg.CORS.AllowedMethods)
	cfg.CORS.AllowedHeaders = trimList(cfg.CORS.AllowedHeaders)
	cfg.CORS.ExposedHeaders = trimList(cfg.CORS.ExposedHeaders)
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch cfg.Store.Backend {
	case StoreDir:
		if cfg.Store.Dir == "" {
			return errors.New("STORE_DIR must be set for the dir backend")
		}
	case StorePostgres, StoreRedis:
	case StoreS3:
		if cfg.AWS.Bucket == "" {
			return errors.New("AWS_S3_BUCKET must be set for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %s", cfg.Store.Backend)
	}

	if cfg.Store.RefreshCron != "" {
		if _, err := cron.ParseStandard(cfg.Store.RefreshCron); err != nil {
			return fmt.Errorf("invalid REFRESH_CRON %q: %w", cfg.Store.RefreshCron, err)
		}
	}

	if len(cfg.Organisation.MyPools) == 0 {
		return errors.New("ORG_MY_POOLS must name at least one pool")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
