package config

import (
	"errors"
	"strings"
	"time"
)

// Config es la configuración raíz del servicio.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Georef   GeorefConfig   `yaml:"georef"`
	Tags     TagsConfig     `yaml:"tags"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig agrupa los settings del HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig: si DSN está vacío, el servicio corre con repos in-memory (modo dev).
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DB_DSN"`
}

// RedisConfig: si URL está vacío, el draft cache usa memoria.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// AuthConfig apunta al proveedor de auth externo (portal).
// Sin BaseURL+APIKey el servicio corre en modo dev (X-Debug-User-ID).
type AuthConfig struct {
	PortalBaseURL string        `yaml:"portal_base_url" env:"AUTH_PORTAL_BASE_URL"`
	PortalAPIKey  string        `yaml:"portal_api_key"  env:"AUTH_PORTAL_API_KEY"`
	Timeout       time.Duration `yaml:"timeout"         env:"AUTH_TIMEOUT" env-default:"5s"`
}

// GeorefConfig apunta al dataset geográfico de referencia.
type GeorefConfig struct {
	BaseURL string        `yaml:"base_url" env:"GEOREF_BASE_URL" env-default:"https://apis.datos.gob.ar"`
	Timeout time.Duration `yaml:"timeout"  env:"GEOREF_TIMEOUT"  env-default:"10s"`
}

// TagsConfig parametriza el alta de lotes de chapitas.
type TagsConfig struct {
	QRBaseURL    string `yaml:"qr_base_url"    env:"TAGS_QR_BASE_URL" env-default:"https://chapitas.app"`
	MaxBatchSize int    `yaml:"max_batch_size" env:"TAGS_MAX_BATCH_SIZE" env-default:"500"`
}

// LogConfig replica las env vars que consume el logger.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr requerido")
	}
	if strings.TrimSpace(c.Georef.BaseURL) == "" {
		return errors.New("georef.base_url requerido")
	}
	if c.Tags.MaxBatchSize <= 0 {
		return errors.New("tags.max_batch_size debe ser > 0")
	}
	return nil
}
