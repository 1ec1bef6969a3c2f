package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"trailhead/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Storage    StorageConfig    `yaml:"storage"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Site       SiteConfig       `yaml:"site"`
	Forms      FormsConfig      `yaml:"forms"`
}

type APIConfig struct {
	HTTP           APIHTTPConfig      `yaml:"http"`
	GRPC           APIGRPCConfig      `yaml:"grpc"`
	Auth           APIAuthConfig      `yaml:"auth"`
	RateLimit      APIRateLimitConfig `yaml:"rate_limit"`
	CORS           APICORSConfig      `yaml:"cors"`
	RequestTimeout time.Duration      `yaml:"request_timeout"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

// APIAuthConfig controls bearer-token checks on write routes. Tokens are
// issued elsewhere; we only verify the signature and the role claim.
type APIAuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
	AdminRole string `yaml:"admin_role"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type APICORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	SeedFile string `yaml:"seed_file"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// StorageConfig selects where uploads go. An empty bucket disables uploads.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
	MaxUploadMB     int64  `yaml:"max_upload_mb"`
	ThumbnailWidth  int    `yaml:"thumbnail_width"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	CatalogSpreadSheetID  string `yaml:"catalog_spreadsheet_id"`
	// SyncMaxRetries bounds attempts per mirror task; 0 means the default.
	SyncMaxRetries        int    `yaml:"sync_max_retries"`
}

type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	ManagerChatIDs []int64 `yaml:"manager_chat_ids"`
	Debug          bool    `yaml:"debug"`
}

type SiteConfig struct {
	BaseURL string `yaml:"base_url"`
}

type FormsConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`
}

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Auth.Enabled && c.API.Auth.JWTSecret == "" {
		return errors.New("api auth is enabled but jwt_secret is empty")
	}

	if c.API.HTTP.Enabled && c.API.GRPC.Enabled && c.API.HTTP.Port == c.API.GRPC.Port {
		return fmt.Errorf("http and grpc ports must differ, both are %d", c.API.HTTP.Port)
	}

	if c.API.RateLimit.RPS < 0 || c.API.RateLimit.Burst < 0 {
		return errors.New("rate limit values must not be negative")
	}

	if c.Storage.Bucket != "" && c.Storage.Region == "" && c.Storage.Endpoint == "" {
		return errors.New("storage bucket requires a region or an endpoint")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "trailhead"
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.RequestTimeout == 0 {
		c.API.RequestTimeout = models.DefaultRequestTimeout * time.Second
	}
	if c.API.Auth.AdminRole == "" {
		c.API.Auth.AdminRole = "admin"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 20
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 40
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Storage.MaxUploadMB == 0 {
		c.Storage.MaxUploadMB = 10
	}
	if c.Storage.ThumbnailWidth == 0 {
		c.Storage.ThumbnailWidth = 480
	}
	if c.Forms.SessionTTL == 0 {
		c.Forms.SessionTTL = models.DefaultFormSessionTTL * time.Second
	}
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = fmt.Sprintf("http://localhost:%d", c.API.HTTP.Port)
	}

	// Unset environment variables expand to empty entries.
	origins := c.API.CORS.AllowedOrigins[:0]
	for _, o := range c.API.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.API.CORS.AllowedOrigins = origins
}
