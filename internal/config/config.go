package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"washify/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig          `yaml:"app"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Backup       BackupConfig       `yaml:"backup"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Logging      LoggingConfig      `yaml:"logging"`
	API          APIConfig          `yaml:"api"`
	Notification NotificationConfig `yaml:"notification"`
	Google       GoogleConfig       `yaml:"google"`
	Exports      ExportConfig       `yaml:"exports"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Listing      ListingConfig      `yaml:"listing"`
	Drafts       DraftsConfig       `yaml:"drafts"`
	Worker       WorkerConfig       `yaml:"worker"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
	CORS      APICORSConfig      `yaml:"cors"`
	// MaxBodyBytes ограничивает размер тела запроса
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port"`
	Reflection bool `yaml:"reflection"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type APICORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
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

type NotificationConfig struct {
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// EmailConfig описывает SMTP-отправку уведомлений владельцу.
type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SMTPHost   string `yaml:"smtp_host"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	OwnerEmail string `yaml:"owner_email"`
}

type TelegramConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BotToken    string `yaml:"bot_token"`
	OwnerChatID int64  `yaml:"owner_chat_id"`
	Debug       bool   `yaml:"debug"`
	// AdminBot включает команды управления заявками в том же боте
	AdminBot   bool    `yaml:"admin_bot"`
	ManagerIDs []int64 `yaml:"manager_ids"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	BookingSpreadSheetID  string `yaml:"bookings_spreadsheet_id"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type ListingConfig struct {
	PageSize int `yaml:"page_size"`
}

type DraftsConfig struct {
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

type WorkerConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен: переменные могут прийти из окружения
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
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

	config.applyEnv()
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

	if c.API.HTTP.Port <= 0 || c.API.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.API.HTTP.Port)
	}

	email := c.Notification.Email
	if email.Enabled {
		if email.Username == "" || email.Password == "" {
			return errors.New("email notifications require username and password")
		}
		if email.OwnerEmail == "" {
			return errors.New("email notifications require owner_email")
		}
	}

	tg := c.Notification.Telegram
	if tg.Enabled && (tg.BotToken == "" || tg.OwnerChatID == 0) {
		return errors.New("telegram notifications require bot_token and owner_chat_id")
	}

	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		return errors.New("backup storage_path is required when backups are enabled")
	}

	return nil
}

// applyEnv fills secrets that are conventionally passed as plain env vars.
func (c *Config) applyEnv() {
	email := &c.Notification.Email
	if email.Username == "" {
		email.Username = os.Getenv("GMAIL_USER")
	}
	if email.Password == "" {
		email.Password = os.Getenv("GMAIL_APP_PASSWORD")
	}
	if email.OwnerEmail == "" {
		email.OwnerEmail = os.Getenv("OWNER_EMAIL")
	}
	if c.Notification.Telegram.BotToken == "" {
		c.Notification.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "washify"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}
	if c.API.MaxBodyBytes == 0 {
		c.API.MaxBodyBytes = 1 << 20
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	email := &c.Notification.Email
	if email.SMTPHost == "" {
		email.SMTPHost = "smtp.gmail.com"
	}
	if email.SMTPPort == 0 {
		email.SMTPPort = 587
	}
	if email.From == "" {
		email.From = email.Username
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Listing.PageSize == 0 {
		c.Listing.PageSize = models.DefaultPageSize
	}
	tg := &c.Notification.Telegram
	if len(tg.ManagerIDs) == 0 && tg.OwnerChatID > 0 {
		tg.ManagerIDs = []int64{tg.OwnerChatID}
	}

	if c.Drafts.KeyPrefix == "" {
		c.Drafts.KeyPrefix = "draft:"
	}
	if c.Drafts.TTL == 0 {
		c.Drafts.TTL = models.DefaultDraftTTL * time.Second
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 5
	}
	if c.Worker.BaseDelay == 0 {
		c.Worker.BaseDelay = 2 * time.Second
	}
	if c.Worker.MaxDelay == 0 {
		c.Worker.MaxDelay = time.Minute
	}
}
