package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Log      LogConfig      `toml:"log"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Vision   VisionConfig   `toml:"vision"`
}

type AppConfig struct {
	Name          string   `toml:"name"`
	Env           string   `toml:"env"`
	Host          string   `toml:"host"`
	Port          int      `toml:"port"`
	GinMode       string   `toml:"gin_mode"`
	PublicBaseURL string   `toml:"public_base_url"`
	CORSOrigins   []string `toml:"cors_origins"`
	MaxUploadMB   int      `toml:"max_upload_mb"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type AuthConfig struct {
	// PasswordMode is "plain" (stored and compared verbatim) or "bcrypt".
	PasswordMode string `toml:"password_mode"`
}

type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DB           string `toml:"db"`
	Params       string `toml:"params"`
	SSLMode      string `toml:"sslmode"`
	SQLitePath   string `toml:"sqlite_path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	AutoMigrate  bool   `toml:"auto_migrate"`
}

type RedisConfig struct {
	// Addr empty disables the prediction cache.
	Addr                 string `toml:"addr"`
	Password             string `toml:"password"`
	DB                   int    `toml:"db"`
	PredictionTTLSeconds int    `toml:"prediction_ttl_seconds"`
}

type RabbitMQConfig struct {
	// URL empty disables appointment events.
	URL              string `toml:"url"`
	AppointmentQueue string `toml:"appointment_queue"`
}

type VisionConfig struct {
	ModelPath         string `toml:"model_path"`
	ONNXSharedLibPath string `toml:"onnx_shared_lib_path"`
	UploadDir         string `toml:"upload_dir"`
	InputSize         int    `toml:"input_size"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	d := c.Database
	switch d.Driver {
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
			Path:   "/" + d.DB,
		}
		if d.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
		}
		return u.String()
	case "sqlite":
		return d.SQLitePath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.DB,
			d.Params,
		)
	}
}

// ImageURL is the absolute URL under which the static file server exposes an uploaded artifact.
func (c *Config) ImageURL(filename string) string {
	return strings.TrimRight(c.App.PublicBaseURL, "/") + "/uploads/" + url.PathEscape(filename)
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.App.MaxUploadMB) << 20
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.Auth.PasswordMode {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("unsupported password mode: %s", c.Auth.PasswordMode)
	}
	if c.Vision.InputSize <= 0 {
		return fmt.Errorf("vision input size must be positive, got %d", c.Vision.InputSize)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:          "pettech-backend",
			Env:           "dev",
			Host:          "0.0.0.0",
			Port:          20000,
			GinMode:       "debug",
			PublicBaseURL: "http://127.0.0.1:20000",
			CORSOrigins:   []string{"http://localhost", "http://localhost:5000"},
			MaxUploadMB:   10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Auth: AuthConfig{
			PasswordMode: "plain",
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         5432,
			User:         "pet",
			Password:     "",
			DB:           "petTech",
			Params:       "parseTime=true&loc=Local&charset=utf8mb4",
			SSLMode:      "disable",
			SQLitePath:   "pettech.sqlite",
			MaxOpenConns: 20,
			MaxIdleConns: 5,
			AutoMigrate:  true,
		},
		Redis: RedisConfig{
			Addr:                 "",
			DB:                   0,
			PredictionTTLSeconds: 3600,
		},
		RabbitMQ: RabbitMQConfig{
			URL:              "",
			AppointmentQueue: "appointment.booked",
		},
		Vision: VisionConfig{
			ModelPath:         "model/optimized_model.onnx",
			ONNXSharedLibPath: "", // use default or set via VISION_ONNX_LIB
			UploadDir:         "uploads",
			InputSize:         150,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.PublicBaseURL = getEnv("APP_PUBLIC_BASE_URL", cfg.App.PublicBaseURL)
	cfg.App.CORSOrigins = getEnvAsList("APP_CORS_ORIGINS", cfg.App.CORSOrigins)
	cfg.App.MaxUploadMB = getEnvAsInt("APP_MAX_UPLOAD_MB", cfg.App.MaxUploadMB)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Auth.PasswordMode = getEnv("AUTH_PASSWORD_MODE", cfg.Auth.PasswordMode)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DB = getEnv("DB_NAME", cfg.Database.DB)
	cfg.Database.Params = getEnv("DB_PARAMS", cfg.Database.Params)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.SQLitePath = getEnv("DB_SQLITE_PATH", cfg.Database.SQLitePath)
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.AutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PredictionTTLSeconds = getEnvAsInt("REDIS_PREDICTION_TTL_SECONDS", cfg.Redis.PredictionTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.AppointmentQueue = getEnv("RABBITMQ_APPOINTMENT_QUEUE", cfg.RabbitMQ.AppointmentQueue)

	cfg.Vision.ModelPath = getEnv("VISION_MODEL_PATH", cfg.Vision.ModelPath)
	cfg.Vision.ONNXSharedLibPath = getEnv("VISION_ONNX_LIB", cfg.Vision.ONNXSharedLibPath)
	cfg.Vision.UploadDir = getEnv("VISION_UPLOAD_DIR", cfg.Vision.UploadDir)
	cfg.Vision.InputSize = getEnvAsInt("VISION_INPUT_SIZE", cfg.Vision.InputSize)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
