package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Mail       MailConfig       `mapstructure:"mail"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Uploads    UploadsConfig    `mapstructure:"uploads"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	BaseURL         string        `mapstructure:"base_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type QueueConfig struct {
	Name            string        `mapstructure:"name"`
	BlockTimeout    time.Duration `mapstructure:"block_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	EnqueueTimeout  time.Duration `mapstructure:"enqueue_timeout"`
	HealthPort      int           `mapstructure:"health_port"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SchedulingConfig struct {
	Timezone                string   `mapstructure:"timezone"`
	Slots                   []string `mapstructure:"slots"`
	CancellationWindowHours int      `mapstructure:"cancellation_window_hours"`
	PageSize                int      `mapstructure:"page_size"`
}

// Location resolves the business time zone.
func (c SchedulingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type UploadsConfig struct {
	Dir         string `mapstructure:"dir"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// secrets are read from BOOKING_* variables after the file so that
// credentials never have to live in config.yml.
type secrets struct {
	DBHost       string `envconfig:"DB_HOST"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	JWTSecret    string `envconfig:"JWT_SECRET"`
	RedisURL     string `envconfig:"REDIS_URL"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3333)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_url", "http://localhost:3333")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "booking")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("jwt.expiry_hours", 24*7)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("queue.name", "booking:jobs")
	v.SetDefault("queue.block_timeout", 5*time.Second)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.initial_interval", time.Second)
	v.SetDefault("queue.max_interval", 30*time.Second)
	v.SetDefault("queue.enqueue_timeout", 5*time.Second)
	v.SetDefault("queue.health_port", 8081)

	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 1025)
	v.SetDefault("mail.from", "Booking Team <noreply@booking.local>")

	v.SetDefault("scheduling.timezone", "Local")
	v.SetDefault("scheduling.slots", []string{
		"08:00", "09:00", "10:00", "11:00", "12:00", "13:00",
		"14:00", "15:00", "16:00", "17:00", "18:00", "19:00",
	})
	v.SetDefault("scheduling.cancellation_window_hours", 2)
	v.SetDefault("scheduling.page_size", 20)

	v.SetDefault("uploads.dir", "./tmp/uploads")
	v.SetDefault("uploads.max_file_size", 5<<20)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yml from the usual search paths, or the file named
// by CONFIG_FILE, and applies BOOKING_* overrides. A missing file is not an
// error; defaults apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyEnv() error {
	var s secrets
	if err := envconfig.Process("booking", &s); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if s.DBHost != "" {
		c.Database.Host = s.DBHost
	}
	if s.DBPassword != "" {
		c.Database.Password = s.DBPassword
	}
	if s.JWTSecret != "" {
		c.JWT.Secret = s.JWTSecret
	}
	if s.RedisURL != "" {
		c.Redis.URL = s.RedisURL
	}
	if s.SMTPUsername != "" {
		c.Mail.Username = s.SMTPUsername
	}
	if s.SMTPPassword != "" {
		c.Mail.Password = s.SMTPPassword
	}
	return nil
}

// Validate checks the settings the services cannot run without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if len(c.Scheduling.Slots) == 0 {
		return fmt.Errorf("scheduling slots must not be empty")
	}
	for _, label := range c.Scheduling.Slots {
		if _, err := time.Parse("15:04", label); err != nil {
			return fmt.Errorf("invalid slot label %q: %w", label, err)
		}
	}
	if c.Scheduling.CancellationWindowHours < 0 {
		return fmt.Errorf("cancellation window must not be negative")
	}
	if c.Scheduling.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if _, err := c.Scheduling.Location(); err != nil {
		return err
	}
	return nil
}
