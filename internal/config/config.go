package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application settings
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Google       GoogleOAuthConfig
	Email        EmailConfig
	Quiz         QuizConfig
	Registration RegistrationConfig
	Log          LogConfig
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains relational database settings.
// Driver is one of "mysql", "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	Path       string `mapstructure:"path"`
	Migrations bool   `mapstructure:"migrations"`
}

// RedisConfig contains Redis connection settings.
// Supported modes: single, sentinel, cluster.
type RedisConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Mode: "single", "sentinel" or "cluster". Defaults to "single".
	Mode string `mapstructure:"mode"`

	// Addrs: list of host:port addresses. For 'single' the first one is used.
	Addrs []string `mapstructure:"addrs"`

	// Addr: single address, used when Addrs is empty.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: sentinel master name (sentinel mode only)
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig contains session token settings
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expiration_hrs"`
	CookieName    string `mapstructure:"cookie_name"`
}

// GoogleOAuthConfig contains Google sign-in settings
type GoogleOAuthConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// EmailConfig contains transactional email settings.
// Provider is "resend" or "noop".
type EmailConfig struct {
	Provider     string `mapstructure:"provider"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	BaseURL      string `mapstructure:"base_url"`
}

// QuizConfig contains quiz delivery and anonymous result settings
type QuizConfig struct {
	ResultsDir         string        `mapstructure:"results_dir"`
	ResultTTL          time.Duration `mapstructure:"result_ttl"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	NumExercises       int           `mapstructure:"num_exercises"`
	CurrentYearPercent int           `mapstructure:"current_year_percent"`
	DefaultYear        int           `mapstructure:"default_year"`
	AssetsSource       string        `mapstructure:"assets_source"`
	AssetsProdURL      string        `mapstructure:"assets_prod_url"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	SessionCapacity    int           `mapstructure:"session_capacity"`
}

// RegistrationConfig contains email-confirmation settings
type RegistrationConfig struct {
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Capacity   int           `mapstructure:"capacity"`
	AdminEmail string        `mapstructure:"admin_email"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DSN builds the driver-specific connection string
func (d *DatabaseConfig) DSN() (string, error) {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
			d.User, d.Password, d.Host, d.Port, d.DBName,
		), nil
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
		), nil
	case "sqlite":
		return d.Path, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", d.Driver)
	}
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.mode", "debug")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)

	vip.SetDefault("database.driver", "sqlite")
	vip.SetDefault("database.path", "explicolivais.db")
	vip.SetDefault("database.port", "3306")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations", true)

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("jwt.expiration_hrs", 24)
	vip.SetDefault("jwt.cookie_name", "explicolivais_session")

	vip.SetDefault("google.scopes", []string{"openid", "email", "profile"})

	vip.SetDefault("email.provider", "noop")
	vip.SetDefault("email.base_url", "http://localhost:8080")

	vip.SetDefault("quiz.results_dir", "quiz_results")
	vip.SetDefault("quiz.result_ttl", time.Hour)
	vip.SetDefault("quiz.sweep_interval", 10*time.Minute)
	vip.SetDefault("quiz.num_exercises", 20)
	vip.SetDefault("quiz.current_year_percent", 50)
	vip.SetDefault("quiz.default_year", 5)
	vip.SetDefault("quiz.assets_source", "dev")
	vip.SetDefault("quiz.session_ttl", 2*time.Hour)
	vip.SetDefault("quiz.session_capacity", 10000)

	vip.SetDefault("registration.token_ttl", time.Hour)
	vip.SetDefault("registration.capacity", 1000)

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.file", "logs/app.log")
	vip.SetDefault("log.max_size_mb", 100)
	vip.SetDefault("log.max_backups", 5)
	vip.SetDefault("log.max_age_days", 30)
}

// Load reads configuration from the given file and the environment
func Load(configPath string) (*Config, error) {
	vip := viper.New() // own instance, no global viper state

	setDefaults(vip)

	// Explicit env bindings
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")

	vip.BindEnv("database.driver", "DATABASE_DRIVER")
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.path", "DATABASE_PATH")

	vip.BindEnv("redis.enabled", "REDIS_ENABLED")
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expiration_hrs", "JWT_EXPIRATION_HRS")

	vip.BindEnv("google.client_id", "SECRET_CLIENT_KEY")
	vip.BindEnv("google.client_secret", "SECRET_CLIENT_SECRET")
	vip.BindEnv("google.redirect_url", "GOOGLE_REDIRECT_URL")

	vip.BindEnv("email.provider", "EMAIL_PROVIDER")
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")
	vip.BindEnv("email.base_url", "PUBLIC_BASE_URL")

	vip.BindEnv("quiz.results_dir", "QUIZ_RESULTS_DIR")
	vip.BindEnv("quiz.assets_source", "QUIZ_ASSETS_SOURCE")
	vip.BindEnv("quiz.assets_prod_url", "QUIZ_ASSETS_PROD_URL")

	vip.BindEnv("registration.admin_email", "ADMINDB_EMAIL")

	vip.BindEnv("log.level", "LOG_LEVEL")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// A missing file is fine, env vars and defaults still apply
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Config file '%s' not found, using environment/defaults.", configPath)
			} else {
				log.Printf("Warning: could not read config file '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Registration.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.Registration.AdminEmail))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Database.DSN(); err != nil {
		return err
	}
	if c.Database.Driver != "sqlite" && (c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "") {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("sqlite driver requires database.path (check DATABASE_PATH env var)")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (check JWT_SECRET env var)")
	}
	if c.Email.Provider == "resend" && (c.Email.ResendAPIKey == "" || c.Email.From == "") {
		return fmt.Errorf("resend email provider requires resend_api_key and from (check RESEND_API_KEY, EMAIL_FROM env vars)")
	}
	if c.Quiz.CurrentYearPercent < 0 || c.Quiz.CurrentYearPercent > 100 {
		return fmt.Errorf("quiz.current_year_percent must be within [0, 100], got %d", c.Quiz.CurrentYearPercent)
	}
	if c.Quiz.NumExercises <= 0 {
		return fmt.Errorf("quiz.num_exercises must be positive, got %d", c.Quiz.NumExercises)
	}
	if c.Server.Mode == "release" && c.Database.Driver != "sqlite" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	return nil
}
