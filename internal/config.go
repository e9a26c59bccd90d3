package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendDatabase = "database"
	BackendMemory   = "memory"

	DefaultLedgerKey = "budgetStoryData"
	DefaultThemeKey  = "budgetStoryTheme"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Budget        BudgetConfig        `mapstructure:"budget"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type StorageConfig struct {
	Backend          string        `mapstructure:"backend"`
	LedgerKey        string        `mapstructure:"ledger_key"`
	ThemeKey         string        `mapstructure:"theme_key"`
	WriteRetries     uint64        `mapstructure:"write_retries"`
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// BudgetConfig carries the catalog as configured; its rules are enforced
// when category.NewService builds the catalog.
type BudgetConfig struct {
	Categories []CategoryConfig `mapstructure:"categories"`
	TrendSeed  uint64           `mapstructure:"trend_seed"`
}

type CategoryConfig struct {
	Name  string `mapstructure:"name"`
	Color string `mapstructure:"color"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig mirrors the defaults registered on viper by the cmd package.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Source:          "budget-story.db",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
			AutoMigrate:     true,
		},
		Storage: StorageConfig{
			Backend:          BackendDatabase,
			LedgerKey:        DefaultLedgerKey,
			ThemeKey:         DefaultThemeKey,
			WriteRetries:     3,
			RetryBaseDelay:   50 * time.Millisecond,
			OperationTimeout: 5 * time.Second,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsUint(key string, defaultVal uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration from plain environment
// variables, used for container deployments where no config file is shipped.
func LoadConfigFromEnv() *Config {
	def := DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", def.Server.Port),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", def.Server.ReadHeaderTimeout),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", def.Server.ReadTimeout),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", def.Server.WriteTimeout),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", def.Server.IdleTimeout),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", DriverPostgres),
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", def.Database.ConnMaxLifetime),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", def.Database.ConnMaxIdleTime),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Storage: StorageConfig{
			Backend:          getEnv("STORAGE_BACKEND", BackendDatabase),
			LedgerKey:        getEnv("STORAGE_LEDGER_KEY", DefaultLedgerKey),
			ThemeKey:         getEnv("STORAGE_THEME_KEY", DefaultThemeKey),
			WriteRetries:     getEnvAsUint("STORAGE_WRITE_RETRIES", def.Storage.WriteRetries),
			RetryBaseDelay:   getEnvAsDuration("STORAGE_RETRY_BASE_DELAY", def.Storage.RetryBaseDelay),
			OperationTimeout: getEnvAsDuration("STORAGE_OPERATION_TIMEOUT", def.Storage.OperationTimeout),
		},
		Budget: BudgetConfig{
			TrendSeed: getEnvAsUint("TREND_SEED", 0),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if c.Storage.Backend == BackendDatabase {
		if err := c.Database.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("database config: %v", err))
		}
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Driver != DriverPostgres && c.Driver != DriverSQLite {
		return fmt.Errorf("unsupported driver %q: must be %s or %s", c.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *StorageConfig) Validate() error {
	if c.Backend != BackendDatabase && c.Backend != BackendMemory {
		return fmt.Errorf("unsupported backend %q: must be %s or %s", c.Backend, BackendDatabase, BackendMemory)
	}
	if strings.TrimSpace(c.LedgerKey) == "" {
		return errors.New("ledger_key is required")
	}
	if c.LedgerKey == c.ThemeKey {
		return errors.New("ledger_key and theme_key must differ")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
