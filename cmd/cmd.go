package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	clearData  bool
)

var rootCmd = &cobra.Command{
	Use:   "budget-story",
	Short: "Budget Story",
	Long:  `Personal budget ledger: monthly income, categorized expenses, savings metrics and a trend preview.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	var cfg *internal.Config
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg = internal.LoadConfigFromEnv()
	} else {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	if err := logger.Configure(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format); err != nil {
		return nil, fmt.Errorf("error configuring logger: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string) (*internal.Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("BUDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, internal.DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that are
// absent from the file.
func setDefaults(v *viper.Viper, def *internal.Config) {
	v.SetDefault("http_server.port", def.Server.Port)
	v.SetDefault("http_server.allowed_origins", def.Server.AllowedOrigins)
	v.SetDefault("http_server.read_header_timeout", def.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("http_server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("http_server.idle_timeout", def.Server.IdleTimeout)

	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.source", def.Database.Source)
	v.SetDefault("database.max_open_conns", def.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", def.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", def.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", def.Database.ConnMaxIdleTime)
	v.SetDefault("database.auto_migrate", def.Database.AutoMigrate)

	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.ledger_key", def.Storage.LedgerKey)
	v.SetDefault("storage.theme_key", def.Storage.ThemeKey)
	v.SetDefault("storage.write_retries", def.Storage.WriteRetries)
	v.SetDefault("storage.retry_base_delay", def.Storage.RetryBaseDelay)
	v.SetDefault("storage.operation_timeout", def.Storage.OperationTimeout)

	v.SetDefault("budget.trend_seed", def.Budget.TrendSeed)

	v.SetDefault("observability.logging.level", def.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", def.Observability.Logging.Format)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Overwrite an existing ledger snapshot")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(ledgerCmd)
}
