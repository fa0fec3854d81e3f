package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/validate"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/naming"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	Transmitter TransmitterConfig `mapstructure:"transmitter"`
	Output      OutputConfig      `mapstructure:"output"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Logger      LoggerConfig      `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ProviderConfig identifies the childcare provider issuing the slips
type ProviderConfig struct {
	Name           string `mapstructure:"name"`
	NEQ            string `mapstructure:"neq"`
	AddressLine    string `mapstructure:"address_line"`
	City           string `mapstructure:"city"`
	Province       string `mapstructure:"province"`
	PostalCode     string `mapstructure:"postal_code"`
	PreparerNumber string `mapstructure:"preparer_number"`
}

// TransmitterConfig identifies the party sending the files
type TransmitterConfig struct {
	Name string `mapstructure:"name"`
}

// OutputConfig holds artifact output configuration
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// ValidationConfig holds validation behavior configuration
type ValidationConfig struct {
	Strict bool `mapstructure:"strict"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/rl24.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("provider.province", "QC")

	viper.SetDefault("output.dir", "generated_transmissions")
	viper.SetDefault("validation.strict", false)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("provider.name", "PROVIDER_NAME")
	viper.BindEnv("provider.neq", "PROVIDER_NEQ")
	viper.BindEnv("provider.preparer_number", "PROVIDER_PREPARER_NUMBER")
	viper.BindEnv("transmitter.name", "TRANSMITTER_NAME")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("output.dir", "OUTPUT_DIR")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Provider.Name == "" {
		return fmt.Errorf("provider.name is required")
	}
	if err := validate.ValidateNEQ(c.Provider.NEQ); err != nil {
		return fmt.Errorf("provider.neq: %w", err)
	}
	if err := naming.ValidatePreparerNumber(c.Provider.PreparerNumber); err != nil {
		return fmt.Errorf("provider.preparer_number: %w", err)
	}
	if c.Provider.AddressLine == "" || c.Provider.City == "" {
		return fmt.Errorf("provider address is required")
	}
	if err := validate.ValidatePostalCode(c.Provider.PostalCode); err != nil {
		return fmt.Errorf("provider.postal_code: %w", err)
	}
	if c.Transmitter.Name == "" {
		return fmt.Errorf("transmitter.name is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	return nil
}

// ProviderProfile converts the provider section into the issuer snapshot
// used by the pipeline
func (c *Config) ProviderProfile() entity.ProviderProfile {
	return entity.ProviderProfile{
		Name:           c.Provider.Name,
		NEQ:            c.Provider.NEQ,
		AddressLine:    c.Provider.AddressLine,
		City:           c.Provider.City,
		Province:       c.Provider.Province,
		PostalCode:     c.Provider.PostalCode,
		PreparerNumber: c.Provider.PreparerNumber,
	}
}
