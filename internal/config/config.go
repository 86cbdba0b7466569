package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/velvena/velvena/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Pricing    PricingConfig    `validate:"required"`
	Cache      CacheConfig
	Catalog    CatalogConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// PricingConfig holds the business constants of the pricing engine.
// Rates and percentages are expressed in percent, 20 means 20%.
type PricingConfig struct {
	Currency          string          `mapstructure:"currency" validate:"required"`
	DefaultTaxRate    decimal.Decimal `mapstructure:"default_tax_rate"`
	DepositPercentage decimal.Decimal `mapstructure:"deposit_percentage"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	PriceTTL time.Duration `mapstructure:"price_ttl"`
}

type CatalogConfig struct {
	Mode         types.CatalogMode `mapstructure:"mode" validate:"required"`
	BaseURL      string            `mapstructure:"base_url"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	SnapshotPath string            `mapstructure:"snapshot_path"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/velvena")

	v.SetEnvPrefix("VELVENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config, viper.DecodeHook(decimalHook())); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("pricing.currency", types.DefaultCurrency)
	v.SetDefault("pricing.default_tax_rate", types.DefaultTaxRate)
	v.SetDefault("pricing.deposit_percentage", types.DefaultDepositPercentage)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.price_ttl", types.DefaultPriceCacheTTL)
	v.SetDefault("catalog.mode", types.CatalogModeLocal)
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.snapshot_path", "./internal/config/catalog.json")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.Catalog.Mode.Validate(); err != nil {
		return err
	}
	if c.Catalog.Mode == types.CatalogModeRemote && c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required when catalog.mode is %s", types.CatalogModeRemote)
	}
	if c.Pricing.DefaultTaxRate.IsNegative() {
		return fmt.Errorf("pricing.default_tax_rate must not be negative")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts, tests or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Pricing: PricingConfig{
			Currency:          types.DefaultCurrency,
			DefaultTaxRate:    decimal.RequireFromString(types.DefaultTaxRate),
			DepositPercentage: decimal.RequireFromString(types.DefaultDepositPercentage),
		},
		Cache: CacheConfig{
			Enabled:  true,
			PriceTTL: types.DefaultPriceCacheTTL,
		},
		Catalog: CatalogConfig{
			Mode:    types.CatalogModeLocal,
			Timeout: 30 * time.Second,
		},
	}
}
