package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TaxConfig carries the tax defaults applied when a line item does not
// specify its own rate or classification code.
type TaxConfig struct {
	// DefaultRatePercent is applied to every item without an explicit rate.
	// There is deliberately no per-category rate table yet; rate resolution
	// goes through tax/domain.RateResolver so one can be added later.
	DefaultRatePercent float64           `mapstructure:"defaultRatePercent"`
	DefaultHSNCode     string            `mapstructure:"defaultHsnCode"`
	CategoryHSNCodes   map[string]string `mapstructure:"categoryHsnCodes"`
}

func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		DefaultRatePercent: 18,
		DefaultHSNCode:     "9999",
		CategoryHSNCodes: map[string]string{
			"apparel":     "6109",
			"footwear":    "6403",
			"electronics": "8517",
			"books":       "4901",
			"cosmetics":   "3304",
			"services":    "9989",
		},
	}
}

// TaxConfigHolder keeps the active tax configuration and swaps it atomically
// on file change.
type TaxConfigHolder struct {
	current atomic.Value // holds TaxConfig
}

func NewTaxConfigHolder() (*TaxConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("tax")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/taxdoc/config") // Volume-mounted config
	v.AddConfigPath("/etc/taxdoc")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("TAXDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultTaxConfig()
		v.SetDefault("tax.defaultRatePercent", defaults.DefaultRatePercent)
		v.SetDefault("tax.defaultHsnCode", defaults.DefaultHSNCode)
		v.SetDefault("tax.categoryHsnCodes", defaults.CategoryHSNCodes)
	}

	var cfg TaxConfig
	if err := v.UnmarshalKey("tax", &cfg); err != nil {
		return nil, err
	}
	if err := validateTaxConfig(cfg); err != nil {
		return nil, err
	}

	holder := &TaxConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TaxConfig
		if err := v.UnmarshalKey("tax", &updated); err != nil {
			log.Printf("[tax-config] reload failed: %v", err)
			return
		}
		if err := validateTaxConfig(updated); err != nil {
			log.Printf("[tax-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tax-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticTaxConfigHolder wraps a fixed config, used by tests.
func NewStaticTaxConfigHolder(cfg TaxConfig) *TaxConfigHolder {
	holder := &TaxConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *TaxConfigHolder) Get() TaxConfig {
	return h.current.Load().(TaxConfig)
}

func validateTaxConfig(cfg TaxConfig) error {
	if cfg.DefaultRatePercent < 0 || cfg.DefaultRatePercent > 100 {
		return errors.New("tax.defaultRatePercent must be between 0 and 100")
	}
	if cfg.DefaultHSNCode == "" {
		return errors.New("tax.defaultHsnCode cannot be empty")
	}
	return nil
}
