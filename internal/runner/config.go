package runner

import (
	"maps"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config controls how the external framework is invoked.
type Config struct {
	// Executable is the framework CLI, resolved through PATH when not absolute.
	Executable string `yaml:"executable" json:"executable" jsonschema:"title=Executable,default=freqtrade" validate:"required"`
	// UserDataDir receives strategies/<Name>.py and is passed as --user-data-dir.
	UserDataDir string `yaml:"user_data_dir" json:"user_data_dir" jsonschema:"title=User Data Directory,default=user_data" validate:"required"`
	// WorkDir is the working directory of the child process. Empty keeps the current one.
	WorkDir         string        `yaml:"work_dir" json:"work_dir" jsonschema:"title=Working Directory"`
	BacktestTimeout time.Duration `yaml:"backtest_timeout" json:"backtest_timeout" jsonschema:"title=Backtest Timeout" validate:"gt=0"`
	HyperoptTimeout time.Duration `yaml:"hyperopt_timeout" json:"hyperopt_timeout" jsonschema:"title=Hyperopt Timeout" validate:"gt=0"`
	Epochs          int           `yaml:"epochs" json:"epochs" jsonschema:"title=Epochs,minimum=1,default=100" validate:"gte=1"`
	HyperoptLoss    string        `yaml:"hyperopt_loss" json:"hyperopt_loss" jsonschema:"title=Hyperopt Loss,default=SharpeHyperOptLoss" validate:"required"`
	Spaces          []string      `yaml:"spaces" json:"spaces" jsonschema:"title=Spaces" validate:"min=1,dive,oneof=all buy sell roi stoploss trailing protection trades default"`
	// Framework is the base framework configuration. Job overrides are merged
	// on top of it key by key.
	Framework map[string]any `yaml:"framework" json:"framework" jsonschema:"title=Framework Config"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Executable:      "freqtrade",
		UserDataDir:     "user_data",
		WorkDir:         "",
		BacktestTimeout: 5 * time.Minute,
		HyperoptTimeout: 30 * time.Minute,
		Epochs:          100,
		HyperoptLoss:    "SharpeHyperOptLoss",
		Spaces:          []string{"buy", "sell"},
		Framework:       DefaultFrameworkConfig(),
	}
}

// Validate checks the struct constraints of the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid runner config", err)
	}

	return nil
}

// LoadConfig reads a YAML configuration. Keys the file leaves out keep their
// DefaultConfig values; a framework section is merged over the default one.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read runner config %s", path)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse runner config", err)
	}

	overlay(&config, file)

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func overlay(config *Config, file Config) {
	if file.Executable != "" {
		config.Executable = file.Executable
	}

	if file.UserDataDir != "" {
		config.UserDataDir = file.UserDataDir
	}

	if file.WorkDir != "" {
		config.WorkDir = file.WorkDir
	}

	if file.BacktestTimeout != 0 {
		config.BacktestTimeout = file.BacktestTimeout
	}

	if file.HyperoptTimeout != 0 {
		config.HyperoptTimeout = file.HyperoptTimeout
	}

	if file.Epochs != 0 {
		config.Epochs = file.Epochs
	}

	if file.HyperoptLoss != "" {
		config.HyperoptLoss = file.HyperoptLoss
	}

	if len(file.Spaces) > 0 {
		config.Spaces = file.Spaces
	}

	maps.Copy(config.Framework, file.Framework)
}

// DefaultFrameworkConfig is a dry-run spot configuration on binance.
func DefaultFrameworkConfig() map[string]any {
	return map[string]any{
		"max_open_trades":            3,
		"stake_currency":             "USDT",
		"stake_amount":               100,
		"tradable_balance_ratio":     0.99,
		"fiat_display_currency":      "USD",
		"dry_run":                    true,
		"dry_run_wallet":             1000,
		"cancel_open_orders_on_exit": false,
		"trading_mode":               "spot",
		"margin_mode":                "",
		"unfilledtimeout": map[string]any{
			"entry":              10,
			"exit":               10,
			"exit_timeout_count": 0,
			"unit":               "minutes",
		},
		"entry_pricing": map[string]any{
			"price_side":         "same",
			"use_order_book":     true,
			"order_book_top":     1,
			"price_last_balance": 0.0,
			"check_depth_of_market": map[string]any{
				"enabled":           false,
				"bids_to_ask_delta": 1,
			},
		},
		"exit_pricing": map[string]any{
			"price_side":     "same",
			"use_order_book": true,
			"order_book_top": 1,
		},
		"exchange": map[string]any{
			"name":              "binance",
			"key":               "",
			"secret":            "",
			"ccxt_config":       map[string]any{},
			"ccxt_async_config": map[string]any{},
			"pair_whitelist":    []string{"BTC/USDT", "ETH/USDT"},
			"pair_blacklist":    []string{},
		},
		"pairlists": []map[string]any{
			{"method": "StaticPairList"},
		},
		"telegram": map[string]any{
			"enabled": false,
			"token":   "",
			"chat_id": "",
		},
		"api_server": map[string]any{
			"enabled":           false,
			"listen_ip_address": "127.0.0.1",
			"listen_port":       8080,
			"username":          "",
			"password":          "",
		},
		"bot_name":      "freqtrade",
		"initial_state": "running",
		"internals": map[string]any{
			"process_throttle_secs": 5,
		},
	}
}

// mergeFramework returns base with overrides applied on top. Nested maps are
// replaced, not merged.
func mergeFramework(base, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overrides))
	maps.Copy(merged, base)
	maps.Copy(merged, overrides)

	return merged
}
