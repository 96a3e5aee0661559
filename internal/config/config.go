// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	Authority          string `mapstructure:"authority"`
	ProtocolFeeAddress string `mapstructure:"protocol_fee_address"`
	TasksFile          string `mapstructure:"tasks_file"`
	PostgresURL        string `mapstructure:"postgres_url"`
	Workers            int    `mapstructure:"workers"`
	EventBufferSize    int    `mapstructure:"event_buffer_size"`
	DebugLogging       bool   `mapstructure:"debug_logging"`
	LogFile            string `mapstructure:"log_file"`
}

const (
	DefaultWorkers         = 5
	DefaultEventBufferSize = 256
	DefaultLogFile         = "engine.log"
	DefaultTasksFile       = "configs/tasks.yaml"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"workers":           DefaultWorkers,
		"event_buffer_size": DefaultEventBufferSize,
		"log_file":          DefaultLogFile,
		"tasks_file":        DefaultTasksFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix("CURVE_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if url := v.GetString("POSTGRES_URL"); url != "" {
		cfg.PostgresURL = url
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Authority == "" {
		return errors.New("missing authority in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.Authority); err != nil {
		return errors.New("invalid authority public key")
	}
	if cfg.ProtocolFeeAddress == "" {
		return errors.New("missing protocol_fee_address in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.ProtocolFeeAddress); err != nil {
		return errors.New("invalid protocol fee address public key")
	}
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("invalid event_buffer_size")
	}
	return nil
}

// AuthorityKey returns the parsed authority public key. Call after
// LoadConfig has validated the config.
func (c *Config) AuthorityKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.Authority)
}

// ProtocolFeeKey returns the parsed protocol fee address.
func (c *Config) ProtocolFeeKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProtocolFeeAddress)
}
