// Package config loads node configuration and builds the genesis block.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ARCADE_RPC_PORT.
const EnvPrefix = "ARCADE"

// GenesisConfig describes the chain's initial state.
type GenesisConfig struct {
	ChainID string            `json:"chain_id" mapstructure:"chain_id"`
	Alloc   map[string]uint64 `json:"alloc" mapstructure:"alloc"` // pubkey hex -> initial balance
}

// Config holds all node configuration.
type Config struct {
	NodeID        string        `json:"node_id" mapstructure:"node_id"`
	DataDir       string        `json:"data_dir" mapstructure:"data_dir"`
	RPCPort       int           `json:"rpc_port" mapstructure:"rpc_port"`
	RPCAuthToken  string        `json:"rpc_auth_token,omitempty" mapstructure:"rpc_auth_token"`
	BlockInterval string        `json:"block_interval" mapstructure:"block_interval"` // Go duration
	MaxBlockTxs   int           `json:"max_block_txs" mapstructure:"max_block_txs"`
	MempoolSize   int           `json:"mempool_size" mapstructure:"mempool_size"`
	LogLevel      string        `json:"log_level" mapstructure:"log_level"`
	LogJSON       bool          `json:"log_json" mapstructure:"log_json"`
	Validators    []string      `json:"validators" mapstructure:"validators"` // proposer pubkey hexes
	Genesis       GenesisConfig `json:"genesis" mapstructure:"genesis"`
}

// DefaultConfig returns a single-node development configuration.
func DefaultConfig() *Config {
	return &Config{
		NodeID:        "node0",
		DataDir:       "./data",
		RPCPort:       8545,
		BlockInterval: "2s",
		MaxBlockTxs:   500,
		MempoolSize:   10_000,
		LogLevel:      "info",
		Genesis: GenesisConfig{
			ChainID: "arcade-dev",
			Alloc:   map[string]uint64{},
		},
	}
}

// Load reads the JSON config at path over the defaults and applies
// ARCADE_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("node_id", def.NodeID)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("rpc_port", def.RPCPort)
	v.SetDefault("rpc_auth_token", def.RPCAuthToken)
	v.SetDefault("block_interval", def.BlockInterval)
	v.SetDefault("max_block_txs", def.MaxBlockTxs)
	v.SetDefault("mempool_size", def.MempoolSize)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_json", def.LogJSON)
	v.SetDefault("genesis.chain_id", def.Genesis.ChainID)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Genesis.Alloc == nil {
		cfg.Genesis.Alloc = map[string]uint64{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Genesis.ChainID == "" {
		return errors.New("config: genesis.chain_id is required")
	}
	if _, err := c.Interval(); err != nil {
		return fmt.Errorf("config: block_interval: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	return nil
}

// Interval parses BlockInterval.
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.BlockInterval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

// Save writes cfg to path as indented JSON.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NewLogger builds the node's structured logger from LogLevel and LogJSON.
func (c *Config) NewLogger() log.Logger {
	opts := []log.Option{log.ColorOption(!c.LogJSON)}
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		opts = append(opts, log.LevelOption(lvl))
	}
	if c.LogJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(os.Stderr, opts...)
}
