package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// ErrMissingCustody indicates that the custody address is not configured.
var ErrMissingCustody = errors.New("missing custody address")

// ClientConfig is the poolctl configuration file.
type ClientConfig struct {
	StorePath  string `yaml:"storePath"`
	SyncWrites bool   `yaml:"syncWrites"`
	Custody    string `yaml:"custody"`
	Rounding   string `yaml:"rounding"`
	LogLevel   string `yaml:"logLevel"`
	LogFormat  string `yaml:"logFormat"`
}

// LoadConfig reads and validates the YAML file at path, applying defaults for
// unset optional fields.
func LoadConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*ClientConfig, error) {
	cfg := &ClientConfig{
		StorePath:  "pool-data",
		SyncWrites: true,
		Rounding:   "floor",
		LogLevel:   "info",
		LogFormat:  "json",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClientConfig) validate() error {
	if c.StorePath == "" {
		return errors.New("config: storePath is required")
	}
	if c.Custody == "" {
		return ErrMissingCustody
	}
	if !common.IsHexAddress(c.Custody) {
		return fmt.Errorf("config: invalid custody address %q", c.Custody)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown logFormat %q", c.LogFormat)
	}
	return nil
}

// CustodyAddress returns the parsed custody address.
func (c *ClientConfig) CustodyAddress() common.Address {
	return common.HexToAddress(c.Custody)
}

// Level maps LogLevel to a slog level. Supported levels: debug, info, warn, error.
func (c *ClientConfig) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
