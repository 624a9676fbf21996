// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/pebble"
	"github.com/ava-labs/modevm/storage"
	"github.com/ava-labs/modevm/trace"
)

const (
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 64
	defaultLogMaxFiles     = 4
	defaultDataDir         = ".modevm"
	defaultHTTPAddress     = "127.0.0.1:9650"
	defaultBlockIntervalMs = 1_000
	defaultMaxBlockTxs     = 1_024
	defaultMempoolSize     = 4_096
	defaultRecentResults   = 1_024
)

var (
	ErrInvalidBlockInterval = errors.New("block interval must be positive")
	ErrInvalidMaxBlockTxs   = errors.New("max block txs must be positive")
	ErrInvalidMempoolSize   = errors.New("mempool size must be positive")
)

type Config struct {
	// Logging
	LogLevel     string `json:"logLevel" yaml:"logLevel"`
	LogFile      string `json:"logFile" yaml:"logFile"` // empty logs to stdout only
	LogMaxSizeMB int    `json:"logMaxSizeMB" yaml:"logMaxSizeMB"`
	LogMaxFiles  int    `json:"logMaxFiles" yaml:"logMaxFiles"`

	// Storage
	DataDir      string        `json:"dataDir" yaml:"dataDir"`
	StoreBackend string        `json:"storeBackend" yaml:"storeBackend"`
	Pebble       pebble.Config `json:"pebble" yaml:"pebble"`

	// API
	HTTPAddress    string   `json:"httpAddress" yaml:"httpAddress"`
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`
	AllowedHosts   []string `json:"allowedHosts" yaml:"allowedHosts"`

	// Builder
	BlockIntervalMs int64 `json:"blockInterval" yaml:"blockInterval"`
	MaxBlockTxs     int   `json:"maxBlockTxs" yaml:"maxBlockTxs"`

	// Mempool
	MempoolSize int `json:"mempoolSize" yaml:"mempoolSize"`

	// Tracing
	TraceEnabled    bool    `json:"traceEnabled" yaml:"traceEnabled"`
	TraceSampleRate float64 `json:"traceSampleRate" yaml:"traceSampleRate"`
	TraceEndpoint   string  `json:"traceEndpoint" yaml:"traceEndpoint"`

	// Add-ons
	IndexerEnabled bool `json:"indexerEnabled" yaml:"indexerEnabled"`
	JournalEnabled bool `json:"journalEnabled" yaml:"journalEnabled"`
	MetricsEnabled bool `json:"metricsEnabled" yaml:"metricsEnabled"`
	RecentResults  int  `json:"recentResults" yaml:"recentResults"`
}

func New(b []byte) (*Config, error) {
	c := &Config{}
	c.setDefault()
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	}
	return c, c.Verify()
}

// Load reads a JSON or YAML config file. The format is picked from the file
// extension.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		c := &Config{}
		c.setDefault()
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
		}
		return c, c.Verify()
	default:
		return New(b)
	}
}

func (c *Config) setDefault() {
	c.LogLevel = defaultLogLevel
	c.LogMaxSizeMB = defaultLogMaxSizeMB
	c.LogMaxFiles = defaultLogMaxFiles
	c.DataDir = defaultDataDir
	c.StoreBackend = storage.MemoryBackend
	c.Pebble = pebble.NewDefaultConfig()
	c.HTTPAddress = defaultHTTPAddress
	c.AllowedOrigins = []string{"*"}
	c.AllowedHosts = []string{"localhost"}
	c.BlockIntervalMs = defaultBlockIntervalMs
	c.MaxBlockTxs = defaultMaxBlockTxs
	c.MempoolSize = defaultMempoolSize
	c.MetricsEnabled = true
	c.RecentResults = defaultRecentResults
}

func (c *Config) Verify() error {
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	switch c.StoreBackend {
	case storage.MemoryBackend, storage.PebbleBackend:
	default:
		return fmt.Errorf("%w: %s", storage.ErrUnknownBackend, c.StoreBackend)
	}
	if c.BlockIntervalMs <= 0 {
		return ErrInvalidBlockInterval
	}
	if c.MaxBlockTxs <= 0 {
		return ErrInvalidMaxBlockTxs
	}
	if c.MempoolSize <= 0 {
		return ErrInvalidMempoolSize
	}
	return nil
}

func (c *Config) GetLogLevel() (logging.Level, error) {
	return logging.ToLevel(c.LogLevel)
}

func (c *Config) GetBlockInterval() time.Duration {
	return time.Duration(c.BlockIntervalMs) * time.Millisecond
}

func (c *Config) GetTraceConfig(agent string) *trace.Config {
	return &trace.Config{
		Enabled:         c.TraceEnabled,
		TraceSampleRate: c.TraceSampleRate,
		Endpoint:        c.TraceEndpoint,
		AppName:         consts.Name,
		Agent:           agent,
		Version:         consts.Version.String(),
	}
}
