// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DataDirEnv overrides the default data directory
const DataDirEnv = "ARMOR_DATA"

// DeviceConfig is config.yaml in the data directory. armor-device reads all
// of it; armor-console reads the socket and signing settings.
type DeviceConfig struct {
	MnemonicFile   string `yaml:"mnemonic_file" description:"Mnemonic file, plain text or sealed (relative to data dir)" default:"mnemonic.sealed"`
	SocketPath     string `yaml:"socket_path" description:"Unix socket the device is served on (relative to data dir)" default:"armor.sock"`
	MetricsAddr    string `yaml:"metrics_addr" description:"Listen address for the Prometheus /metrics endpoint (empty disables)"`
	AuditLog       string `yaml:"audit_log" description:"Append-only session audit log (relative to data dir, empty disables)" default:"audit.jsonl"`
	Trace          bool   `yaml:"trace" description:"Log public session values at debug level" default:"false"`
	ViewOutgoing   bool   `yaml:"view_outgoing" description:"Allow view-only exports that reveal outgoing payments" default:"false"`
	ProxySocket    string `yaml:"proxy_socket" description:"Mirror every operation on the device served at this socket"`
	ProxyTimeout   string `yaml:"proxy_timeout" description:"Per-call timeout for the proxy device" default:"30s"`
	ExtraChunkSize int    `yaml:"extra_chunk_size" description:"Bytes of tx extra sent per sign_add_extra call" default:"128"`

	PassphraseCommand    []string          `yaml:"passphrase_command" description:"Helper printing the mnemonic passphrase for headless start (argv, relative to data dir)"`
	PassphraseCommandEnv map[string]string `yaml:"passphrase_env" description:"Environment of the passphrase helper; nothing is inherited"`
}

// DefaultDeviceConfig returns the configuration used when no file exists
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		MnemonicFile:   "mnemonic.sealed",
		SocketPath:     "armor.sock",
		AuditLog:       "audit.jsonl",
		ProxyTimeout:   "30s",
		ExtraChunkSize: 128,
	}
}

// ResolvePath resolves a path relative to baseDir if not absolute.
// Returns path unchanged if empty or already absolute.
func ResolvePath(path, baseDir string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// GetDataDir resolves the data directory: -d flag > ARMOR_DATA > ~/.armor.
// Returns empty string if none can be determined.
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv(DataDirEnv); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".armor")
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// LoadDeviceConfig loads config.yaml from dataDir and resolves relative
// paths against it
func LoadDeviceConfig(dataDir string) (DeviceConfig, error) {
	config, err := LoadDeviceConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}
	config.MnemonicFile = ResolvePath(config.MnemonicFile, dataDir)
	config.SocketPath = ResolvePath(config.SocketPath, dataDir)
	config.AuditLog = ResolvePath(config.AuditLog, dataDir)
	config.ProxySocket = ResolvePath(config.ProxySocket, dataDir)
	if len(config.PassphraseCommand) > 0 {
		config.PassphraseCommand[0] = ResolvePath(config.PassphraseCommand[0], dataDir)
	}
	return config, nil
}

// LoadDeviceConfigFromPath loads configuration from path. An empty path or
// a missing file yields the defaults.
func LoadDeviceConfigFromPath(path string) (DeviceConfig, error) {
	if path == "" {
		return DefaultDeviceConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDeviceConfig(), nil
		}
		return DeviceConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultDeviceConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DeviceConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaults := DefaultDeviceConfig()
	if config.MnemonicFile == "" {
		config.MnemonicFile = defaults.MnemonicFile
	}
	if config.SocketPath == "" {
		config.SocketPath = defaults.SocketPath
	}
	if config.ProxyTimeout == "" {
		config.ProxyTimeout = defaults.ProxyTimeout
	}
	if config.ExtraChunkSize == 0 {
		config.ExtraChunkSize = defaults.ExtraChunkSize
	}
	if err := config.Validate(); err != nil {
		return DeviceConfig{}, err
	}
	return config, nil
}

// PassphraseHelper returns the configured passphrase helper, or nil
func (c *DeviceConfig) PassphraseHelper() *PassphraseCommand {
	if len(c.PassphraseCommand) == 0 {
		return nil
	}
	return &PassphraseCommand{Argv: c.PassphraseCommand, Env: c.PassphraseCommandEnv}
}

// Validate checks values the YAML decoder cannot
func (c *DeviceConfig) Validate() error {
	if _, err := c.ProxyTimeoutDuration(); err != nil {
		return err
	}
	if c.ExtraChunkSize < 0 {
		return fmt.Errorf("extra_chunk_size must be positive, got %d", c.ExtraChunkSize)
	}
	return nil
}

// ProxyTimeoutDuration parses proxy_timeout
func (c *DeviceConfig) ProxyTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.ProxyTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid proxy_timeout %q: %w", c.ProxyTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("proxy_timeout must be positive, got %s", d)
	}
	return d, nil
}
