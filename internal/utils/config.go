package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/xyproto/env/v2"
)

// EnvPrefix prefixes every environment override (PARSER_ELF_HEXDUMP_WIDTH, ...)
const EnvPrefix = "PARSER_ELF"

// ConfigEnvVar names the environment variable holding a config file path
const ConfigEnvVar = EnvPrefix + "_CONFIG"

// Config represents the application configuration
type Config struct {
	// Logging configuration
	Log LoggerConfig `yaml:"log" mapstructure:"log"`

	// Hex dump rendering
	HexDump HexDumpConfig `yaml:"hexdump" mapstructure:"hexdump"`

	// String table decoding
	Strings StringsConfig `yaml:"strings" mapstructure:"strings"`

	// Symbol rendering
	Symbols SymbolsConfig `yaml:"symbols" mapstructure:"symbols"`

	// Section routing
	Decode DecodeConfig `yaml:"decode" mapstructure:"decode"`

	// Archive listing via the external ar tool
	Builtin BuiltinConfig `yaml:"builtin" mapstructure:"builtin"`

	// Number of files decoded concurrently
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// HexDumpConfig holds hex dump settings
type HexDumpConfig struct {
	Width       int    `yaml:"width" mapstructure:"width"`
	Placeholder string `yaml:"placeholder" mapstructure:"placeholder"`
}

// StringsConfig holds string table settings
type StringsConfig struct {
	Strict bool `yaml:"strict" mapstructure:"strict"`
}

// SymbolsConfig holds symbol table settings
type SymbolsConfig struct {
	Demangle bool `yaml:"demangle" mapstructure:"demangle"`
}

// DecodeConfig widens section routing beyond SYMTAB/STRTAB/RELA
type DecodeConfig struct {
	Rel    bool `yaml:"rel" mapstructure:"rel"`
	DynSym bool `yaml:"dynsym" mapstructure:"dynsym"`
}

// BuiltinConfig holds settings for the thin archive listing
type BuiltinConfig struct {
	ArPath  string        `yaml:"ar_path" mapstructure:"ar_path"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ConfigManager handles configuration loading and management
type ConfigManager struct {
	config *Config
	viper  *viper.Viper
	logger *Logger
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		config: &Config{},
		viper:  viper.New(),
		logger: NewDefaultLogger(),
	}
}

// LoadConfig loads configuration from file and environment variables.
// An empty configFile falls back to $PARSER_ELF_CONFIG and then to the
// standard search locations.
func (c *ConfigManager) LoadConfig(configFile string) error {
	c.setDefaults()

	c.viper.SetConfigType("yaml")
	c.viper.SetEnvPrefix(EnvPrefix)
	c.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.viper.AutomaticEnv()

	if configFile == "" {
		configFile = env.Str(ConfigEnvVar)
	}

	if configFile != "" {
		c.viper.SetConfigFile(configFile)
		if err := c.viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			c.logger.WithComponent("config").Warnf("Config file not found: %s", configFile)
		} else {
			c.logger.WithComponent("config").Debugf("Loaded config from: %s", c.viper.ConfigFileUsed())
		}
	} else {
		c.viper.SetConfigName("parser-elf")
		c.viper.AddConfigPath(".")
		c.viper.AddConfigPath("$HOME/.parser-elf")
		c.viper.AddConfigPath("/etc/parser-elf")

		if err := c.viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			c.logger.WithComponent("config").Debug("No config file found, using defaults and environment variables")
		} else {
			c.logger.WithComponent("config").Debugf("Loaded config from: %s", c.viper.ConfigFileUsed())
		}
	}

	return c.finish()
}

// finish unmarshals and validates whatever viper holds
func (c *ConfigManager) finish() error {
	if err := c.viper.Unmarshal(c.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.validateConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.logger.WithComponent("config").Debug("Configuration loaded successfully")
	return nil
}

// setDefaults sets default configuration values
func (c *ConfigManager) setDefaults() {
	c.viper.SetDefault("log.level", "info")
	c.viper.SetDefault("log.format", "text")

	c.viper.SetDefault("hexdump.width", 16)
	c.viper.SetDefault("hexdump.placeholder", ".")

	c.viper.SetDefault("strings.strict", false)
	c.viper.SetDefault("symbols.demangle", false)

	c.viper.SetDefault("decode.rel", false)
	c.viper.SetDefault("decode.dynsym", false)

	c.viper.SetDefault("builtin.ar_path", "ar")
	c.viper.SetDefault("builtin.timeout", "30s")

	c.viper.SetDefault("workers", 4)
}

// validateConfig validates the loaded configuration
func (c *ConfigManager) validateConfig() error {
	level, err := ParseLogLevel(string(c.config.Log.Level))
	if err != nil {
		return err
	}
	c.config.Log.Level = level

	format, err := ParseLogFormat(string(c.config.Log.Format))
	if err != nil {
		return err
	}
	c.config.Log.Format = format

	if c.config.HexDump.Width <= 0 {
		return fmt.Errorf("invalid hexdump width: %d (must be positive)", c.config.HexDump.Width)
	}
	if p := c.config.HexDump.Placeholder; len(p) != 1 || p[0] < 0x20 || p[0] > 0x7e {
		return fmt.Errorf("invalid hexdump placeholder: %q (must be one printable ASCII character)", p)
	}

	if c.config.Workers <= 0 {
		return fmt.Errorf("invalid workers: %d (must be positive)", c.config.Workers)
	}
	if c.config.Builtin.Timeout <= 0 {
		return fmt.Errorf("invalid builtin timeout: %v", c.config.Builtin.Timeout)
	}

	if c.config.Builtin.ArPath != "" && strings.HasPrefix(c.config.Builtin.ArPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		c.config.Builtin.ArPath = filepath.Join(homeDir, c.config.Builtin.ArPath[2:])
	}

	return nil
}

// GetConfig returns the loaded configuration
func (c *ConfigManager) GetConfig() *Config {
	return c.config
}

// SetLogger sets the logger for the config manager
func (c *ConfigManager) SetLogger(logger *Logger) {
	c.logger = logger
}

// SetConfigValue sets a configuration value by key
func (c *ConfigManager) SetConfigValue(key string, value interface{}) {
	c.viper.Set(key, value)
}

// LoadDefaultConfig loads a default configuration
func LoadDefaultConfig() (*Config, error) {
	return LoadConfigFromFile("")
}

// LoadConfigFromFile loads configuration from a specific file
func LoadConfigFromFile(filename string) (*Config, error) {
	manager := NewConfigManager()
	if err := manager.LoadConfig(filename); err != nil {
		return nil, err
	}
	return manager.GetConfig(), nil
}

// LoadWithOverrides loads the defaults with the provided key overrides
// applied on top, without reading any file
func LoadWithOverrides(overrides map[string]interface{}) (*Config, error) {
	manager := NewConfigManager()
	manager.setDefaults()
	manager.viper.SetEnvPrefix(EnvPrefix)
	manager.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	manager.viper.AutomaticEnv()

	for key, value := range overrides {
		manager.SetConfigValue(key, value)
	}
	if err := manager.finish(); err != nil {
		return nil, err
	}
	return manager.GetConfig(), nil
}
