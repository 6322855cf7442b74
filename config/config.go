// Package config loads and saves interpreter settings, grounded on the
// teacher's config/config.go: same BurntSushi/toml-backed struct,
// same GetConfigPath/GetLogPath platform-directory resolution, same
// Load/Save round trip — repurposed from ARM emulator knobs (cycle
// limits, stack size, register display) to the fixed-memory-region and
// debugger settings spec §2/§4.I/§4.F actually call for.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the interpreter's configuration.
type Config struct {
	// Execution settings: the fixed-size resources spec §2 calls out
	// as "memory regions" on a microcontroller target, sized generously
	// here for a desktop host (see interp.Limits, which Load feeds).
	Execution struct {
		StreamCapacity  int  `toml:"stream_capacity"`
		MaxBreakpoints  int  `toml:"max_breakpoints"`
		LastValuesDepth int  `toml:"last_values_depth"`
		LineRangeCap    int  `toml:"line_range_capacity"`
		TrapErrorsByDef bool `toml:"trap_errors_by_default"`
	} `toml:"execution"`

	// Debugger settings.
	Debugger struct {
		HistorySize     int  `toml:"history_size"`
		AutoSaveBreaks  bool `toml:"auto_save_breakpoints"`
		ShowSource      bool `toml:"show_source"`
		SourceContext   int  `toml:"source_context"`
		HousekeepingMS  int  `toml:"housekeeping_interval_ms"`
	} `toml:"debugger"`

	// Display settings for the CLI/TUI frontends.
	Display struct {
		ColorOutput   bool   `toml:"color_output"`
		NumberFormat  string `toml:"number_format"` // hex, dec
		PromptPrefix  string `toml:"prompt_prefix"`
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.StreamCapacity = 64 * 1024
	cfg.Execution.MaxBreakpoints = 64
	cfg.Execution.LastValuesDepth = 8
	cfg.Execution.LineRangeCap = 4096
	cfg.Execution.TrapErrorsByDef = false

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.AutoSaveBreaks = true
	cfg.Debugger.ShowSource = true
	cfg.Debugger.SourceContext = 5
	cfg.Debugger.HousekeepingMS = 50

	cfg.Display.ColorOutput = true
	cfg.Display.NumberFormat = "dec"
	cfg.Display.PromptPrefix = "> "

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "justinavm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "justinavm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "justinavm", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "justinavm", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, ferr := os.Create(path) // #nosec G304 -- user config file path
	if ferr != nil {
		return fmt.Errorf("failed to create config file: %w", ferr)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if encErr := encoder.Encode(c); encErr != nil {
		return fmt.Errorf("failed to encode config: %w", encErr)
	}

	return nil
}
