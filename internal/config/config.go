package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EncoderConfig holds the rotary encoder and push button wiring.
// All lines are active LOW with pull-ups enabled.
type EncoderConfig struct {
	ClkPin        int `yaml:"clk_pin"`         // encoder clock line (BCM)
	DtPin         int `yaml:"dt_pin"`          // encoder data line (BCM)
	SwPin         int `yaml:"sw_pin"`          // push button line (BCM)
	DebounceMs    int `yaml:"debounce_ms"`     // button debounce window (ms)
	RotateGuardMs int `yaml:"rotate_guard_ms"` // minimum gap between rotate events (ms)
}

// StepperConfig holds the configuration for the platform stepper motor.
type StepperConfig struct {
	StepPin      int     `yaml:"step_pin"`
	DirPin       int     `yaml:"dir_pin"`
	EnablePin    int     `yaml:"enable_pin"`   // A4988 ENABLE pin (BCM). 0 = not used. Active LOW.
	Acceleration float64 `yaml:"acceleration"` // speed ramp limit (steps/s^2)
	MaxSpeed     float64 `yaml:"max_speed"`    // commanded speed cap (steps/s)
}

// LimitsConfig holds the two travel limit switches.
// Both are active LOW with pull-ups enabled.
type LimitsConfig struct {
	HomePin int `yaml:"home_pin"` // home end of travel
	EndPin  int `yaml:"end_pin"`  // far end of travel
}

// DisplayConfig describes the I2C OLED display.
type DisplayConfig struct {
	I2CBus  string `yaml:"i2c_bus"`  // bus name, "" = first available
	I2CAddr uint16 `yaml:"i2c_addr"` // e.g. 0x3C
	Width   int    `yaml:"width"`    // pixels, e.g. 128
	Height  int    `yaml:"height"`   // pixels, e.g. 64
}

// StoreConfig describes the non-volatile speed store.
type StoreConfig struct {
	Path string `yaml:"path"` // backing file for the word store
}

// DefaultsConfig contains generic parameters (timing, debug, mocking).
type DefaultsConfig struct {
	BlinkMs    int  `yaml:"blink_ms"`    // edit-mode blink period (ms)
	LoopMs     int  `yaml:"loop_ms"`     // control loop pacing (ms)
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Encoder  EncoderConfig  `yaml:"encoder"`
	Stepper  StepperConfig  `yaml:"stepper"`
	Limits   LimitsConfig   `yaml:"limits"`
	Display  DisplayConfig  `yaml:"display"`
	Store    StoreConfig    `yaml:"store"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath restricts -config to YAML files inside a configs/
// directory, rejecting traversal outside it.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension, got %q", path)
	}
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("config path %q escapes the configs directory", path)
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory, got %q", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Encoder.ClkPin <= 0 || cfg.Encoder.DtPin <= 0 || cfg.Encoder.SwPin <= 0 {
		return nil, fmt.Errorf("encoder clk_pin, dt_pin and sw_pin are required")
	}
	if cfg.Stepper.StepPin <= 0 || cfg.Stepper.DirPin <= 0 {
		return nil, fmt.Errorf("stepper step_pin and dir_pin are required")
	}
	if cfg.Limits.HomePin <= 0 || cfg.Limits.EndPin <= 0 {
		return nil, fmt.Errorf("limits home_pin and end_pin are required")
	}
	if cfg.Stepper.Acceleration < 0 {
		return nil, fmt.Errorf("stepper acceleration must be >= 0, got %.2f", cfg.Stepper.Acceleration)
	}
	if cfg.Stepper.Acceleration == 0 {
		cfg.Stepper.Acceleration = 20 // matches the original firmware constant
	}
	if cfg.Stepper.MaxSpeed <= 0 {
		cfg.Stepper.MaxSpeed = 1000
	}

	// Display defaults (SSD1306 128x64 at 0x3C)
	if cfg.Display.I2CAddr == 0 {
		cfg.Display.I2CAddr = 0x3C
	}
	if cfg.Display.Width <= 0 {
		cfg.Display.Width = 128
	}
	if cfg.Display.Height <= 0 {
		cfg.Display.Height = 64
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "/var/lib/eqgo/speeds.bin"
	}

	// Timing defaults
	if cfg.Encoder.DebounceMs <= 0 {
		cfg.Encoder.DebounceMs = 5
	}
	if cfg.Encoder.RotateGuardMs <= 0 {
		cfg.Encoder.RotateGuardMs = 2
	}
	if cfg.Defaults.BlinkMs <= 0 {
		cfg.Defaults.BlinkMs = 300
	}
	if cfg.Defaults.LoopMs <= 0 {
		cfg.Defaults.LoopMs = 1
	}

	return &cfg, nil
}

// BlinkInterval returns the edit-mode blink period.
func (c *Config) BlinkInterval() time.Duration {
	return time.Duration(c.Defaults.BlinkMs) * time.Millisecond
}

// LoopInterval returns the control loop pacing interval.
func (c *Config) LoopInterval() time.Duration {
	return time.Duration(c.Defaults.LoopMs) * time.Millisecond
}

// Debounce returns the push button debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Encoder.DebounceMs) * time.Millisecond
}

// RotateGuard returns the minimum gap between two rotate events.
func (c *Config) RotateGuard() time.Duration {
	return time.Duration(c.Encoder.RotateGuardMs) * time.Millisecond
}
