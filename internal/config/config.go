// Package config holds the settings of a clipwsl run and their defaults.
// Values are read through viper: defaults, then clipwsl.toml, then
// CLIPWSL_* environment variables, then flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"clipwsl/internal/hotkey"
)

const (
	// Name is the config file base name, without extension.
	Name = "clipwsl"
	// EnvPrefix prefixes every environment override, e.g. CLIPWSL_MODE.
	EnvPrefix = "CLIPWSL"
)

// Mode selects whether the input layout is guarded while pasting.
type Mode string

const (
	ModeFast Mode = "fast"
	ModeSafe Mode = "safe"
)

var ErrInvalid = errors.New("config: invalid")

// ParseMode accepts "fast" and "safe" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFast, ModeSafe:
		return m, nil
	}
	return "", fmt.Errorf("%w: mode %q (want fast or safe)", ErrInvalid, s)
}

type Sweep struct {
	Schedule    string        `mapstructure:"schedule" yaml:"schedule"`
	MaxAge      time.Duration `mapstructure:"max_age" yaml:"max_age"`
	PurgeOnExit bool          `mapstructure:"purge_on_exit" yaml:"purge_on_exit"`
}

type Config struct {
	Hotkey     string        `mapstructure:"hotkey" yaml:"hotkey"`
	Mode       Mode          `mapstructure:"mode" yaml:"mode"`
	TempDir    string        `mapstructure:"temp_dir" yaml:"temp_dir"`
	QueueSize  int           `mapstructure:"queue_size" yaml:"queue_size"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	Sweep      Sweep         `mapstructure:"sweep" yaml:"sweep"`

	// Prefetch polls for new clipboard bitmaps at this interval; 0 is off.
	Prefetch time.Duration `mapstructure:"prefetch" yaml:"prefetch"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Hotkey:     "!v",
		Mode:       ModeFast,
		TempDir:    DefaultTempDir(),
		QueueSize:  64,
		RetryDelay: 10 * time.Millisecond,
		Sweep: Sweep{
			Schedule:    "@every 2h",
			MaxAge:      2 * time.Hour,
			PurgeOnExit: true,
		},
	}
}

// ExeDir is the directory of the running executable, or "." if it can't
// be determined.
func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// DefaultTempDir is the temp folder next to the executable.
func DefaultTempDir() string {
	return filepath.Join(ExeDir(), "temp")
}

// SetDefaults registers every key with viper, which also makes each key
// visible to AutomaticEnv. Durations are stored as strings so a written
// config file reads "2h0m0s" rather than nanoseconds.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("hotkey", d.Hotkey)
	v.SetDefault("mode", string(d.Mode))
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("queue_size", d.QueueSize)
	v.SetDefault("retry_delay", d.RetryDelay.String())
	v.SetDefault("prefetch", d.Prefetch.String())
	v.SetDefault("sweep.schedule", d.Sweep.Schedule)
	v.SetDefault("sweep.max_age", d.Sweep.MaxAge.String())
	v.SetDefault("sweep.purge_on_exit", d.Sweep.PurgeOnExit)
}

// BindEnv maps CLIPWSL_SWEEP_MAX_AGE style variables onto nested keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// WriteDefaults writes the default configuration to path, in the format
// its extension names. An existing file is kept unless force is set.
func WriteDefaults(path string, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	v := viper.New()
	SetDefaults(v)
	write := v.SafeWriteConfigAs
	if force {
		write = v.WriteConfigAs
	}
	if err := write(path); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	m, err := ParseMode(string(c.Mode))
	if err != nil {
		return Config{}, err
	}
	c.Mode = m
	if c.TempDir == "" {
		c.TempDir = DefaultTempDir()
	}
	if abs, err := filepath.Abs(c.TempDir); err == nil {
		c.TempDir = abs
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if _, err := hotkey.Parse(c.Hotkey); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.TempDir == "" {
		return fmt.Errorf("%w: temp_dir is empty", ErrInvalid)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size %d must be positive", ErrInvalid, c.QueueSize)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry_delay %s is negative", ErrInvalid, c.RetryDelay)
	}
	if c.Prefetch < 0 {
		return fmt.Errorf("%w: prefetch %s is negative", ErrInvalid, c.Prefetch)
	}
	if c.Sweep.Schedule != "" {
		if _, err := cron.ParseStandard(c.Sweep.Schedule); err != nil {
			return fmt.Errorf("%w: sweep.schedule: %w", ErrInvalid, err)
		}
	}
	if c.Sweep.MaxAge <= 0 {
		return fmt.Errorf("%w: sweep.max_age %s must be positive", ErrInvalid, c.Sweep.MaxAge)
	}
	return nil
}

// YAML renders c for display.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
