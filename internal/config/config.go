package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/input"
)

const (
	DefaultAlgorithm = "sorting"
	DefaultInput     = "5, 3, 8, 1, 9, 4, 7, 2, 6"
	DefaultSpeed     = 300 * time.Millisecond
	DefaultDataDir   = "runs"
	DefaultStorage   = "file"
	DefaultTheme     = "default"
	DefaultAddr      = ":8080"
	DefaultMaxInput  = 200
	DefaultLogLevel  = "info"

	MinSpeed  = 50 * time.Millisecond
	MaxSpeed  = 1000 * time.Millisecond
	SpeedStep = 50 * time.Millisecond

	envPrefix = "ALGOVIZ"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Algorithm string        `yaml:"algorithm" mapstructure:"algorithm"`
	Input     string        `yaml:"input" mapstructure:"input"`
	Preset    string        `yaml:"preset,omitempty" mapstructure:"preset"`
	Speed     time.Duration `yaml:"speed" mapstructure:"speed"`
	Theme     string        `yaml:"theme" mapstructure:"theme"`
	DataDir   string        `yaml:"data_dir" mapstructure:"data_dir"`
	Storage   string        `yaml:"storage" mapstructure:"storage"`
	Server    ServerConfig  `yaml:"server" mapstructure:"server"`
	Log       LogConfig     `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	// MaxInput caps the array length the HTTP API accepts.
	MaxInput int `yaml:"max_input" mapstructure:"max_input"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

func DefaultConfig() *Config {
	return &Config{
		Algorithm: DefaultAlgorithm,
		Input:     DefaultInput,
		Speed:     DefaultSpeed,
		Theme:     DefaultTheme,
		DataDir:   DefaultDataDir,
		Storage:   DefaultStorage,
		Server:    ServerConfig{Addr: DefaultAddr, MaxInput: DefaultMaxInput},
		Log:       LogConfig{Level: DefaultLogLevel},
	}
}

// Load layers defaults, the YAML file at path, and ALGOVIZ_* environment
// variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("algorithm", d.Algorithm)
	v.SetDefault("input", d.Input)
	v.SetDefault("preset", d.Preset)
	v.SetDefault("speed", d.Speed)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("storage", d.Storage)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_input", d.Server.MaxInput)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := algo.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalid, c.Speed)
	}
	if c.Server.MaxInput <= 0 {
		return fmt.Errorf("%w: server.max_input must be positive, got %d", ErrInvalid, c.Server.MaxInput)
	}
	switch c.Storage {
	case "file", "sqlite":
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalid, c.Storage)
	}
	if c.Preset != "" {
		if _, ok := Presets[c.Preset]; !ok {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Preset)
		}
	}
	return nil
}

// Data returns the input array: the preset when one is named, otherwise the
// parsed Input string.
func (c *Config) Data() []int {
	if p, ok := GetPreset(c.Preset); ok {
		return p
	}
	return input.Parse(c.Input)
}

// ClampSpeed bounds d to the player's adjustable range.
func ClampSpeed(d time.Duration) time.Duration {
	return max(MinSpeed, min(MaxSpeed, d))
}
