package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// Task defines one recurring task in the configuration file.
type Task struct {
	Name        string        `mapstructure:"name"`
	Kind        string        `mapstructure:"kind" default:"heartbeat"`
	StartDelay  time.Duration `mapstructure:"start_delay"`
	RepeatDelay time.Duration `mapstructure:"repeat_delay" default:"10s"`
}

type Database struct {
	Path string `mapstructure:"path" default:"periodic.db"`
}

// Configuration is the full configuration of the periodic binary.
type Configuration struct {
	LogLevel    string   `mapstructure:"log_level" default:"info"`
	LogFormat   string   `mapstructure:"log_format" default:"console"`
	Workers     int      `mapstructure:"workers" default:"4"`
	HistorySize int      `mapstructure:"history_size" default:"128"`
	Database    Database `mapstructure:"database"`
	Tasks       []Task   `mapstructure:"tasks"`
}

// Load reads the configuration from path (or, when path is empty, from
// ./periodic.yaml and PERIODIC_* environment variables) and fills in
// defaults for anything left unset.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	v.SetEnvPrefix("PERIODIC")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("periodic")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Configuration) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	for i, t := range c.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task %d has no name", i)
		}
		if t.StartDelay < 0 || t.RepeatDelay < 0 {
			return fmt.Errorf("task %q has a negative delay", t.Name)
		}
	}
	return nil
}
