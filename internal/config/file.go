package config

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// File is the YAML config file layout.
type File struct {
	Volume       string   `yaml:"volume"`
	User         string   `yaml:"user"`
	Message      string   `yaml:"message"`
	Watch        []string `yaml:"watch"`
	Ignore       []string `yaml:"ignore"`
	Kinds        []string `yaml:"kinds"`
	Debounce     string   `yaml:"debounce"`
	MaxWait      string   `yaml:"max_wait"`
	PollInterval string   `yaml:"poll_interval"`
	Repeated     string   `yaml:"repeated"`
	LogLevel     string   `yaml:"log_level"`
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies file values into c for every setting not given on the command line.
// Roots and ignore patterns from the file are always added.
func (c *Config) Apply(f *File, flags *flag.FlagSet) error {
	set := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}
	str := func(name string, dst *string, v string) {
		if v != "" && !set(name) {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration, v string) error {
		if v == "" || set(name) {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
		*dst = d
		return nil
	}

	str("volume", &c.Volume, f.Volume)
	str("user", &c.User, f.User)
	str("message", &c.Message, f.Message)
	str("repeated", &c.Repeated, f.Repeated)
	str("log-level", &c.LogLevel, f.LogLevel)
	if len(f.Kinds) > 0 && !set("kinds") {
		c.Kinds = f.Kinds
	}
	if err := dur("debounce", &c.Debounce, f.Debounce); err != nil {
		return err
	}
	if err := dur("max-wait", &c.MaxWait, f.MaxWait); err != nil {
		return err
	}
	if err := dur("poll-interval", &c.PollInterval, f.PollInterval); err != nil {
		return err
	}

	c.Roots = append(c.Roots, f.Watch...)
	c.Ignore = append(append([]string{}, f.Ignore...), c.Ignore...)
	return nil
}
