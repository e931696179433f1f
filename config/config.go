// Package config loads the boot configuration: how much physical
// memory the kernel manages and which programs to spawn.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Program names one task to spawn at boot.
type Program struct {
	Name string `yaml:"name"`
	// Copies spawns the program more than once. Zero means one.
	Copies int `yaml:"copies,omitempty"`
}

// Config is the boot configuration.
type Config struct {
	// MemoryFrames is the physical frame budget shared by all tasks.
	MemoryFrames int `yaml:"memory_frames"`
	// HeapBase is the virtual address where each task's heap starts.
	// Zero selects the built-in default.
	HeapBase uint64 `yaml:"heap_base,omitempty"`
	// Programs are spawned in order at boot.
	Programs []Program `yaml:"programs"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MemoryFrames: 1024,
		Programs: []Program{
			{Name: "clock"},
			{Name: "spinner"},
			{Name: "pagehog"},
			{Name: "introspect"},
			{Name: "grower"},
		},
	}
}

// Parse decodes and validates a YAML configuration.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MemoryFrames <= 0 {
		return fmt.Errorf("memory_frames must be positive, got %d", c.MemoryFrames)
	}
	if len(c.Programs) == 0 {
		return fmt.Errorf("no programs configured")
	}
	for i, p := range c.Programs {
		if p.Name == "" {
			return fmt.Errorf("program %d: empty name", i)
		}
		if p.Copies < 0 {
			return fmt.Errorf("program %q: negative copies", p.Name)
		}
	}
	return nil
}
