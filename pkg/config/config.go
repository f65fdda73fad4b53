// Package config holds the YAML configuration of the host-side binaries
// (node simulator, coordinator daemon, console monitor). The node core
// itself takes plain values and never reads configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Node        NodeConfig        `yaml:"node"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Monitor     MonitorConfig     `yaml:"monitor"`
	Waveform    []WaveformStep    `yaml:"waveform"`
}

// NodeConfig configures the simulated node endpoint.
type NodeConfig struct {
	Address string   `yaml:"address"` // 6-byte transport address, colon-separated hex
	Listen  string   `yaml:"listen"`  // local UDP bind address
	Channel uint8    `yaml:"channel"` // emulated radio channel
	Seeds   []string `yaml:"seeds"`   // UDP addresses that hear broadcasts
}

// CoordinatorConfig configures the coordinator daemon.
type CoordinatorConfig struct {
	Address       string   `yaml:"address"`
	Listen        string   `yaml:"listen"`
	Channel       uint8    `yaml:"channel"`
	Seeds         []string `yaml:"seeds"`
	MetricsListen string   `yaml:"metrics_listen"` // HTTP bind address for /metrics
}

// MonitorConfig configures the serial console monitor.
type MonitorConfig struct {
	Port     string `yaml:"port"`      // serial port, e.g. /dev/ttyACM0
	BaudRate int    `yaml:"baud_rate"` // console baud rate
}

// WaveformStep schedules one level change of the simulated wake pin.
type WaveformStep struct {
	At    time.Duration `yaml:"at"`    // offset from simulation start
	Level uint8         `yaml:"level"` // 0 or 1
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			Address: "a4:cf:12:00:0b:01",
			Listen:  "127.0.0.1:0",
			Channel: 1,
			Seeds:   []string{"127.0.0.1:17522"},
		},
		Coordinator: CoordinatorConfig{
			Address:       "a4:cf:12:00:0b:02",
			Listen:        "127.0.0.1:17522",
			Channel:       1,
			MetricsListen: "127.0.0.1:9154",
		},
		Monitor: MonitorConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Waveform: []WaveformStep{
			{At: 2 * time.Second, Level: 1},
			{At: 10 * time.Second, Level: 0},
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Node.Address == "" {
		c.Node.Address = def.Node.Address
	}
	if c.Node.Listen == "" {
		c.Node.Listen = def.Node.Listen
	}
	if len(c.Node.Seeds) == 0 {
		c.Node.Seeds = def.Node.Seeds
	}

	if c.Coordinator.Address == "" {
		c.Coordinator.Address = def.Coordinator.Address
	}
	if c.Coordinator.Listen == "" {
		c.Coordinator.Listen = def.Coordinator.Listen
	}
	if c.Coordinator.MetricsListen == "" {
		c.Coordinator.MetricsListen = def.Coordinator.MetricsListen
	}

	if c.Monitor.Port == "" {
		c.Monitor.Port = def.Monitor.Port
	}
	if c.Monitor.BaudRate == 0 {
		c.Monitor.BaudRate = def.Monitor.BaudRate
	}
}
