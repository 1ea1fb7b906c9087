package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"example.com/rvlock/driver/uart"
)

const (
	ConsoleStdout     = "stdout"
	ConsoleMMIO       = "mmio"
	ConsoleNetconsole = "netconsole"

	DefaultMMIODevice = "/dev/mem"
)

type Config struct {
	Threads             []string `toml:"threads,omitempty"`
	Rounds              int      `toml:"rounds,omitempty"`
	Concurrent          bool     `toml:"concurrent,omitempty"`
	Console             string   `toml:"console,omitempty"`
	MMIODevice          string   `toml:"mmio_device,omitempty"`
	MMIOBase            int64    `toml:"mmio_base,omitempty"`
	NetconsoleLocal     string   `toml:"netconsole_local,omitempty"`
	NetconsoleRemote    string   `toml:"netconsole_remote,omitempty"`
	MetricsAddr         string   `toml:"metrics_address,omitempty"`
	HeartbeatIntervalMS int      `toml:"heartbeat_interval_ms,omitempty"`
}

// Default returns the configuration of the reference program: two threads,
// two rounds each, sequential, on standard output.
func Default() Config {
	return Config{
		Threads:    []string{"T1", "T2"},
		Rounds:     2,
		Console:    ConsoleStdout,
		MMIODevice: DefaultMMIODevice,
		MMIOBase:   uart.QEMUVirtBase,
	}
}

func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMS) * time.Millisecond
}

func (c Config) Validate() error {
	if len(c.Threads) == 0 {
		return errors.New("no threads configured")
	}
	seen := make(map[string]bool, len(c.Threads))
	for _, t := range c.Threads {
		if t == "" {
			return errors.New("empty thread label")
		}
		if seen[t] {
			return fmt.Errorf("duplicate thread label %q", t)
		}
		seen[t] = true
	}
	if c.Rounds < 0 {
		return fmt.Errorf("invalid number of rounds: %d", c.Rounds)
	}
	switch c.Console {
	case ConsoleStdout:
	case ConsoleMMIO:
		if c.MMIODevice == "" {
			return errors.New("mmio_device not specified in config")
		}
		if c.MMIOBase < 0 {
			return fmt.Errorf("invalid mmio_base: %#x", c.MMIOBase)
		}
	case ConsoleNetconsole:
		if c.NetconsoleRemote == "" {
			return errors.New("netconsole_remote not specified in config")
		}
	default:
		return fmt.Errorf("unknown console %q", c.Console)
	}
	if c.HeartbeatIntervalMS < 0 {
		return fmt.Errorf("invalid heartbeat interval: %d ms", c.HeartbeatIntervalMS)
	}
	return nil
}

// Decode parses raw TOML on top of the defaults. Unknown keys are rejected.
func Decode(raw []byte) (Config, error) {
	cfg := Default()
	err := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func Load(configFile string) (Config, error) {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return Decode(raw)
}
