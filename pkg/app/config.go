package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"possim/pkg/catalog"
	"possim/pkg/httpapi"
	"possim/pkg/order"
)

// Config is the complete runtime configuration. Defaults come from
// DefaultConfig, then the TOML file, then command-line flags.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Terminal TerminalConfig `toml:"terminal"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Port int `toml:"port"`
	// Domain switches to HTTPS on :443 with an ephemeral certificate and an
	// HTTP redirect on :80.
	Domain string `toml:"domain"`
	// GRPCPort enables the gRPC health endpoint when non-zero.
	GRPCPort int `toml:"grpc_port"`
}

type TerminalConfig struct {
	Screen       string `toml:"screen"`
	Theme        string `toml:"theme"`
	Dataset      string `toml:"dataset"`
	BusinessName string `toml:"business_name"`
	Currency     string `toml:"currency"`
	JournalSize  int    `toml:"journal_size"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	settings := httpapi.DefaultSettings()
	return Config{
		Server: ServerConfig{Port: 8765},
		Terminal: TerminalConfig{
			Screen:       settings.Screen,
			Theme:        settings.Theme,
			Dataset:      catalog.DefaultDataset,
			BusinessName: settings.BusinessName,
			Currency:     settings.Currency,
			JournalSize:  order.DefaultJournalSize,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads path over the defaults. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting the simulator cannot run with.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d out of range", c.Server.GRPCPort)
	}
	switch c.Terminal.Screen {
	case httpapi.ScreenCompact, httpapi.ScreenWidescreen:
	default:
		return fmt.Errorf("terminal.screen must be %q or %q, got %q",
			httpapi.ScreenCompact, httpapi.ScreenWidescreen, c.Terminal.Screen)
	}
	switch c.Terminal.Theme {
	case httpapi.ThemeDark, httpapi.ThemeLight:
	default:
		return fmt.Errorf("terminal.theme must be %q or %q, got %q",
			httpapi.ThemeDark, httpapi.ThemeLight, c.Terminal.Theme)
	}
	if _, err := catalog.Load(c.Terminal.Dataset); err != nil {
		return fmt.Errorf("terminal.dataset %q: %w", c.Terminal.Dataset, err)
	}
	if c.Terminal.JournalSize < 0 {
		return errors.New("terminal.journal_size must not be negative")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// settings is the presentation part handed to the HTTP layer.
func (c Config) settings() httpapi.Settings {
	return httpapi.Settings{
		Screen:       c.Terminal.Screen,
		Theme:        c.Terminal.Theme,
		BusinessName: c.Terminal.BusinessName,
		Currency:     c.Terminal.Currency,
	}
}

// address converts the port configuration into a binding string.
func (c ServerConfig) address() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c ServerConfig) grpcAddress() string {
	return ":" + strconv.Itoa(c.GRPCPort)
}
