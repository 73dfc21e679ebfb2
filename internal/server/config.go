package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"Moongates/internal/game"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Moongate    MoongateConfig    `toml:"moongate"`
	Clock       ClockConfig       `toml:"clock"`
	Persistence PersistenceConfig `toml:"persistence"`
	Scripting   ScriptingConfig   `toml:"scripting"`
	Data        DataConfig        `toml:"data"`
	Logging     LoggingConfig     `toml:"logging"`
}

type ServerConfig struct {
	Addr       string        `toml:"addr"`
	TickRate   time.Duration `toml:"tick_rate"`
	SendRate   time.Duration `toml:"send_rate"`
	AdminToken string        `toml:"admin_token"` // empty disables the admin endpoint
	// DebugProfiles lets websocket clients set their own character profile,
	// access level included. Never enable it on a public server.
	DebugProfiles bool `toml:"debug_profiles"`
}

type MoongateConfig struct {
	TickInterval     time.Duration `toml:"tick_interval"`
	ConfirmDelay     time.Duration `toml:"confirm_delay"`
	ControllerWarmup time.Duration `toml:"controller_warmup"`
	OpenThreshold    time.Duration `toml:"open_threshold"`
	SafetyMargin     time.Duration `toml:"safety_margin"`
	MinRearm         time.Duration `toml:"min_rearm"`
	MurderThreshold  int           `toml:"murder_threshold"`
	// RestoreOpenEndedGates keeps gates without an open duration across restarts.
	RestoreOpenEndedGates bool `toml:"restore_open_ended_gates"`
}

type ClockConfig struct {
	SecondsPerMinute float64   `toml:"seconds_per_minute"`
	Epoch            time.Time `toml:"epoch"`
}

type PersistenceConfig struct {
	Path         string        `toml:"path"`
	SaveInterval time.Duration `toml:"save_interval"` // 0 saves only on shutdown
}

type ScriptingConfig struct {
	HookPath string `toml:"hook_path"`
	Watch    bool   `toml:"watch"`
}

type DataConfig struct {
	TablePath string `toml:"table_path"` // empty uses the built-in table
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":8080",
			TickRate: 50 * time.Millisecond,
			SendRate: 100 * time.Millisecond,
		},
		Moongate: MoongateConfig{
			TickInterval:     game.TickInterval,
			ConfirmDelay:     game.ConfirmDelay,
			ControllerWarmup: game.ControllerWarmup,
			OpenThreshold:    game.OpenThreshold,
			SafetyMargin:     game.SafetyMargin,
			MinRearm:         game.MinRearm,
			MurderThreshold:  game.MurderThreshold,
		},
		Clock: ClockConfig{
			SecondsPerMinute: 5,
			Epoch:            time.Date(1997, time.September, 24, 0, 0, 0, 0, time.UTC),
		},
		Persistence: PersistenceConfig{
			Path:         "saves/moongates.bin",
			SaveInterval: 5 * time.Minute,
		},
		Scripting: ScriptingConfig{Watch: true},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultConfig is the configuration used when no file is given.
func DefaultConfig() *Config { return defaults() }

// LoadConfig reads a TOML file over the defaults. A missing file at path
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", cleanPath, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// Timing converts the moongate section for the shard.
func (c MoongateConfig) Timing() game.Timing {
	return game.Timing{
		Tick:             c.TickInterval,
		ConfirmDelay:     c.ConfirmDelay,
		ControllerWarmup: c.ControllerWarmup,
		OpenThreshold:    c.OpenThreshold,
		SafetyMargin:     c.SafetyMargin,
		MinRearm:         c.MinRearm,
		MurderThreshold:  c.MurderThreshold,
	}
}
