// Package config loads runtime settings from RTS_ prefixed environment variables
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lixenwraith/vi-rts/handler"
	"github.com/lixenwraith/vi-rts/scheduler"
	"github.com/lixenwraith/vi-rts/world"
)

// Prefix is prepended to every variable name
const Prefix = "RTS_"

// Save backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Config is the full runtime configuration
type Config struct {
	TickInterval     time.Duration `env:"TICK_INTERVAL" envDefault:"50ms"`
	CompactThreshold int           `env:"COMPACT_THRESHOLD" envDefault:"16"`
	Seed             uint64        `env:"SEED" envDefault:"1"`
	Debug            bool          `env:"DEBUG"`
	DirectorCooldown time.Duration `env:"DIRECTOR_COOLDOWN" envDefault:"2s"`

	World  WorldConfig  `envPrefix:"WORLD_"`
	Tuning TuningConfig `envPrefix:"TUNING_"`
	Save   SaveConfig   `envPrefix:"SAVE_"`
	Audio  AudioConfig  `envPrefix:"AUDIO_"`
}

// WorldConfig sizes the generated map
type WorldConfig struct {
	Width    int32 `env:"WIDTH" envDefault:"80"`
	Height   int32 `env:"HEIGHT" envDefault:"24"`
	Pawns    int   `env:"PAWNS" envDefault:"6"`
	Trees    int   `env:"TREES" envDefault:"20"`
	Mines    int   `env:"MINES" envDefault:"2"`
	Sheep    int   `env:"SHEEP" envDefault:"4"`
	PawnHP   int32 `env:"PAWN_HP" envDefault:"10"`
	SheepHP  int32 `env:"SHEEP_HP" envDefault:"4"`
	TreeWood int32 `env:"TREE_WOOD" envDefault:"3"`
	MineGold int32 `env:"MINE_GOLD" envDefault:"12"`
}

// TuningConfig mirrors handler.Tuning
type TuningConfig struct {
	WalkSpeed      int32         `env:"WALK_SPEED" envDefault:"1"`
	Reach          int32         `env:"REACH" envDefault:"1"`
	ChopInterval   time.Duration `env:"CHOP_INTERVAL" envDefault:"500ms"`
	WoodYield      int           `env:"WOOD_YIELD" envDefault:"2"`
	MineDuration   time.Duration `env:"MINE_DURATION" envDefault:"3s"`
	GoldYield      int32         `env:"GOLD_YIELD" envDefault:"3"`
	SpawnInterval  time.Duration `env:"SPAWN_INTERVAL" envDefault:"200ms"`
	SpawnRadius    int32         `env:"SPAWN_RADIUS" envDefault:"1"`
	AttackInterval time.Duration `env:"ATTACK_INTERVAL" envDefault:"400ms"`
	AttackDamage   int32         `env:"ATTACK_DAMAGE" envDefault:"1"`
	MeatYield      int           `env:"MEAT_YIELD" envDefault:"2"`
}

// SaveConfig selects where snapshots go
type SaveConfig struct {
	Backend  string        `env:"BACKEND" envDefault:"file"`
	Path     string        `env:"PATH" envDefault:"saves"`
	Slot     string        `env:"SLOT" envDefault:"autosave"`
	Interval time.Duration `env:"INTERVAL" envDefault:"30s"`
}

// AudioConfig controls the cue player
type AudioConfig struct {
	Enabled bool    `env:"ENABLED" envDefault:"true"`
	Volume  float64 `env:"VOLUME" envDefault:"-1"`
}

var (
	ErrTickInterval = errors.New("config: tick interval must be positive")
	ErrWorldSize    = errors.New("config: world dimensions must be positive")
	ErrBackend      = errors.New("config: unknown save backend")
)

// Load parses the process environment
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return ErrTickInterval
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return ErrWorldSize
	}
	switch c.Save.Backend {
	case BackendFile, BackendSQLite, BackendNone:
	default:
		return fmt.Errorf("%w: %q", ErrBackend, c.Save.Backend)
	}
	return nil
}

// HandlerTuning converts the tuning section for the handler registry
func (c Config) HandlerTuning() handler.Tuning {
	return handler.Tuning(c.Tuning)
}

// Layout converts the world section for map generation
func (c Config) Layout() world.Layout {
	return world.Layout(c.World)
}

// SchedulerOptions returns the scheduler options derived from c
func (c Config) SchedulerOptions() []scheduler.Option {
	return []scheduler.Option{scheduler.WithCompactThreshold(c.CompactThreshold)}
}
