package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/caarlos0/env/v11"

	actionorc "github.com/materialcontext/glog2d6-api/internal/orchestrators/action"
	charorc "github.com/materialcontext/glog2d6-api/internal/orchestrators/character"
	equiporc "github.com/materialcontext/glog2d6-api/internal/orchestrators/equipment"
	"github.com/materialcontext/glog2d6-api/internal/pkg/clock"
	"github.com/materialcontext/glog2d6-api/internal/redis"
	characterrepo "github.com/materialcontext/glog2d6-api/internal/repositories/character"
	"github.com/materialcontext/glog2d6-api/internal/roller"
	"github.com/materialcontext/glog2d6-api/internal/rulebook"
)

// appConfig is read from the environment once per invocation.
type appConfig struct {
	RedisAddr string `env:"GLOG_REDIS_ADDR" envDefault:"localhost:6379"`
	// RulesLua optionally points at a Lua file of rule overrides.
	RulesLua string `env:"GLOG_RULES_LUA"`
	// PlayerID is the default player binding for import and list.
	PlayerID string `env:"GLOG_PLAYER_ID"`
	// UserID is sent with action requests for ownership checks.
	UserID   string `env:"GLOG_USER_ID"`
	Debug    bool   `env:"GLOG_DEBUG"`
	LogLevel string `env:"GLOG_LOG_LEVEL" envDefault:"warn"`
}

// app bundles the wired orchestrators for command handlers.
type app struct {
	cfg        appConfig
	bus        *events.Bus
	characters charorc.Service
	equipment  equiporc.Service
	actions    *actionorc.Orchestrator
}

func newApp() (*app, error) {
	cfg, err := env.ParseAs[appConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	setupLogging(cfg.LogLevel)

	client, err := redis.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	repo, err := characterrepo.NewRedis(&characterrepo.RedisConfig{
		Client: client,
		Clock:  clock.New(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create character repository: %w", err)
	}

	engine, err := rulebook.New(&rulebook.Config{LuaPath: cfg.RulesLua})
	if err != nil {
		return nil, fmt.Errorf("failed to load rule catalog: %w", err)
	}

	characters, err := charorc.NewOrchestrator(&charorc.Config{CharacterRepo: repo})
	if err != nil {
		return nil, err
	}

	equipment, err := equiporc.NewOrchestrator(&equiporc.Config{CharacterRepo: repo})
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	actions, err := actionorc.NewOrchestrator(&actionorc.Config{
		CharacterRepo: repo,
		Roller:        roller.NewDefault(),
		Rulebook:      engine,
		EventBus:      bus,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		bus:        bus,
		characters: characters,
		equipment:  equipment,
		actions:    actions,
	}, nil
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
