package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/clock"
	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/random"
	"github.com/tcgconnect/tcgconnect-go/internal/registry"
	"github.com/tcgconnect/tcgconnect-go/internal/relay"
	"github.com/tcgconnect/tcgconnect-go/internal/rules"
	"github.com/tcgconnect/tcgconnect-go/internal/ws"
)

// App contains all wired application components
type App struct {
	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Core
	Registry *registry.Registry
	Hub      *ws.Hub
	Relay    relay.Relay
	WS       *ws.Server
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// ReapGrace overrides the empty-session grace window (0 = default)
	ReapGrace time.Duration
	// RedisConfig enables the Redis inter-server relay when non-nil
	RedisConfig *relay.Config
	// Validator overrides the rule-validation extension point
	// (defaults to the no-op validator)
	Validator rules.Validator
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var rly relay.Relay = relay.NewNop()
	if cfg.RedisConfig != nil {
		redisRelay, err := relay.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		rly = redisRelay
	}

	validator := cfg.Validator
	if validator == nil {
		validator = rules.NewNop()
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(clk, rnd, validator, rly, cfg.ReapGrace, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	clk clock.Clock,
	rnd random.Random,
	validator rules.Validator,
	rly relay.Relay,
	reapGrace time.Duration,
	logger *slog.Logger,
) *App {
	hub := ws.NewHub(logger)

	var broadcaster registry.Broadcaster = hub
	if _, isNop := rly.(*relay.Nop); !isNop {
		broadcaster = relay.NewFanout(hub, rly, logger)
	}

	reg := registry.New(broadcaster, validator, clk, rnd, registry.Config{ReapGrace: reapGrace}, logger)
	wsServer := ws.NewServer(hub, reg, rnd, logger)

	return &App{
		Clock:    clk,
		Random:   rnd,
		Registry: reg,
		Hub:      hub,
		Relay:    rly,
		WS:       wsServer,
	}
}
