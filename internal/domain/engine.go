package domain

import (
	"fmt"
	"time"

	"gooze.dev/pkg/oracles/internal/adapter"
	"gooze.dev/pkg/oracles/internal/execution"
	"gooze.dev/pkg/oracles/internal/observe"
)

// EngineConfig holds everything needed to build a suite's generator.
type EngineConfig struct {
	Generation       Config
	Observers        observe.Config
	ExecutionTimeout time.Duration
}

// Engine prepares a generator for each suite of a session.
type Engine interface {
	Prepare(suite Suite) (Generator, error)
}

type engine struct {
	cfg EngineConfig
}

// NewEngine creates an Engine running tests in-process.
func NewEngine(cfg EngineConfig) Engine {
	return &engine{cfg: cfg}
}

func (e *engine) Prepare(suite Suite) (Generator, error) {
	catalogue, err := adapter.NewMutantCatalogue(suite.Mutants...)
	if err != nil {
		return nil, fmt.Errorf("failed to load mutants of suite %q: %w", suite.Name, err)
	}

	sw := suite.Switch
	if sw == nil {
		sw = execution.NewSwitch()
	}

	executor := execution.New(sw,
		execution.WithTimeout(e.cfg.ExecutionTimeout),
		execution.WithTolerance(e.cfg.Observers.Tolerance),
	)
	executor.Register(observe.NewAll(e.cfg.Observers)...)

	return NewGenerator(executor, catalogue, e.cfg.Generation), nil
}
