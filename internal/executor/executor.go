// Package executor runs resolved test steps against a per-scenario execution
// context (the world).
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tomatool/gherkinplan/internal/plan"
	"github.com/tomatool/gherkinplan/internal/stepdef"
)

// Configuration errors.
var (
	ErrNotSetUp       = errors.New("executor is not set up: call SetUp before Run")
	ErrInvalidStep    = errors.New("invalid test step")
	ErrInvalidFactory = errors.New("world factory must not be nil")
)

// Factory creates the world shared by the steps of one scenario.
type Factory func(ctx context.Context) (any, error)

// Closer is implemented by worlds holding resources that must be released
// once steps have run against them.
type Closer interface {
	Close(ctx context.Context) error
}

// Executor runs test steps. It is not safe for concurrent use: steps of a
// scenario run one at a time, in plan order, driven by the caller.
type Executor struct {
	newWorld Factory
	world    any
	active   bool
	dirty    bool
}

// New creates an executor creating worlds with factory.
func New(factory Factory) (*Executor, error) {
	if factory == nil {
		return nil, ErrInvalidFactory
	}
	return &Executor{newWorld: factory}, nil
}

// SetUp creates a fresh world. A world left over from a previous SetUp is
// torn down first.
func (e *Executor) SetUp(ctx context.Context) error {
	if e.active {
		if err := e.TearDown(ctx); err != nil {
			return err
		}
	}

	w, err := e.newWorld(ctx)
	if err != nil {
		return fmt.Errorf("creating world: %w", err)
	}

	e.world = w
	e.active = true
	e.dirty = false
	log.Debug().Msg("executor set up")
	return nil
}

// TearDown closes the world if at least one step ran against it, then
// discards it. Calling TearDown without an active world does nothing.
func (e *Executor) TearDown(ctx context.Context) error {
	if !e.active {
		return nil
	}

	w, dirty := e.world, e.dirty
	e.world = nil
	e.active = false
	e.dirty = false

	if !dirty {
		log.Debug().Msg("executor torn down, no steps ran")
		return nil
	}

	if c, ok := w.(Closer); ok {
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("closing world: %w", err)
		}
	}
	log.Debug().Msg("executor torn down, world closed")
	return nil
}

// Run executes step against the current world and reports whether it ran.
// Skipped steps do nothing and report false. The error of a failing handler
// is returned with ran set to true. A step whose parameters did not convert
// fails without running.
func (e *Executor) Run(ctx context.Context, step *plan.TestStep) (bool, error) {
	if !e.active {
		return false, ErrNotSetUp
	}
	if step == nil {
		return false, fmt.Errorf("%w: step is nil", ErrInvalidStep)
	}
	if step.Skip {
		return false, nil
	}
	if step.Handler == nil {
		return false, fmt.Errorf("%w: %q has no handler", ErrInvalidStep, step.Text)
	}
	if step.Err != nil {
		return false, fmt.Errorf("step %q: %w", step.Text, step.Err)
	}

	wasDirty := e.dirty
	e.dirty = true
	log.Debug().Str("step", step.Text).Msg("running step")

	if err := stepdef.Invoke(ctx, step.Handler, e.world, step.Parameters); err != nil {
		if errors.Is(err, stepdef.ErrInvalidHandler) || errors.Is(err, stepdef.ErrWorldMismatch) {
			e.dirty = wasDirty
			return false, fmt.Errorf("%w: %q: %w", ErrInvalidStep, step.Text, err)
		}
		return true, fmt.Errorf("step %q: %w", step.Text, err)
	}
	return true, nil
}

// Scenario sets up a world, calls fn and always tears the world down, also
// when fn fails. The first error wins.
func (e *Executor) Scenario(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := e.SetUp(ctx); err != nil {
		return err
	}
	defer func() {
		if tdErr := e.TearDown(ctx); tdErr != nil && err == nil {
			err = tdErr
		}
	}()

	return fn(ctx)
}

// World returns the current world, or nil outside SetUp/TearDown.
func (e *Executor) World() any {
	return e.world
}
