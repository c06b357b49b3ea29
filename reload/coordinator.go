package reload

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/modelview/internal/logging"
)

// ErrNoDrainer is returned when a coordinator has nothing to drain the GPU with.
var ErrNoDrainer = errors.New("reload: coordinator has no drainer")

// System is a participant in reloads. LoadStep and UnloadStep are called
// once per step of the reload. Systems return nil for steps they do not own.
type System interface {
	LoadStep(s Step, t Type) error
	UnloadStep(s Step, t Type) error
}

// Drainer blocks until the GPU has finished all submitted work.
type Drainer interface {
	WaitIdle() error
}

// Coordinator runs reloads across an ordered set of systems.
//
// Steps run in LoadSteps/UnloadSteps order. Within one step, systems load
// in registration order and unload in reverse registration order. Any
// failure aborts the reload; nothing is rolled back.
//
// Load, Unload, Reload and Flush must be called from the frame loop
// goroutine. Request may be called from any goroutine.
type Coordinator struct {
	drainer Drainer
	systems []System

	mu      sync.Mutex
	pending Type
}

// NewCoordinator creates a coordinator that drains through d.
func NewCoordinator(d Drainer, systems ...System) *Coordinator {
	return &Coordinator{
		drainer: d,
		systems: append([]System(nil), systems...),
	}
}

// Register appends a system. Registration order is load order.
func (c *Coordinator) Register(s System) {
	c.systems = append(c.systems, s)
}

// Load runs every load step of t.
func (c *Coordinator) Load(t Type) error {
	for _, step := range LoadSteps(t) {
		for _, s := range c.systems {
			if err := s.LoadStep(step, t); err != nil {
				return fmt.Errorf("reload: load %v (%v): %w", step, t, err)
			}
		}
		logging.L().Debug("reload: step loaded", "step", step, "type", t)
	}
	return nil
}

// Unload drains the GPU and then runs every unload step of t.
func (c *Coordinator) Unload(t Type) error {
	if c.drainer == nil {
		return ErrNoDrainer
	}
	if err := c.drainer.WaitIdle(); err != nil {
		return fmt.Errorf("reload: drain: %w", err)
	}
	for _, step := range UnloadSteps(t) {
		for i := len(c.systems) - 1; i >= 0; i-- {
			if err := c.systems[i].UnloadStep(step, t); err != nil {
				return fmt.Errorf("reload: unload %v (%v): %w", step, t, err)
			}
		}
		logging.L().Debug("reload: step unloaded", "step", step, "type", t)
	}
	return nil
}

// Reload tears down and rebuilds the tiers named by t.
func (c *Coordinator) Reload(t Type) error {
	if err := c.Unload(t); err != nil {
		return err
	}
	if err := c.Load(t); err != nil {
		return err
	}
	logging.L().Info("reload: applied", "type", t)
	return nil
}

// Request records a reload to be applied by the next Flush.
func (c *Coordinator) Request(t Type) {
	c.mu.Lock()
	c.pending |= t
	c.mu.Unlock()
}

// Pending returns the requests not yet flushed.
func (c *Coordinator) Pending() Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Flush applies and clears pending requests. It reports the type applied.
func (c *Coordinator) Flush() (Type, error) {
	c.mu.Lock()
	t := c.pending
	c.pending = None
	c.mu.Unlock()

	if !t.Any() {
		return None, nil
	}
	return t, c.Reload(t)
}
