package osformula

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mateothegreat/osformula/config"
	"github.com/mateothegreat/osformula/scenario"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrSkip marks a check that does not apply to the scenario or platform.
	ErrSkip = errors.New("skipped")
	// ErrDependencyFailed marks a check not run because a dependency failed.
	ErrDependencyFailed = errors.New("dependency failed")
	// ErrPanic marks a check or hook that panicked.
	ErrPanic = errors.New("panic")
)

// Skipf returns an error wrapping ErrSkip with the given reason.
func Skipf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSkip, fmt.Sprintf(format, args...))
}

// TestContext is what a check sees: the scenario being run, the platform it
// is run for, the merged configuration and the run's store.
//
// TestContext implements assert.TestingT, so checks can be written with
// testify assertions. Failed assertions fail the check.
type TestContext struct {
	Ctx      context.Context
	Scenario scenario.Name
	Platform Platform
	Config   config.Config
	Store    *Store
	Logger   *zap.Logger

	check    string
	mu       sync.Mutex
	failures []string
}

// Check returns the ID of the check being run, if any.
func (c *TestContext) Check() string {
	return c.check
}

func (c *TestContext) Errorf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, fmt.Sprintf(format, args...))
}

// Failed reports whether an assertion failed.
func (c *TestContext) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.failures) > 0
}

// takeErr returns the failed assertions recorded so far and forgets them.
func (c *TestContext) takeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	for _, f := range c.failures {
		err = multierr.Append(err, errors.New(f))
	}
	c.failures = nil
	return err
}

// protect runs fn and turns a panic into an error wrapping ErrPanic.
func (c *TestContext) protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
			c.Logger.Error("recovered from panic", zap.Error(err), zap.Stack("stack"))
		}
	}()
	return fn()
}

// forCheck returns a context for one check. Checks of a level run
// concurrently, so each gets its own assertion record.
func (c *TestContext) forCheck(id string) *TestContext {
	return &TestContext{
		Ctx:      c.Ctx,
		Scenario: c.Scenario,
		Platform: c.Platform,
		Config:   c.Config,
		Store:    c.Store,
		Logger:   c.Logger.With(zap.String("check", id)),
		check:    id,
	}
}
