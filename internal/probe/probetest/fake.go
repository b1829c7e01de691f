// Package probetest provides a probe.Runner test double that never spawns
// processes and records every call it receives.
package probetest

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ErrNotInstalled is returned for commands the Fake has no outcome for.
// probe.IsNotFound reports true for it.
var ErrNotInstalled = fmt.Errorf("fake: %w", exec.ErrNotFound)

// ErrFailed is the error returned for commands registered as failing.
var ErrFailed = errors.New("exit status 1")

// Call is one recorded Run invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Fake is a scripted probe.Runner.
// Commands registered with Succeed return nil, commands registered with Fail
// return ErrFailed, everything else returns ErrNotInstalled.
type Fake struct {
	mu       sync.Mutex
	outcomes map[string]error
	calls    []Call
}

// New creates a Fake where the given executables succeed.
func New(succeeding ...string) *Fake {
	f := &Fake{outcomes: make(map[string]error)}
	f.Succeed(succeeding...)
	return f
}

// Succeed marks executables as exiting 0.
func (f *Fake) Succeed(names ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.outcomes[n] = nil
	}
	return f
}

// Fail marks executables as present but exiting non-zero.
func (f *Fake) Fail(names ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.outcomes[n] = ErrFailed
	}
	return f
}

// Run implements probe.Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})

	if err := ctx.Err(); err != nil {
		return err
	}
	err, ok := f.outcomes[name]
	if !ok {
		return ErrNotInstalled
	}
	return err
}

// Calls returns a copy of the recorded calls in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Spawned returns the number of Run calls.
func (f *Fake) Spawned() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Names returns the executable of every recorded call in order.
func (f *Fake) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.calls))
	for i, c := range f.calls {
		names[i] = c.Name
	}
	return names
}
