package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrRunnerNotFound      = errors.New("runner not found")
	ErrRunnerAlreadyExists = errors.New("runner already registered")
)

// Runner executes a task's action when its condition fires. The action
// string is the runner-specific payload from the task definition.
type Runner interface {
	// Name returns the runner's registry name
	Name() string
	// Run executes the action and returns a short human-readable detail
	// about what happened
	Run(ctx context.Context, action string) (string, error)
}

// Registry manages all registered runners
type Registry struct {
	mu      sync.RWMutex
	runners map[string]Runner
}

// NewRegistry creates a new runner registry
func NewRegistry() *Registry {
	return &Registry{
		runners: make(map[string]Runner),
	}
}

// Register adds a runner to the registry
func (r *Registry) Register(runner Runner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := runner.Name()
	if _, exists := r.runners[name]; exists {
		return fmt.Errorf("%w: %s", ErrRunnerAlreadyExists, name)
	}

	r.runners[name] = runner
	return nil
}

// Get retrieves a runner by name
func (r *Registry) Get(name string) (Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runner, exists := r.runners[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRunnerNotFound, name)
	}

	return runner, nil
}

// List returns all registered runner names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	return names
}
