package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/sitegridgo/internal/nodeid"
)

// Module is the interface that all task modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Action is the Go body of a task.
type Action func(ctx context.Context, env *Env) error

// RegisteredTask is a named unit of work with its ordered prerequisites.
type RegisteredTask struct {
	Name        nodeid.Address
	Description string
	DependsOn   []nodeid.Address
	// Fn may be nil for pure alias tasks that only aggregate prerequisites.
	Fn Action
	// Tolerant tasks still run once their prerequisites have settled, even
	// if some failed. The failure is still part of the run's result.
	Tolerant bool
}

// Registry holds every task known to a single application instance.
type Registry struct {
	tasks map[string]*RegisteredTask
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{tasks: make(map[string]*RegisteredTask)}
}

// RegisterTask adds a task. Registering the same name twice is a programming
// error and panics.
func (r *Registry) RegisterTask(t *RegisteredTask) {
	name := t.Name.String()
	if _, exists := r.tasks[name]; exists {
		panic(fmt.Sprintf("task with name '%s' already registered", name))
	}
	slog.Debug("Registering task.", "name", name, "depends_on", len(t.DependsOn))
	r.tasks[name] = t
}

// Task returns the task registered under name.
func (r *Registry) Task(name string) (*RegisteredTask, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// All returns every registered task ordered by name.
func (r *Registry) All() []*RegisteredTask {
	all := make([]*RegisteredTask, 0, len(r.tasks))
	for _, t := range r.tasks {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name.String() < all[j].Name.String()
	})
	return all
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.tasks)
}
