package registry

import (
	"fmt"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
)

// PopulateFromModel registers the alias tasks declared in the task file. An
// alias may not replace a built-in task.
func (r *Registry) PopulateFromModel(model *config.Model) error {
	for _, t := range model.Tasks {
		name, err := nodeid.Parse(t.Name)
		if err != nil {
			return fmt.Errorf("task %q: %w", t.Name, err)
		}
		if _, exists := r.tasks[name.String()]; exists {
			return fmt.Errorf("task %q: a task with this name already exists", t.Name)
		}
		deps := make([]nodeid.Address, 0, len(t.DependsOn))
		for _, d := range t.DependsOn {
			dep, err := nodeid.Parse(d)
			if err != nil {
				return fmt.Errorf("task %q: depends_on: %w", t.Name, err)
			}
			deps = append(deps, dep)
		}
		r.RegisterTask(&RegisteredTask{
			Name:        name,
			Description: "Alias declared in the task file.",
			DependsOn:   deps,
		})
	}
	return nil
}
