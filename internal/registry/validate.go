package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
)

// ValidateRegistry checks that every prerequisite refers to a registered task
// and that no task lists itself.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, t := range r.All() {
		seen := make(map[string]struct{}, len(t.DependsOn))
		for _, dep := range t.DependsOn {
			depName := dep.String()
			if depName == t.Name.String() {
				errs = append(errs, fmt.Sprintf("task '%s' depends on itself", t.Name))
				continue
			}
			if _, dup := seen[depName]; dup {
				logger.Warn("Task lists the same prerequisite twice.", "task", t.Name.String(), "dependency", depName)
				continue
			}
			seen[depName] = struct{}{}
			if _, ok := r.tasks[depName]; !ok {
				errs = append(errs, fmt.Sprintf("task '%s' depends on unknown task '%s'", t.Name, depName))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
