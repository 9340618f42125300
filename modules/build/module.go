// Package build registers the aggregate `build` task.
package build

import (
	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers `build`, which fans out to every category build. The
// category builds have no ordering between them.
func (m *Module) Register(r *registry.Registry) {
	deps := make([]nodeid.Address, 0, len(config.Categories))
	for _, c := range config.Categories {
		deps = append(deps, nodeid.New("build", string(c)))
	}
	r.RegisterTask(&registry.RegisteredTask{
		Name:        nodeid.New("build", ""),
		Description: "Build every category.",
		DependsOn:   deps,
	})
}
