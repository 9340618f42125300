package app

import (
	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/specialistvlad/sitegridgo/modules/build"
	"github.com/specialistvlad/sitegridgo/modules/clean"
	"github.com/specialistvlad/sitegridgo/modules/html"
	"github.com/specialistvlad/sitegridgo/modules/images"
	"github.com/specialistvlad/sitegridgo/modules/lint"
	"github.com/specialistvlad/sitegridgo/modules/scripts"
	"github.com/specialistvlad/sitegridgo/modules/serve"
	"github.com/specialistvlad/sitegridgo/modules/styles"
	"github.com/specialistvlad/sitegridgo/modules/watch"
)

// coreModules is the definitive list of all modules that are compiled into
// the sitegrid binary.
var coreModules = []registry.Module{
	&clean.Module{},
	&lint.Module{},
	&scripts.Module{},
	&styles.Module{},
	&html.Module{},
	&images.Module{},
	&build.Module{},
	&watch.Module{},
	&serve.Module{},
}
