package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is decoded from every task file. All blocks are optional; a file
// may carry any subset and later files override earlier ones.
type fileRoot struct {
	Paths       *pathsBlock   `hcl:"paths,block"`
	PathsFile   *string       `hcl:"paths_file,optional"`
	ReplaceFile *string       `hcl:"replace_file,optional"`
	Replace     *replaceBlock `hcl:"replace,block"`
	HTML        *htmlBlock    `hcl:"html,block"`
	Lint        *lintBlock    `hcl:"lint,block"`
	Styles      *stylesBlock  `hcl:"styles,block"`
	Server      *serverBlock  `hcl:"server,block"`
	Watch       *watchBlock   `hcl:"watch,block"`
	Tasks       []*taskBlock  `hcl:"task,block"`
}

type pathsBlock struct {
	BuildRoot *string         `hcl:"build_root,optional"`
	Source    *categoryValues `hcl:"source,block"`
	Build     *categoryValues `hcl:"build,block"`
}

// categoryValues holds one optional string per asset category.
type categoryValues struct {
	Scripts *string `hcl:"scripts,optional"`
	Styles  *string `hcl:"styles,optional"`
	Images  *string `hcl:"images,optional"`
	HTML    *string `hcl:"html,optional"`
}

// replaceBlock keeps its body raw. Keys are arbitrary placeholder names, so
// they cannot be described by struct tags.
type replaceBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type htmlBlock struct {
	UnknownPlaceholder *string `hcl:"unknown_placeholder,optional"`
}

type lintBlock struct {
	StylesConfig   *string  `hcl:"styles_config,optional"`
	ScriptsExclude []string `hcl:"scripts_exclude,optional"`
}

type stylesBlock struct {
	IncludePaths []string `hcl:"include_paths,optional"`
	DartSass     *string  `hcl:"dart_sass,optional"`
	Timeout      *string  `hcl:"timeout,optional"`
}

type serverBlock struct {
	Host *string `hcl:"host,optional"`
	Port *int    `hcl:"port,optional"`
	Open *bool   `hcl:"open,optional"`
}

type watchBlock struct {
	Debounce *string         `hcl:"debounce,optional"`
	Globs    *categoryValues `hcl:"globs,block"`
}

type taskBlock struct {
	Name      string   `hcl:"name,label"`
	DependsOn []string `hcl:"depends_on,optional"`
}
