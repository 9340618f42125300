package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/tidwall/gjson"
)

// replaceFileRoot is the shape of the replacement table file. Any other
// top-level key is ignored.
type replaceFileRoot struct {
	Replace map[string]string `hcl:"replace,optional"`
	Remain  hcl.Body          `hcl:",remain"`
}

// LoadReplaceFile reads the `replace` object of a JSON document. The file
// is parsed with the JSON syntax of HCL so that diagnostics point at the
// offending line the same way task file errors do.
func LoadReplaceFile(path string) (ReplaceTable, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseJSONFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse replacement file %s: %w", path, diags)
	}

	var root replaceFileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode replacement file %s: %w", path, diags)
	}
	if root.Replace == nil {
		return ReplaceTable{}, nil
	}
	return ReplaceTable(root.Replace), nil
}

// PathsFile is the directory layout read from a package.json style document.
type PathsFile struct {
	BuildRoot string
	Sources   map[Category]string
	Builds    map[Category]string
}

// LoadPathsFile reads `paths.source.<category>`, `paths.build.<category>`
// and `paths.build.base` from a JSON document.
func LoadPathsFile(path string) (*PathsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read paths file %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("paths file %s is not valid JSON", path)
	}

	paths := gjson.GetBytes(data, "paths")
	if !paths.Exists() {
		return nil, fmt.Errorf("paths file %s has no 'paths' object", path)
	}

	pf := &PathsFile{
		BuildRoot: paths.Get("build.base").String(),
		Sources:   make(map[Category]string),
		Builds:    make(map[Category]string),
	}
	for _, c := range Categories {
		if v := paths.Get("source." + string(c)); v.Exists() {
			pf.Sources[c] = v.String()
		}
		if v := paths.Get("build." + string(c)); v.Exists() {
			pf.Builds[c] = v.String()
		}
	}
	return pf, nil
}
