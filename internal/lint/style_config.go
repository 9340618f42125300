package lint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleConfig is the configuration of one style rule. Options a rule does not
// use are ignored.
type RuleConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Severity Severity `yaml:"severity"`
	Width    int      `yaml:"width"`
	Style    string   `yaml:"style"`
	Max      int      `yaml:"max"`
}

// StyleConfig maps a rule name to its configuration.
type StyleConfig struct {
	Linters map[string]RuleConfig `yaml:"linters"`
}

// DefaultStyleConfig returns the rules used when no rule file exists.
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{Linters: map[string]RuleConfig{
		"TrailingWhitespace": {Enabled: true},
		"FinalNewline":       {Enabled: true},
		"Indentation":        {Enabled: true, Width: 2},
		"HexLength":          {Enabled: true, Style: "short"},
		"HexNotation":        {Enabled: true, Style: "lowercase"},
		"ZeroUnit":           {Enabled: true},
		"ImportantRule":      {Enabled: true},
		"EmptyRule":          {Enabled: true},
		"LineLength":         {Enabled: false, Max: 80},
	}}
}

// LoadStyleConfig reads a YAML rule file on top of the defaults. Rules
// absent from the file keep their default settings; a rule present in the
// file replaces its defaults, with unset options falling back to them. A
// missing file yields the defaults.
func LoadStyleConfig(path string) (*StyleConfig, error) {
	cfg := DefaultStyleConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read style lint config %s: %w", path, err)
	}

	var file struct {
		Linters map[string]yaml.Node `yaml:"linters"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse style lint config %s: %w", path, err)
	}

	for name, node := range file.Linters {
		rc, known := cfg.Linters[name]
		if !known {
			continue
		}
		if err := node.Decode(&rc); err != nil {
			return nil, fmt.Errorf("style lint config %s: rule %s: %w", path, name, err)
		}
		cfg.Linters[name] = rc
	}
	return cfg, nil
}

func (c *StyleConfig) rule(name string) (RuleConfig, bool) {
	rc, ok := c.Linters[name]
	if !ok || !rc.Enabled {
		return rc, false
	}
	if rc.Severity == "" {
		rc.Severity = SeverityWarning
	}
	return rc, true
}
