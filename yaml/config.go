// Package yaml loads pageport configuration files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"slices"

	"github.com/fwojciec/pageport"
	"gopkg.in/yaml.v3"
)

// Config is the optional configuration file. Every field is optional;
// command-line flags override file values.
type Config struct {
	Target   pageport.BuilderID     `yaml:"target,omitempty"`
	Database string                 `yaml:"database,omitempty"`
	Theme    pageport.ThemeMetadata `yaml:"theme,omitempty"`
	Budget   *pageport.Budget       `yaml:"budget,omitempty"`
	Embed    *pageport.EmbedOptions `yaml:"embed,omitempty"`
	Flags    Flags                  `yaml:"flags,omitempty"`
}

// Flags holds stage toggles. Unset toggles keep the default.
type Flags struct {
	EmbedAssets           *bool `yaml:"embed_assets,omitempty"`
	EliminateDependencies *bool `yaml:"eliminate_dependencies,omitempty"`
	ValidateBudget        *bool `yaml:"validate_budget,omitempty"`
	BudgetOverride        *bool `yaml:"budget_override,omitempty"`
	VerifyPluginFree      *bool `yaml:"verify_plugin_free,omitempty"`
}

// Apply returns base with every set toggle replaced.
func (f Flags) Apply(base pageport.ExportFlags) pageport.ExportFlags {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.EmbedAssets, f.EmbedAssets)
	set(&base.EliminateDependencies, f.EliminateDependencies)
	set(&base.ValidateBudget, f.ValidateBudget)
	set(&base.BudgetOverride, f.BudgetOverride)
	set(&base.VerifyPluginFree, f.VerifyPluginFree)
	return base
}

// Load reads the configuration file at path. Environment variables in the
// file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, pageport.Errorf(pageport.ENOTFOUND, "configuration file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, pageport.Errorf(pageport.EINVALID, "failed to parse config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an error if the configuration names an unknown builder or
// a negative limit.
func (c *Config) Validate() error {
	if c.Target != "" && !slices.Contains(pageport.BuilderIDs(), c.Target) {
		return pageport.Errorf(pageport.EINVALID, "unknown target builder %q", c.Target)
	}
	if b := c.Budget; b != nil {
		for _, v := range []int64{b.HTML, b.CSSFile, b.CSSTotal, b.JSFile, b.JSTotal, b.ImageFile, b.ImageTotal, b.Total} {
			if v < 0 {
				return pageport.Errorf(pageport.EINVALID, "budget limits must not be negative")
			}
		}
	}
	if e := c.Embed; e != nil && (e.InlineThreshold < 0 || e.ImageThreshold < 0) {
		return pageport.Errorf(pageport.EINVALID, "embed thresholds must not be negative")
	}
	return nil
}

// Init writes an example configuration file. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return pageport.Errorf(pageport.EINVALID, "configuration file already exists: %s (use --force to overwrite)", path)
	}

	budget := pageport.DefaultBudget()
	embed := pageport.DefaultEmbedOptions()
	override := false
	example := Config{
		Target: pageport.BuilderPluginFree,
		Theme: pageport.ThemeMetadata{
			Name:    "Exported Page",
			Author:  "${USER}",
			Version: "1.0.0",
		},
		Budget: &budget,
		Embed:  &embed,
		Flags:  Flags{BudgetOverride: &override},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
