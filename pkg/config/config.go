// Package config reads and writes pez.toml, the declarative manifest of
// plugins the user wants installed, and exposes layered runtime settings.
//
// The manifest is strict: unknown keys are rejected so that typos like
// "verison" fail loudly instead of silently installing the default branch.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/types"
)

// FileName is the manifest file name inside the pez config directory.
const FileName = "pez.toml"

// InitTemplate is written by `pez init` when no manifest exists yet.
const InitTemplate = `# This file defines the plugins to be installed by pez.

# Example of a plugin:
# [[plugins]]
# repo = "owner/repo"    # The package identifier in the format <owner>/<repo>
# version = "v2"         # Optional: version, branch, tag or commit (pick one)

# Add more plugins below by copying the [[plugins]] block.
`

// PluginEntry is one [[plugins]] block. Exactly one of Repo, URL or Path
// must be set, and at most one of Version, Branch, Tag or Commit.
type PluginEntry struct {
	Name    string `toml:"name,omitempty"`
	Repo    string `toml:"repo,omitempty"`
	URL     string `toml:"url,omitempty"`
	Path    string `toml:"path,omitempty"`
	Version string `toml:"version,omitempty"`
	Branch  string `toml:"branch,omitempty"`
	Tag     string `toml:"tag,omitempty"`
	Commit  string `toml:"commit,omitempty"`
}

// Config is the parsed pez.toml document.
type Config struct {
	Plugins []PluginEntry `toml:"plugins,omitempty"`
}

// Default returns an empty manifest.
func Default() *Config {
	return &Config{}
}

// Exists reports whether a manifest file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load parses and validates the manifest at path.
func Load(path string) (*Config, error) {
	logger := log.With().Str("component", "config").Logger()
	logger.Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pezerrors.Wrapf(err, pezerrors.ErrConfigLoad,
				"no pez.toml found, run `pez init` first").WithDetail("path", path)
		}
		return nil, pezerrors.Wrapf(err, pezerrors.ErrConfigLoad,
			"failed to read %s", path).WithDetail("path", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		var pe *pezerrors.PezError
		if errors.As(err, &pe) {
			return nil, pe.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the manifest at path, or returns an empty one when the
// file does not exist yet. Used by `pez install <target>`, which is allowed
// to create the manifest as a side effect.
func LoadOrDefault(path string) (*Config, error) {
	if !Exists(path) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes a manifest document and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, pezerrors.Wrap(err, pezerrors.ErrConfigValidation,
				"pez.toml contains unknown fields").WithDetail("fields", strict.String())
		}
		return nil, pezerrors.Wrap(err, pezerrors.ErrConfigValidation, "pez.toml is not valid TOML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the manifest to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return pezerrors.Wrap(err, pezerrors.ErrConfigWrite, "failed to encode pez.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrConfigWrite,
			"failed to create config directory %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrConfigWrite, "failed to write %s", path).
			WithDetail("path", path)
	}
	log.Debug().Str("path", path).Int("plugins", len(cfg.Plugins)).Msg("manifest saved")
	return nil
}

// Validate checks every entry and rejects duplicate sources.
func (c *Config) Validate() error {
	seen := make(map[string]string, len(c.Plugins))
	for _, entry := range c.Plugins {
		spec, err := entry.Spec()
		if err != nil {
			return err
		}
		id := spec.SourceID()
		if prev, ok := seen[id]; ok {
			return pezerrors.Newf(pezerrors.ErrConfigValidation,
				"duplicate plugin source %q (declared as %q and %q)", id, prev, spec.DisplayName()).
				WithDetail("source", id)
		}
		seen[id] = spec.DisplayName()
	}
	return nil
}

// Specs converts every entry into its domain spec. The config must already
// be validated; a malformed entry is still reported rather than panicking.
func (c *Config) Specs() ([]types.PluginSpec, error) {
	specs := make([]types.PluginSpec, 0, len(c.Plugins))
	for _, entry := range c.Plugins {
		spec, err := entry.Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// FindBySource returns the index of the entry whose source identity matches
// id, or -1 when no entry declares it.
func (c *Config) FindBySource(id string) int {
	for i, entry := range c.Plugins {
		spec, err := entry.Spec()
		if err != nil {
			continue
		}
		if spec.SourceID() == id {
			return i
		}
	}
	return -1
}

// FindByName returns the index of the entry whose effective name matches, or
// -1. Name matching is how uninstall and upgrade accept bare plugin names.
func (c *Config) FindByName(name string) int {
	for i, entry := range c.Plugins {
		spec, err := entry.Spec()
		if err != nil {
			continue
		}
		if spec.DisplayName() == name || spec.Repo == name {
			return i
		}
	}
	return -1
}

// Add appends a spec as a new entry. The caller is responsible for having
// checked for duplicates first.
func (c *Config) Add(spec types.PluginSpec) {
	c.Plugins = append(c.Plugins, EntryFromSpec(spec))
}

// Remove deletes the entry at index i, preserving declaration order.
func (c *Config) Remove(i int) {
	if i < 0 || i >= len(c.Plugins) {
		return
	}
	c.Plugins = append(c.Plugins[:i], c.Plugins[i+1:]...)
}

// Spec converts the entry into a domain spec, enforcing the one-source and
// one-selector rules.
func (e PluginEntry) Spec() (types.PluginSpec, error) {
	var sources []string
	if e.Repo != "" {
		sources = append(sources, "repo")
	}
	if e.URL != "" {
		sources = append(sources, "url")
	}
	if e.Path != "" {
		sources = append(sources, "path")
	}
	if len(sources) == 0 {
		return types.PluginSpec{}, pezerrors.New(pezerrors.ErrConfigValidation,
			"plugin entry must set one of repo, url or path")
	}
	if len(sources) > 1 {
		return types.PluginSpec{}, pezerrors.Newf(pezerrors.ErrConfigValidation,
			"plugin entry sets %s; exactly one source is allowed", strings.Join(sources, " and "))
	}

	sel, err := e.selector()
	if err != nil {
		return types.PluginSpec{}, err
	}

	spec := types.PluginSpec{Name: e.Name, Selector: sel}
	switch {
	case e.Repo != "":
		spec.Kind = types.SourceRepo
		spec.Repo = e.Repo
	case e.URL != "":
		spec.Kind = types.SourceURL
		spec.URL = e.URL
	case e.Path != "":
		if sel != nil {
			return types.PluginSpec{}, pezerrors.Newf(pezerrors.ErrConfigValidation,
				"local path plugin %q cannot declare a %s selector", e.Path, sel.Kind)
		}
		spec.Kind = types.SourcePath
		spec.Path = e.Path
	}
	return spec, nil
}

func (e PluginEntry) selector() (*types.Selector, error) {
	var sels []types.Selector
	if e.Version != "" {
		sels = append(sels, types.Selector{Kind: types.SelectorVersion, Value: e.Version})
	}
	if e.Branch != "" {
		sels = append(sels, types.Selector{Kind: types.SelectorBranch, Value: e.Branch})
	}
	if e.Tag != "" {
		sels = append(sels, types.Selector{Kind: types.SelectorTag, Value: e.Tag})
	}
	if e.Commit != "" {
		sels = append(sels, types.Selector{Kind: types.SelectorCommit, Value: e.Commit})
	}
	switch len(sels) {
	case 0:
		return nil, nil
	case 1:
		sel := sels[0]
		if sel.Kind == types.SelectorVersion && strings.EqualFold(sel.Value, "latest") {
			return &types.Selector{Kind: types.SelectorLatest}, nil
		}
		return &sel, nil
	default:
		kinds := make([]string, len(sels))
		for i, s := range sels {
			kinds[i] = string(s.Kind)
		}
		return nil, pezerrors.Newf(pezerrors.ErrConfigValidation,
			"plugin entry sets %s; at most one selector is allowed", strings.Join(kinds, " and "))
	}
}

// EntryFromSpec converts a domain spec back into a manifest entry.
func EntryFromSpec(spec types.PluginSpec) PluginEntry {
	entry := PluginEntry{Name: spec.Name}
	switch spec.Kind {
	case types.SourceRepo:
		entry.Repo = spec.Repo
	case types.SourceURL:
		entry.URL = spec.URL
	case types.SourcePath:
		entry.Path = spec.Path
	}
	if spec.Selector != nil {
		switch spec.Selector.Kind {
		case types.SelectorLatest:
			entry.Version = "latest"
		case types.SelectorVersion:
			entry.Version = spec.Selector.Value
		case types.SelectorBranch:
			entry.Branch = spec.Selector.Value
		case types.SelectorTag:
			entry.Tag = spec.Selector.Value
		case types.SelectorCommit:
			entry.Commit = spec.Selector.Value
		}
	}
	return entry
}

// WriteInitTemplate creates a fresh commented manifest at path. It refuses
// to overwrite an existing file.
func WriteInitTemplate(path string) error {
	if Exists(path) {
		return pezerrors.Newf(pezerrors.ErrConfigWrite, "%s already exists", path).
			WithDetail("path", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrConfigWrite,
			"failed to create config directory %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(InitTemplate), 0644); err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrConfigWrite, "failed to write %s", path)
	}
	return nil
}
