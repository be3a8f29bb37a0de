// Package migrate implements the migrate command: it imports a fisher
// fish_plugins file into pez.toml entries. Plan-only by default; Apply
// writes the manifest. Installation stays a separate step.
package migrate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pez/pkg/config"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/target"
	"github.com/arthur-debert/pez/pkg/types"
)

// FisherFileName is fisher's plugin list inside the fish config dir.
const FisherFileName = "fish_plugins"

// fisherSelfRepo is fisher's own entry. It manages itself the way pez
// does, so importing it would install a second plugin manager.
const fisherSelfRepo = "jorgebucaran/fisher"

// MigratePluginsOptions defines the options for the MigratePlugins command.
type MigratePluginsOptions struct {
	// Paths resolves the fish config dir and the manifest location.
	Paths paths.Paths
	// File overrides the fish_plugins location.
	File string
	// Apply writes the planned entries to pez.toml instead of only
	// reporting them.
	Apply bool
}

// MigratePluginsResult carries the migration plan.
type MigratePluginsResult struct {
	// Planned are the specs that are missing from pez.toml.
	Planned []types.PluginSpec
	// Skipped are lines that did not parse as install targets.
	Skipped []string
	// ConfigPath is the manifest the plan targets.
	ConfigPath string
	// Applied reports whether the manifest was written.
	Applied bool
}

// MigratePlugins reads a fish_plugins file and plans pez.toml entries for
// every target not already declared. Comment and blank lines are ignored,
// fisher's own entry is dropped, and unparseable lines are reported
// rather than failing the whole import.
func MigratePlugins(opts MigratePluginsOptions) (*MigratePluginsResult, error) {
	log := logging.GetLogger("commands.migrate")

	path := opts.File
	if path == "" {
		path = filepath.Join(opts.Paths.FishConfigDir(), FisherFileName)
	}
	log.Debug().Str("file", path).Bool("apply", opts.Apply).Msg("starting migrate")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pezerrors.Wrapf(err, pezerrors.ErrFilesystem,
			"fish_plugins not found at %s", path).WithDetail("path", path)
	}

	cfg, err := config.LoadOrDefault(opts.Paths.ConfigFilePath())
	if err != nil {
		return nil, err
	}

	result := &MigratePluginsResult{ConfigPath: opts.Paths.ConfigFilePath()}
	seen := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		parsed, err := target.Parse(trimmed)
		if err != nil {
			log.Warn().Str("line", trimmed).Msg("skipping unrecognized fish_plugins entry")
			result.Skipped = append(result.Skipped, trimmed)
			continue
		}
		spec := parsed.Spec
		if spec.Kind == types.SourceRepo && spec.Repo == fisherSelfRepo {
			continue
		}
		if seen[spec.SourceID()] {
			continue
		}
		seen[spec.SourceID()] = true
		if cfg.FindBySource(spec.SourceID()) >= 0 {
			continue
		}
		result.Planned = append(result.Planned, spec)
	}

	if !opts.Apply || len(result.Planned) == 0 {
		return result, nil
	}

	for _, spec := range result.Planned {
		cfg.Add(spec)
	}
	if err := config.Save(result.ConfigPath, cfg); err != nil {
		return nil, err
	}
	result.Applied = true
	log.Info().Int("added", len(result.Planned)).Str("path", result.ConfigPath).Msg("manifest updated")
	return result, nil
}
