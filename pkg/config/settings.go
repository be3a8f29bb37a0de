package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
)

// SettingsFileName is the optional operational settings file, distinct from
// the plugin manifest. Most users never create it.
const SettingsFileName = "settings.toml"

// DefaultJobs bounds concurrent clone/resolve work when nothing overrides it.
const DefaultJobs = 4

// Settings holds operational knobs that are not part of the manifest.
type Settings struct {
	// Jobs bounds concurrent clone+resolve work for CLI-target batches.
	Jobs int `koanf:"jobs"`
	// EmitEvents controls whether conf.d install/update/uninstall events
	// are emitted to fish after file changes.
	EmitEvents bool `koanf:"emit_events"`
}

// DefaultSettings returns the built-in settings values.
func DefaultSettings() Settings {
	return Settings{Jobs: DefaultJobs, EmitEvents: true}
}

// LoadSettings resolves settings by layering, lowest to highest precedence:
//
//  1. built-in defaults
//  2. settings.toml in the pez config dir, when present
//  3. PEZ_* environment variables (PEZ_JOBS, PEZ_EMIT_EVENTS)
//
// The result is clamped to sane values; a jobs count below 1 becomes 1.
func LoadSettings(configDir string) (Settings, error) {
	k := koanf.New(".")

	defaults := DefaultSettings()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"jobs":        defaults.Jobs,
		"emit_events": defaults.EmitEvents,
	}, "."), nil); err != nil {
		return defaults, pezerrors.Wrap(err, pezerrors.ErrInternal, "failed to load default settings")
	}

	settingsPath := filepath.Join(configDir, SettingsFileName)
	if _, err := os.Stat(settingsPath); err == nil {
		if err := k.Load(file.Provider(settingsPath), toml.Parser()); err != nil {
			return defaults, pezerrors.Wrapf(err, pezerrors.ErrConfigLoad,
				"failed to load %s", settingsPath).WithDetail("path", settingsPath)
		}
	}

	if err := k.Load(env.Provider("PEZ_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PEZ_"))
	}), nil); err != nil {
		return defaults, pezerrors.Wrap(err, pezerrors.ErrConfigLoad, "failed to load PEZ_* environment")
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return defaults, pezerrors.Wrap(err, pezerrors.ErrConfigLoad, "failed to decode settings")
	}

	if settings.Jobs < 1 {
		log.Debug().Int("jobs", settings.Jobs).Msg("clamping jobs to 1")
		settings.Jobs = 1
	}
	return settings, nil
}
