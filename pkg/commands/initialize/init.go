// Package initialize implements the init command, which writes the starter
// pez.toml manifest.
package initialize

import (
	"os"

	"github.com/arthur-debert/pez/pkg/config"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/paths"
)

// InitConfigOptions defines the options for the InitConfig command.
type InitConfigOptions struct {
	// Paths resolves the config directory.
	Paths paths.Paths
	// Force replaces an existing manifest with the template.
	Force bool
}

// InitConfigResult reports where the manifest lives and whether this run
// created it.
type InitConfigResult struct {
	ConfigPath string
	Created    bool
}

// InitConfig writes the commented starter manifest. An existing manifest is
// left alone unless Force is set.
func InitConfig(opts InitConfigOptions) (*InitConfigResult, error) {
	log := logging.GetLogger("commands.init")
	path := opts.Paths.ConfigFilePath()

	if config.Exists(path) {
		if !opts.Force {
			log.Debug().Str("path", path).Msg("manifest already exists")
			return &InitConfigResult{ConfigPath: path}, nil
		}
		if err := os.Remove(path); err != nil {
			return nil, pezerrors.Wrapf(err, pezerrors.ErrConfigWrite,
				"failed to replace %s", path)
		}
	}

	if err := config.WriteInitTemplate(path); err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Msg("manifest created")
	return &InitConfigResult{ConfigPath: path, Created: true}, nil
}
