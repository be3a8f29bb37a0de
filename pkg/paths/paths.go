// Package paths provides centralized path handling for pez.
// All directory resolution happens once at process start with a documented
// precedence chain, so environment changes mid-run cannot split one
// invocation across two directory layouts.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/pez/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides where pez.toml and pez-lock.toml live
	EnvConfigDir = "PEZ_CONFIG_DIR"

	// EnvDataDir overrides where plugin repositories are cloned
	EnvDataDir = "PEZ_DATA_DIR"

	// EnvTargetDir overrides where plugin files are copied
	EnvTargetDir = "PEZ_TARGET_DIR"

	// EnvFishConfigDir is fish's own config dir variable, set by fish itself
	EnvFishConfigDir = "__fish_config_dir"

	// EnvFishUserDataDir is fish's own data dir variable, set by fish itself
	EnvFishUserDataDir = "__fish_user_data_dir"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default file names
const (
	// ConfigFileName is the declared plugin configuration file
	ConfigFileName = "pez.toml"

	// LockFileName is the machine-owned lockfile
	LockFileName = "pez-lock.toml"

	// PezDirName is the directory name for pez data under the fish data dir
	PezDirName = "pez"
)

// Paths provides centralized path management for pez
type Paths interface {
	// FishConfigDir is the root the materializer copies into
	// (functions/, completions/, conf.d/, themes/ live beneath it).
	FishConfigDir() string

	// RuntimeFishConfigDir is the config dir the user's running fish
	// actually reads. PEZ_TARGET_DIR redirects installs but not the
	// shell itself, so activation checks look here.
	RuntimeFishConfigDir() string

	// ConfigDir holds pez.toml and pez-lock.toml.
	ConfigDir() string

	// DataDir is the root under which plugin repositories are cloned.
	DataDir() string

	ConfigFilePath() string
	LockFilePath() string

	// RepoDir returns the clone directory for a canonical repo identity.
	// github.com repos sit directly under DataDir as owner/repo; other
	// hosts are namespaced by host to avoid collisions.
	RepoDir(host, owner, repo string) string

	NormalizePath(path string) (string, error)
}

type paths struct {
	fishConfigDir    string
	runtimeConfigDir string
	configDir        string
	dataDir          string
}

// New resolves all pez directories from the environment.
// Precedence, resolved once:
//
//	fish config dir: PEZ_TARGET_DIR > __fish_config_dir > $XDG_CONFIG_HOME/fish > ~/.config/fish
//	pez config dir:  PEZ_CONFIG_DIR > fish config dir
//	pez data dir:    PEZ_DATA_DIR > __fish_user_data_dir/pez > $XDG_DATA_HOME/fish/pez > ~/.local/share/fish/pez
func New() (Paths, error) {
	p := &paths{}

	defaultFishConfig := defaultFishConfigDir()
	p.runtimeConfigDir = defaultFishConfig

	if dir := os.Getenv(EnvTargetDir); dir != "" {
		p.fishConfigDir = expandHome(dir)
	} else {
		p.fishConfigDir = defaultFishConfig
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = expandHome(dir)
	} else {
		p.configDir = defaultFishConfig
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		p.dataDir = expandHome(dir)
	} else if dir := os.Getenv(EnvFishUserDataDir); dir != "" {
		p.dataDir = filepath.Join(expandHome(dir), PezDirName)
	} else {
		p.dataDir = filepath.Join(xdg.DataHome, "fish", PezDirName)
	}

	for _, dir := range []*string{&p.fishConfigDir, &p.runtimeConfigDir, &p.configDir, &p.dataDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to resolve absolute path for %s", *dir)
		}
		*dir = abs
	}

	return p, nil
}

// defaultFishConfigDir mirrors fish's own resolution of its config dir.
func defaultFishConfigDir() string {
	if dir := os.Getenv(EnvFishConfigDir); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, "fish")
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

func (p *paths) FishConfigDir() string {
	return p.fishConfigDir
}

func (p *paths) RuntimeFishConfigDir() string {
	return p.runtimeConfigDir
}

func (p *paths) ConfigDir() string {
	return p.configDir
}

func (p *paths) DataDir() string {
	return p.dataDir
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

func (p *paths) LockFilePath() string {
	return filepath.Join(p.configDir, LockFileName)
}

func (p *paths) RepoDir(host, owner, repo string) string {
	if host == "" || host == "github.com" {
		return filepath.Join(p.dataDir, owner, repo)
	}
	return filepath.Join(p.dataDir, host, owner, repo)
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func (p *paths) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	expanded := expandHome(path)

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFilesystem, "failed to get absolute path")
	}

	return filepath.Clean(abs), nil
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}
