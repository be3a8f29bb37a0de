// Package materialize copies plugin assets from a clone into the fish
// config directory and removes them again on uninstall.
//
// Copying is all-or-nothing per plugin: every destination is checked
// against the batch's duplicate-destination set (and, in skip mode, the
// disk) before the first byte is written, and a failed copy rolls back the
// files already written for that plugin.
package materialize

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/types"
)

// Asset is one plugin file eligible for copying: the recognized directory
// it lives in and its path relative to that directory.
type Asset struct {
	Dir types.TargetDir
	Rel string
}

// DestPath returns the absolute destination under fishConfigDir.
func (a Asset) DestPath(fishConfigDir string) string {
	return filepath.Join(fishConfigDir, string(a.Dir), a.Rel)
}

// SourcePath returns the absolute source inside the plugin repository.
func (a Asset) SourcePath(repoPath string) string {
	return filepath.Join(repoPath, string(a.Dir), a.Rel)
}

// Record converts the asset to its lockfile representation.
func (a Asset) Record() lockfile.FileRecord {
	return lockfile.FileRecord{Dir: a.Dir, Name: a.Rel}
}

// Plan walks the recognized directories of a plugin repository and returns
// the assets that would be copied: .fish files under functions/,
// completions/ and conf.d/, and .theme files under themes/. Nested paths
// are preserved. Anything else is ignored.
func Plan(repoPath string) ([]Asset, error) {
	var assets []Asset
	for _, dir := range types.AllTargetDirs() {
		root := filepath.Join(repoPath, string(dir))
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if filepath.Ext(d.Name()) != dir.Extension() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			assets = append(assets, Asset{Dir: dir, Rel: rel})
			return nil
		})
		if err != nil {
			return nil, pezerrors.Wrapf(err, pezerrors.ErrFilesystem,
				"failed to scan %s", root)
		}
	}
	return assets, nil
}

// CopyRequest is one plugin's copy work.
type CopyRequest struct {
	// PluginName is used for conflict messages and set ownership.
	PluginName string

	// RepoPath is the clone (or local path) the assets are read from.
	RepoPath string

	// Assets is the output of Plan.
	Assets []Asset

	// FailOnExisting makes an unmanaged pre-existing file at a
	// destination a conflict. Force installs clear it.
	FailOnExisting bool
}

// Copy materializes one plugin's assets into fishConfigDir. Every
// destination is checked first, so a conflict leaves nothing behind; an
// I/O failure mid-copy rolls the plugin's files back.
//
// The recognized target directories are created even when the plugin has
// nothing to copy into them.
func Copy(fishConfigDir string, req CopyRequest, set *DestinationSet) ([]lockfile.FileRecord, error) {
	logger := log.With().Str("component", "materialize").Str("plugin", req.PluginName).Logger()

	for _, dir := range types.AllTargetDirs() {
		if err := os.MkdirAll(filepath.Join(fishConfigDir, string(dir)), 0755); err != nil {
			return nil, pezerrors.Wrapf(err, pezerrors.ErrFilesystem,
				"failed to create %s", filepath.Join(fishConfigDir, string(dir)))
		}
	}

	for _, asset := range req.Assets {
		dest := asset.DestPath(fishConfigDir)
		if owner, ok := set.Owner(dest); ok {
			return nil, pezerrors.Newf(pezerrors.ErrDuplicateDestination,
				"%s already installs %s; skipping all files of %s",
				owner, dest, req.PluginName).
				WithDetail("path", dest).
				WithDetail("owner", owner)
		}
		if req.FailOnExisting {
			if _, err := os.Lstat(dest); err == nil {
				return nil, pezerrors.Newf(pezerrors.ErrDuplicateDestination,
					"%s already exists; use --force to overwrite", dest).
					WithDetail("path", dest)
			}
		}
	}

	var copied []string
	rollback := func() {
		for _, path := range copied {
			_ = os.Remove(path)
		}
	}

	records := make([]lockfile.FileRecord, 0, len(req.Assets))
	for _, asset := range req.Assets {
		dest := asset.DestPath(fishConfigDir)
		if err := copyFile(asset.SourcePath(req.RepoPath), dest); err != nil {
			rollback()
			return nil, pezerrors.Wrapf(err, pezerrors.ErrFilesystem,
				"failed to copy %s", asset.Rel).WithDetail("plugin", req.PluginName)
		}
		copied = append(copied, dest)
		records = append(records, asset.Record())
		logger.Trace().Str("dest", dest).Msg("copied")
	}

	for _, record := range records {
		set.Add(req.PluginName, record.Path(fishConfigDir))
	}
	logger.Debug().Int("files", len(records)).Msg("plugin files copied")
	return records, nil
}

// Remove deletes previously recorded files. Missing files are not an
// error; uninstall keeps going after a user already deleted something by
// hand.
func Remove(fishConfigDir string, files []lockfile.FileRecord) error {
	for _, record := range files {
		path := record.Path(fishConfigDir)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return pezerrors.Wrapf(err, pezerrors.ErrFilesystem,
				"failed to remove %s", path)
		}
		log.Trace().Str("path", path).Msg("removed")
	}
	return nil
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
