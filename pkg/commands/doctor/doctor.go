// Package doctor implements the doctor command: a read-only health report
// over the manifest, the lockfile, and the directories pez writes to.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pez/pkg/config"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/reconcile"
	"github.com/arthur-debert/pez/pkg/types"
)

// Check statuses. Only error statuses flip the exit code; warnings are
// advice.
const (
	StatusOK    = "ok"
	StatusWarn  = "warn"
	StatusError = "error"
)

// Check is one line of the health report.
type Check struct {
	Name    string `json:"name" yaml:"name"`
	Status  string `json:"status" yaml:"status"`
	Details string `json:"details" yaml:"details"`
}

// DoctorOptions defines the options for the RunChecks command.
type DoctorOptions struct {
	// Paths resolves every directory the checks inspect.
	Paths paths.Paths
}

// DoctorResult carries the checks in presentation order.
type DoctorResult struct {
	Checks []Check
}

// HasError reports whether any check failed rather than warned.
func (r *DoctorResult) HasError() bool {
	for _, c := range r.Checks {
		if c.Status == StatusError {
			return true
		}
	}
	return false
}

// RunChecks inspects the environment and never mutates it. A broken
// manifest or lockfile degrades the related checks instead of aborting
// the report.
func RunChecks(opts DoctorOptions) (*DoctorResult, error) {
	log := logging.GetLogger("commands.doctor")
	log.Debug().Msg("starting doctor")

	result := &DoctorResult{}
	p := opts.Paths

	result.Checks = append(result.Checks, checkConfig(p))

	lock, lockCheck := checkLockFile(p)
	result.Checks = append(result.Checks, lockCheck)

	result.Checks = append(result.Checks, checkDir("fish_config_dir", p.FishConfigDir()))
	result.Checks = append(result.Checks, checkDir("pez_data_dir", p.DataDir()))

	// Activation lives in the config dir the running shell reads, which
	// an install redirect does not move.
	activate := checkActivateConfigured(p.RuntimeFishConfigDir())
	result.Checks = append(result.Checks, activate)
	result.Checks = append(result.Checks, checkEventHookReadiness(activate.Status == StatusOK))
	result.Checks = append(result.Checks, checkInstallLayout(p.FishConfigDir()))

	if lock != nil {
		result.Checks = append(result.Checks,
			checkRepos(lock, p),
			checkTargetFiles(lock, p.FishConfigDir()),
			checkDuplicates(lock, p.FishConfigDir()),
			checkThemeAssets(lock, p.FishConfigDir()),
		)
	}
	return result, nil
}

func checkConfig(p paths.Paths) Check {
	path := p.ConfigFilePath()
	if !config.Exists(path) {
		return Check{Name: "config", Status: StatusWarn, Details: "pez.toml not found"}
	}
	if _, err := config.Load(path); err != nil {
		return Check{Name: "config", Status: StatusError,
			Details: fmt.Sprintf("failed to load %s: %v", path, err)}
	}
	return Check{Name: "config", Status: StatusOK, Details: "found: " + path}
}

func checkLockFile(p paths.Paths) (*lockfile.LockFile, Check) {
	path := p.LockFilePath()
	if _, err := os.Stat(path); err != nil {
		return nil, Check{Name: "lock_file", Status: StatusWarn, Details: "pez-lock.toml not found"}
	}
	lock, err := lockfile.Load(path)
	if err != nil {
		return nil, Check{Name: "lock_file", Status: StatusError,
			Details: fmt.Sprintf("failed to load %s: %v", path, err)}
	}
	return lock, Check{Name: "lock_file", Status: StatusOK, Details: "found: " + path}
}

func checkDir(name, dir string) Check {
	status := StatusWarn
	if _, err := os.Stat(dir); err == nil {
		status = StatusOK
	}
	return Check{Name: name, Status: status, Details: dir}
}

func checkActivateConfigured(runtimeConfigDir string) Check {
	configFish := filepath.Join(runtimeConfigDir, "config.fish")
	data, err := os.ReadFile(configFish)
	if err != nil {
		return Check{Name: "activate_configured", Status: StatusWarn,
			Details: fmt.Sprintf("missing: %s (add `pez activate fish | source` for shell hooks)", configFish)}
	}
	if hasActivateLine(string(data)) {
		return Check{Name: "activate_configured", Status: StatusOK,
			Details: "found in " + configFish}
	}
	return Check{Name: "activate_configured", Status: StatusWarn,
		Details: fmt.Sprintf("not found in %s (add `pez activate fish | source`)", configFish)}
}

// hasActivateLine looks for an uncommented mention of the activate wrapper.
func hasActivateLine(contents string) bool {
	for _, line := range strings.Split(contents, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(trimmed, "pez activate fish") {
			return true
		}
	}
	return false
}

func checkEventHookReadiness(activationEnabled bool) Check {
	if activationEnabled {
		return Check{Name: "event_hook_readiness", Status: StatusOK,
			Details: "activate wrapper detected; conf.d events should run in the current shell"}
	}
	return Check{Name: "event_hook_readiness", Status: StatusWarn,
		Details: "activate wrapper not detected; run `pez activate fish | source`"}
}

func checkInstallLayout(fishConfigDir string) Check {
	var invalid, missing []string
	for _, dir := range []types.TargetDir{
		types.TargetFunctions, types.TargetCompletions, types.TargetConfD, types.TargetThemes,
	} {
		path := filepath.Join(fishConfigDir, string(dir))
		info, err := os.Stat(path)
		switch {
		case err != nil:
			missing = append(missing, string(dir))
		case !info.IsDir():
			invalid = append(invalid, path)
		}
	}

	if len(invalid) > 0 {
		return Check{Name: "install_layout", Status: StatusWarn,
			Details: "expected directories but found non-directories: " + strings.Join(invalid, ", ")}
	}
	if len(missing) > 0 {
		return Check{Name: "install_layout", Status: StatusOK,
			Details: "ready (missing dirs will be created on install: " + strings.Join(missing, ", ") + ")"}
	}
	return Check{Name: "install_layout", Status: StatusOK, Details: "target directories are present"}
}

func checkRepos(lock *lockfile.LockFile, p paths.Paths) Check {
	var missing []string
	for _, entry := range lock.Plugins {
		dir := reconcile.EntryRepoDir(entry, p)
		if dir == "" {
			missing = append(missing, entry.Repo)
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			missing = append(missing, entry.Repo)
		}
	}
	if len(missing) > 0 {
		return Check{Name: "repos", Status: StatusWarn,
			Details: "missing: " + strings.Join(missing, ", ")}
	}
	return Check{Name: "repos", Status: StatusOK, Details: "all cloned"}
}

func checkTargetFiles(lock *lockfile.LockFile, fishConfigDir string) Check {
	var missing []string
	for _, entry := range lock.Plugins {
		for _, record := range entry.Files {
			dest := record.Path(fishConfigDir)
			if _, err := os.Stat(dest); err != nil {
				missing = append(missing, dest)
			}
		}
	}
	if len(missing) > 0 {
		return Check{Name: "target_files", Status: StatusWarn,
			Details: "missing: " + strings.Join(missing, ", ")}
	}
	return Check{Name: "target_files", Status: StatusOK, Details: "all present"}
}

func checkDuplicates(lock *lockfile.LockFile, fishConfigDir string) Check {
	_, dupes := lock.DestPaths(fishConfigDir)
	if len(dupes) > 0 {
		return Check{Name: "duplicates", Status: StatusError,
			Details: "conflicting destinations: " + strings.Join(dupes, ", ")}
	}
	return Check{Name: "duplicates", Status: StatusOK, Details: "no conflicts"}
}

func checkThemeAssets(lock *lockfile.LockFile, fishConfigDir string) Check {
	var missing []string
	tracked := 0
	for _, entry := range lock.Plugins {
		for _, record := range entry.Files {
			if record.Dir != types.TargetThemes {
				continue
			}
			tracked++
			dest := record.Path(fishConfigDir)
			if _, err := os.Stat(dest); err != nil {
				missing = append(missing, dest)
			}
		}
	}
	if tracked == 0 {
		return Check{Name: "theme_assets", Status: StatusOK,
			Details: "no theme assets recorded in lock file"}
	}
	if len(missing) > 0 {
		return Check{Name: "theme_assets", Status: StatusWarn,
			Details: "missing: " + strings.Join(missing, ", ")}
	}
	return Check{Name: "theme_assets", Status: StatusOK, Details: "all theme assets are present"}
}
