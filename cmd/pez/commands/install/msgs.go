package install

// Message constants
const (
	MsgShort = "Install plugins and record them in the lockfile"

	MsgLong = `Install clones each plugin repository into the pez data directory,
resolves the requested selector to a commit, and copies functions,
completions, conf.d snippets and themes into your fish config directory.
Every installed plugin is recorded in pez-lock.toml.

With explicit targets, the plugins are also added to pez.toml and the
clones run concurrently (bounded by --jobs). With no targets, everything
declared in pez.toml is installed sequentially, in declared order.`

	MsgExample = `  # Install everything declared in pez.toml
  pez install

  # Install plugins by repository shorthand, optionally pinned
  pez install jorgebucaran/hydro ilancosman/tide@v6

  # Install from a full URL or a local directory
  pez install https://gitlab.com/owner/plugin.git ~/code/my-plugin

  # Reinstall declared plugins and drop everything undeclared
  pez install --prune`

	MsgFlagForce = "Reclone existing repositories and overwrite existing files"
	MsgFlagPrune = "After a config install, remove plugins not declared in pez.toml"

	MsgUndeclaredHint = "not declared in pez.toml: %s (run `pez prune` to remove)\n"
)
