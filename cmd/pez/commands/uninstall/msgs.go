package uninstall

// Message constants
const (
	MsgShort = "Remove installed plugins"

	MsgLong = `Uninstall removes a plugin's copied files from the fish config
directory, deletes its clone from the data directory, and drops its
entries from pez-lock.toml and pez.toml. conf.d snippets get their
uninstall event emitted before the files disappear.

Plugins can be named by display name, repository shorthand, or source.`

	MsgExample = `  # Remove plugins by name
  pez uninstall hydro tide

  # Remove plugins listed on stdin, one per line
  printf 'hydro\ntide\n' | pez uninstall --stdin`

	MsgFlagForce = "Remove recorded files even when the clone directory is gone"
	MsgFlagStdin = "Read plugin names from stdin, one per line"
)
