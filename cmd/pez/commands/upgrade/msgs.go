package upgrade

// Message constants
const (
	MsgShort = "Upgrade installed plugins to their current selector targets"

	MsgLong = `Upgrade re-resolves each installed plugin's declared selector (or the
remote default branch when pez.toml pins nothing) and re-copies the files
of every plugin whose commit moved. Plugins already at the resolved commit
are reported as up to date and left alone. Local path plugins are skipped.`

	MsgExample = `  # Upgrade everything in the lockfile
  pez upgrade

  # Upgrade selected plugins only
  pez upgrade hydro tide`
)
