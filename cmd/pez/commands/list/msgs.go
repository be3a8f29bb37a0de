package list

// Message constants
const (
	MsgShort = "List installed plugins"

	MsgLong = `List prints the plugins recorded in pez-lock.toml with their
repository and pinned commit. With --outdated, each remote plugin's
declared selector is re-resolved and only plugins whose commit moved are
shown, together with the commit an upgrade would install.`

	MsgExample = `  # Table of installed plugins
  pez list

  # Plugins an upgrade would move
  pez list --outdated

  # Machine-readable output
  pez list --format json`

	MsgFlagOutdated = "Show only plugins whose resolved commit moved"
	MsgFlagFormat   = "Output format: auto, term, text, json, yaml"
)
