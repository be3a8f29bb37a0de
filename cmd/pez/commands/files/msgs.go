package files

// Message constants
const (
	MsgShort = "Print the files recorded for installed plugins"

	MsgLong = `Files prints the destination paths recorded in pez-lock.toml for the
requested plugins, sorted and deduplicated. The fish wrapper installed by
pez activate uses it to find the conf.d snippets affected by an install,
upgrade or uninstall: --from names the wrapped subcommand and everything
after -- is that subcommand's argv, from which the plugin set is derived.`

	MsgExample = `  # All files of one plugin
  pez files hydro

  # conf.d snippets of every installed plugin
  pez files --all --dir conf.d

  # What the wrapper sources after an install
  pez files --dir conf.d --from install -- jorgebucaran/hydro`

	MsgFlagAll    = "Select every installed plugin"
	MsgFlagDir    = "Only files under this target directory: all or conf.d"
	MsgFlagFrom   = "Derive the plugin set from a wrapped subcommand's argv"
	MsgFlagFormat = "Output format: paths or json"
)
