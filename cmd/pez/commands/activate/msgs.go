package activate

// Message constants
const (
	MsgShort = "Print the fish integration snippet"

	MsgLong = `Activate prints a fish function that wraps the pez binary. With the
wrapper sourced, install, upgrade and uninstall runs source the affected
conf.d snippets and emit their install, update and uninstall events inside
the running shell, which a child process cannot do.

Add this line to your config.fish:

    pez activate fish | source

The snippet is version guarded, so re-sourcing after upgrading pez
replaces the old wrapper.`

	MsgExample = `  # Try it in the current session
  pez activate fish | source

  # Wire it up permanently
  echo 'pez activate fish | source' >> ~/.config/fish/config.fish`
)
