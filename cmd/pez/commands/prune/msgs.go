package prune

// Message constants
const (
	MsgShort = "Remove plugins not declared in pez.toml"

	MsgLong = `Prune uninstalls every plugin recorded in pez-lock.toml that has no
matching entry in pez.toml. When pez.toml declares no plugins at all,
prune would remove everything, so it asks first; --yes answers for you.`

	MsgExample = `  # See what would be removed
  pez prune --dry-run

  # Remove undeclared plugins
  pez prune

  # Empty config, remove everything without the prompt
  pez prune --yes`

	MsgFlagDryRun = "List removal candidates without touching anything"
	MsgFlagYes    = "Skip the confirmation prompt when pez.toml is empty"
	MsgFlagForce  = "Remove recorded files even when the clone directory is gone"

	MsgNothingToPrune = "nothing to prune"
	MsgDryRunNotice   = "dry run: %d plugin(s) would be removed\n"
	MsgAborted        = "aborted"
)
