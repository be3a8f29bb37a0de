package migrate

// Message constants
const (
	MsgShort = "Import a fisher fish_plugins file into pez.toml"

	MsgLong = `Migrate reads a fisher fish_plugins file (one plugin target per line,
# comments ignored) and turns each line into a pez.toml entry. Plugins
already declared, duplicate lines, and fisher itself are skipped; lines
that do not parse as targets are reported, not fatal.

Nothing is installed: run pez install afterwards. The default run only
prints the plan; --apply writes pez.toml.`

	MsgExample = `  # See what would be imported from ~/.config/fish/fish_plugins
  pez migrate

  # Write the entries into pez.toml
  pez migrate --apply

  # Import from somewhere else
  pez migrate --file /backup/fish_plugins --apply`

	MsgFlagFile   = "fish_plugins file to import (default: fish config dir)"
	MsgFlagApply  = "Write the planned entries into pez.toml"
	MsgFlagDryRun = "Only print the plan (the default)"

	MsgNothingToImport = "nothing to import"
	MsgPlanHeader      = "plan: import %d plugin(s) into %s\n"
	MsgImported        = "imported %d plugin(s) into %s\n"
	MsgSkippedHeader   = "skipped lines:"
	MsgApplyHint       = "run `pez migrate --apply` to write pez.toml"
)
