package pez

// Message constants
const (
	MsgRootShort = "A declarative plugin manager for fish"

	MsgRootLong = `pez manages fish plugins the way a package manager manages
dependencies: pez.toml declares what you want, pez-lock.toml records
what you have. Plugins are cloned into the pez data directory and their
functions, completions, conf.d snippets and themes are copied into your
fish config directory.

Start with pez init, declare plugins in pez.toml, then pez install.
Source the output of pez activate fish to get install, update and
uninstall events in your interactive shell.`

	MsgNoCommand = "no command specified"

	// Command group titles
	MsgGroupCore = "COMMANDS:"
	MsgGroupMisc = "MISC:"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagJobs    = "Maximum concurrent clones for explicit installs (overrides PEZ_JOBS)"
	MsgFlagManDir  = "Directory to write the man pages into"

	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"
	MsgVersionShort    = "Print version information"

	MsgCompletionLong = `To load completions:

Fish:
  $ pez completion fish | source
  # To load completions for each session, execute once:
  $ pez completion fish > ~/.config/fish/completions/pez.fish

Bash:
  $ source <(pez completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ pez completion bash > /etc/bash_completion.d/pez
  # macOS:
  $ pez completion bash > /usr/local/etc/bash_completion.d/pez

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ pez completion zsh > "${fpath[1]}/_pez"
  # You will need to start a new shell for this setup to take effect.

PowerShell:
  PS> pez completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> pez completion powershell > pez.ps1
  # and source this file from your PowerShell profile.`
)
